package plans

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tradeplan/internal/docstore"
	errs "tradeplan/internal/errors"
	"tradeplan/internal/identity"
	"tradeplan/internal/models"
)

// countingStore wraps a store and counts every call, so tests can assert
// that unbound operations never touch storage.
type countingStore struct {
	docstore.Store
	calls int64
}

func (c *countingStore) Get(ctx context.Context, path docstore.Path) (docstore.Document, error) {
	atomic.AddInt64(&c.calls, 1)
	return c.Store.Get(ctx, path)
}

func (c *countingStore) Set(ctx context.Context, path docstore.Path, doc docstore.Document) error {
	atomic.AddInt64(&c.calls, 1)
	return c.Store.Set(ctx, path, doc)
}

func (c *countingStore) Update(ctx context.Context, path docstore.Path, fields docstore.Document) error {
	atomic.AddInt64(&c.calls, 1)
	return c.Store.Update(ctx, path, fields)
}

func (c *countingStore) Delete(ctx context.Context, path docstore.Path) error {
	atomic.AddInt64(&c.calls, 1)
	return c.Store.Delete(ctx, path)
}

func (c *countingStore) Subscribe(ctx context.Context, collection docstore.Path) (docstore.Subscription, error) {
	atomic.AddInt64(&c.calls, 1)
	return c.Store.Subscribe(ctx, collection)
}

func testSession(uid string) identity.Session {
	return identity.Session{
		UserID:   uid,
		SocialID: "9152",
		Username: "trader",
	}
}

func testBook(t *testing.T, store docstore.Store) *Book {
	t.Helper()

	seq := 0
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := DefaultBookConfig()
	cfg.Now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	cfg.NewID = func() string {
		seq++
		return fmt.Sprintf("plan-%03d", seq)
	}
	return NewBookWithConfig(store, zerolog.Nop(), cfg)
}

func validDraft() models.Draft {
	d := models.NewDraft()
	d.Pair = "btc/usdt"
	d.Entry = "100"
	d.StopLoss = "90"
	d.TakeProfit = "130"
	d.RiskPercent = "2"
	d.RulesAcknowledged = true
	return d
}

func waitForPlans(t *testing.T, b *Book, n int) []models.Plan {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := b.Plans(); len(got) == n {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d plans, have %d", n, len(b.Plans()))
	return nil
}

func TestUnboundOperationsNeverTouchStore(t *testing.T) {
	cs := &countingStore{Store: docstore.NewMemoryStore()}
	b := testBook(t, cs)
	ctx := context.Background()

	if err := b.Bind(ctx, identity.Session{}); err != nil {
		t.Fatalf("Bind with zero session: %v", err)
	}
	if _, err := b.Create(ctx, validDraft()); !errs.Is(err, errs.ErrNotAuthenticated) {
		t.Fatalf("Create unbound: got %v, want ErrNotAuthenticated", err)
	}
	if err := b.Close(ctx, "plan-001", models.ResultWin); !errs.Is(err, errs.ErrNotAuthenticated) {
		t.Fatalf("Close unbound: got %v, want ErrNotAuthenticated", err)
	}
	if err := b.Remove(ctx, "plan-001"); !errs.Is(err, errs.ErrNotAuthenticated) {
		t.Fatalf("Remove unbound: got %v, want ErrNotAuthenticated", err)
	}
	if got := b.Plans(); len(got) != 0 {
		t.Fatalf("unbound Plans: got %d, want 0", len(got))
	}
	if n := atomic.LoadInt64(&cs.calls); n != 0 {
		t.Fatalf("store calls while unbound: got %d, want 0", n)
	}
}

func TestCreateFreezesDerivedValues(t *testing.T) {
	store := docstore.NewMemoryStore()
	b := testBook(t, store)
	ctx := context.Background()

	if err := b.Bind(ctx, testSession("user-a")); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	defer b.Release()

	plan, err := b.Create(ctx, validDraft())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if plan.ID != "plan-001" {
		t.Errorf("ID: got %q", plan.ID)
	}
	if plan.Pair != "BTC/USDT" {
		t.Errorf("Pair: got %q, want normalized BTC/USDT", plan.Pair)
	}
	if plan.Status != models.PlanPlanned {
		t.Errorf("Status: got %q, want planned", plan.Status)
	}
	if plan.OwnerID != "user-a" {
		t.Errorf("OwnerID: got %q", plan.OwnerID)
	}
	if plan.PositionSize != 20.0 {
		t.Errorf("PositionSize: got %v, want 20", plan.PositionSize)
	}
	if plan.RiskReward != 3.0 {
		t.Errorf("RiskReward: got %v, want 3", plan.RiskReward)
	}

	got := waitForPlans(t, b, 1)
	if got[0].ID != plan.ID {
		t.Errorf("snapshot plan ID: got %q, want %q", got[0].ID, plan.ID)
	}
	if got[0].PositionSize != 20.0 || got[0].RiskReward != 3.0 {
		t.Errorf("derived values changed through round trip: size=%v rr=%v",
			got[0].PositionSize, got[0].RiskReward)
	}
}

func TestCreateRejectsInvalidDraft(t *testing.T) {
	b := testBook(t, docstore.NewMemoryStore())
	ctx := context.Background()

	if err := b.Bind(ctx, testSession("user-a")); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	defer b.Release()

	d := validDraft()
	d.Entry = "not-a-price"
	if _, err := b.Create(ctx, d); err == nil {
		t.Fatal("Create with bad entry price: want error")
	}

	d = validDraft()
	d.RulesAcknowledged = false
	if _, err := b.Create(ctx, d); err == nil {
		t.Fatal("Create without rules acknowledged: want error")
	}
}

func TestRapidCreatesGetDistinctIDsNewestFirst(t *testing.T) {
	b := testBook(t, docstore.NewMemoryStore())
	ctx := context.Background()

	if err := b.Bind(ctx, testSession("user-a")); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	defer b.Release()

	first, err := b.Create(ctx, validDraft())
	if err != nil {
		t.Fatalf("Create first: %v", err)
	}
	second, err := b.Create(ctx, validDraft())
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("both plans got id %q", first.ID)
	}

	got := waitForPlans(t, b, 2)
	if got[0].ID != second.ID || got[1].ID != first.ID {
		t.Errorf("order: got [%s %s], want newest first [%s %s]",
			got[0].ID, got[1].ID, second.ID, first.ID)
	}
}

func TestCloseSetsResultAndIsPermissive(t *testing.T) {
	b := testBook(t, docstore.NewMemoryStore())
	ctx := context.Background()

	if err := b.Bind(ctx, testSession("user-a")); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	defer b.Release()

	plan, err := b.Create(ctx, validDraft())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	waitForPlans(t, b, 1)

	if err := b.Close(ctx, plan.ID, models.ResultLoss); err != nil {
		t.Fatalf("Close: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		got := b.Plans()
		if len(got) == 1 && got[0].Status == models.PlanClosed {
			if got[0].Result != models.ResultLoss {
				t.Fatalf("Result: got %q, want loss", got[0].Result)
			}
			if got[0].ClosedAt == nil {
				t.Fatal("ClosedAt not set")
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for closed plan")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Re-closing overwrites the result rather than failing.
	if err := b.Close(ctx, plan.ID, models.ResultWin); err != nil {
		t.Fatalf("re-Close: %v", err)
	}

	if err := b.Close(ctx, plan.ID, models.PlanResult("breakeven")); !errs.Is(err, errs.ErrInvalidResult) {
		t.Fatalf("Close with bad result: got %v, want ErrInvalidResult", err)
	}
	if err := b.Close(ctx, "no-such-plan", models.ResultWin); !errs.Is(err, errs.ErrPlanNotFound) {
		t.Fatalf("Close missing plan: got %v, want ErrPlanNotFound", err)
	}
}

func TestRemoveMissingPlanIsNotAnError(t *testing.T) {
	b := testBook(t, docstore.NewMemoryStore())
	ctx := context.Background()

	if err := b.Bind(ctx, testSession("user-a")); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	defer b.Release()

	if err := b.Remove(ctx, "never-existed"); err != nil {
		t.Fatalf("Remove missing: %v", err)
	}

	plan, err := b.Create(ctx, validDraft())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	waitForPlans(t, b, 1)

	if err := b.Remove(ctx, plan.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	waitForPlans(t, b, 0)
}

func TestRebindReleasesPriorSubscription(t *testing.T) {
	store := docstore.NewMemoryStore()
	b := testBook(t, store)
	ctx := context.Background()

	if err := b.Bind(ctx, testSession("user-a")); err != nil {
		t.Fatalf("Bind A: %v", err)
	}
	if _, err := b.Create(ctx, validDraft()); err != nil {
		t.Fatalf("Create as A: %v", err)
	}
	waitForPlans(t, b, 1)

	if err := b.Bind(ctx, testSession("user-b")); err != nil {
		t.Fatalf("Bind B: %v", err)
	}
	defer b.Release()

	// B has no plans; A's plan must not bleed into B's view.
	waitForPlans(t, b, 0)

	plan, err := b.Create(ctx, validDraft())
	if err != nil {
		t.Fatalf("Create as B: %v", err)
	}
	got := waitForPlans(t, b, 1)
	if got[0].OwnerID != "user-b" || got[0].ID != plan.ID {
		t.Errorf("view after rebind: got owner %q id %q", got[0].OwnerID, got[0].ID)
	}
}

func TestReleaseClearsView(t *testing.T) {
	b := testBook(t, docstore.NewMemoryStore())
	ctx := context.Background()

	if err := b.Bind(ctx, testSession("user-a")); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if _, err := b.Create(ctx, validDraft()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	waitForPlans(t, b, 1)

	b.Release()
	if b.Bound() {
		t.Error("Bound after Release")
	}
	if got := b.Plans(); len(got) != 0 {
		t.Errorf("Plans after Release: got %d, want 0", len(got))
	}

	// Release is idempotent.
	b.Release()
}

func TestActiveAndClosedFilters(t *testing.T) {
	b := testBook(t, docstore.NewMemoryStore())
	ctx := context.Background()

	if err := b.Bind(ctx, testSession("user-a")); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	defer b.Release()

	first, _ := b.Create(ctx, validDraft())
	second, _ := b.Create(ctx, validDraft())
	waitForPlans(t, b, 2)

	if err := b.Close(ctx, first.ID, models.ResultWin); err != nil {
		t.Fatalf("Close: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		active, closed := b.Active(), b.Closed()
		if len(active) == 1 && len(closed) == 1 {
			if active[0].ID != second.ID {
				t.Errorf("active: got %q, want %q", active[0].ID, second.ID)
			}
			if closed[0].ID != first.ID {
				t.Errorf("closed: got %q, want %q", closed[0].ID, first.ID)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out: active=%d closed=%d", len(active), len(closed))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestOnChangeNotifiesWithSortedView(t *testing.T) {
	b := testBook(t, docstore.NewMemoryStore())
	ctx := context.Background()

	views := make(chan []models.Plan, 16)
	b.OnChange(func(plans []models.Plan) {
		views <- plans
	})

	if err := b.Bind(ctx, testSession("user-a")); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	defer b.Release()

	if _, err := b.Create(ctx, validDraft()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case view := <-views:
			if len(view) == 1 {
				return
			}
		case <-deadline:
			t.Fatal("no change notification with the created plan")
		}
	}
}
