// Package plans maintains a user's live, server-synchronized list of trade
// plans on top of the document store.
package plans

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tradeplan/internal/docstore"
	errs "tradeplan/internal/errors"
	"tradeplan/internal/identity"
	"tradeplan/internal/logging"
	"tradeplan/internal/models"
	"tradeplan/internal/risk"
	"tradeplan/pkg/id"
)

// BookConfig holds configuration for a plan book.
type BookConfig struct {
	// AppID is the tenant/application data partition.
	AppID string
	// AccountBalance is the baseline used when freezing position sizes.
	AccountBalance float64
	// Now supplies timestamps; defaults to time.Now.
	Now func() time.Time
	// NewID supplies record ids; defaults to ULID generation.
	NewID func() string
}

// DefaultBookConfig returns the default book configuration.
func DefaultBookConfig() BookConfig {
	return BookConfig{
		AppID:          "trade-plan-v0",
		AccountBalance: risk.DefaultAccountBalance,
		Now:            time.Now,
		NewID:          id.New,
	}
}

// Book is the stateful sync store for one session's trade plans.
//
// Lifecycle: Unbound -> Bind(session) -> Subscribed -> Release -> Unbound.
// While subscribed, the in-memory list is fully replaced on every change
// notification from the store; callers observe effects of Create, Close and
// Remove only once the next snapshot arrives, never synchronously.
type Book struct {
	store  docstore.Store
	logger zerolog.Logger
	config BookConfig

	mu       sync.RWMutex
	session  identity.Session
	bound    bool
	sub      docstore.Subscription
	plans    []models.Plan
	onChange []func([]models.Plan)
	wg       sync.WaitGroup
}

// NewBook creates a plan book with default configuration.
func NewBook(store docstore.Store, logger zerolog.Logger) *Book {
	return NewBookWithConfig(store, logger, DefaultBookConfig())
}

// NewBookWithConfig creates a plan book with custom configuration.
func NewBookWithConfig(store docstore.Store, logger zerolog.Logger, config BookConfig) *Book {
	defaults := DefaultBookConfig()
	if config.AppID == "" {
		config.AppID = defaults.AppID
	}
	if config.AccountBalance == 0 {
		config.AccountBalance = defaults.AccountBalance
	}
	if config.Now == nil {
		config.Now = defaults.Now
	}
	if config.NewID == nil {
		config.NewID = defaults.NewID
	}

	return &Book{
		store:  store,
		logger: logger,
		config: config,
	}
}

// OnChange registers a callback invoked with the freshly sorted plan list
// after every applied snapshot. Callbacks run on the subscription
// goroutine and must not block.
func (b *Book) OnChange(fn func([]models.Plan)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = append(b.onChange, fn)
}

// Bind opens the live subscription for the given session's plan
// collection. Binding with an empty session is a no-op. Rebinding to a new
// identity releases the previous subscription first, so at most one
// subscription is ever live and two users' updates can never merge into
// one view.
func (b *Book) Bind(ctx context.Context, session identity.Session) error {
	if session.IsZero() {
		return nil
	}

	b.Release()

	sub, err := b.store.Subscribe(ctx, docstore.UserPlansPath(b.config.AppID, session.UserID))
	if err != nil {
		b.logger.Error().Err(err).Str("owner_id", session.UserID).Msg("Failed to open plan subscription")
		return errs.Wrap(err, "bind plan book")
	}

	b.mu.Lock()
	b.session = session
	b.bound = true
	b.sub = sub
	b.plans = nil
	b.mu.Unlock()

	b.wg.Add(1)
	go b.consume(sub)

	b.logger.Debug().Str("owner_id", session.UserID).Msg("Plan subscription opened")
	return nil
}

// Release tears down the live subscription and clears the view. Safe to
// call when unbound.
func (b *Book) Release() {
	b.mu.Lock()
	sub := b.sub
	b.sub = nil
	b.bound = false
	b.session = identity.Session{}
	b.plans = nil
	b.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
	b.wg.Wait()
}

// Bound reports whether a session is currently bound.
func (b *Book) Bound() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bound
}

// Session returns the currently bound session.
func (b *Book) Session() (identity.Session, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.session, b.bound
}

// Create finalizes a draft into a persisted plan record: assigns a fresh
// id, stamps the creation time, freezes the derived position size and
// risk-reward ratio, and writes the record. The returned plan is the
// authoritative saved value; the in-memory list catches up on the next
// snapshot.
func (b *Book) Create(ctx context.Context, draft models.Draft) (*models.Plan, error) {
	b.mu.RLock()
	session, bound := b.session, b.bound
	b.mu.RUnlock()

	if !bound {
		return nil, errs.ErrNotAuthenticated
	}

	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidDraft, err)
	}

	now := b.config.Now()
	plan := models.Plan{
		ID:                b.config.NewID(),
		Pair:              draft.Pair,
		Direction:         draft.Direction,
		Entry:             draft.Entry,
		StopLoss:          draft.StopLoss,
		TakeProfit:        draft.TakeProfit,
		RiskPercent:       draft.RiskPercent,
		Thesis:            draft.Thesis,
		RulesAcknowledged: draft.RulesAcknowledged,
		OwnerID:           session.UserID,
		Status:            models.PlanPlanned,
		PositionSize:      risk.PositionSizeStr(draft.Entry, draft.StopLoss, draft.RiskPercent, b.config.AccountBalance),
		RiskReward:        risk.RiskRewardStr(draft.Entry, draft.StopLoss, draft.TakeProfit),
		CreatedAt:         now,
		SocialID:          session.SocialID,
		Username:          session.Username,
		WalletAddress:     session.WalletAddress,
	}

	path := docstore.PlanPath(b.config.AppID, session.UserID, plan.ID)
	doc, err := planToDoc(plan)
	if err != nil {
		return nil, errs.Wrap(err, "encode plan")
	}

	if err := b.store.Set(ctx, path, doc); err != nil {
		b.logger.Error().Err(err).Str("plan_id", plan.ID).Msg("Failed to save plan")
		return nil, errs.NewStoreError("create", path.String(), err)
	}

	logging.LogPlanSaved(b.logger, plan.ID, plan.Pair, string(plan.Direction), plan.PositionSize, plan.RiskReward)

	return &plan, nil
}

// Close marks the plan as closed with the given result. Closing is
// deliberately permissive: closing an already-closed plan overwrites the
// result and closed time rather than failing, matching the storage
// update's merge semantics.
func (b *Book) Close(ctx context.Context, planID string, result models.PlanResult) error {
	b.mu.RLock()
	session, bound := b.session, b.bound
	b.mu.RUnlock()

	if !bound {
		return errs.ErrNotAuthenticated
	}

	if result != models.ResultWin && result != models.ResultLoss {
		return errs.ErrInvalidResult
	}

	path := docstore.PlanPath(b.config.AppID, session.UserID, planID)
	fields := docstore.Document{
		"status":   string(models.PlanClosed),
		"result":   string(result),
		"closedAt": b.config.Now().Format(time.RFC3339Nano),
	}

	if err := b.store.Update(ctx, path, fields); err != nil {
		if errs.Is(err, docstore.ErrNotFound) {
			return errs.ErrPlanNotFound
		}
		b.logger.Error().Err(err).Str("plan_id", planID).Msg("Failed to close plan")
		return errs.NewStoreError("close", path.String(), err)
	}

	logging.LogPlanClosed(b.logger, planID, string(result))

	return nil
}

// Remove deletes the plan record. Removing a nonexistent id is not an
// error.
func (b *Book) Remove(ctx context.Context, planID string) error {
	b.mu.RLock()
	session, bound := b.session, b.bound
	b.mu.RUnlock()

	if !bound {
		return errs.ErrNotAuthenticated
	}

	path := docstore.PlanPath(b.config.AppID, session.UserID, planID)
	if err := b.store.Delete(ctx, path); err != nil {
		b.logger.Error().Err(err).Str("plan_id", planID).Msg("Failed to delete plan")
		return errs.NewStoreError("remove", path.String(), err)
	}

	return nil
}

// Plans returns a copy of the current in-memory view, newest first.
func (b *Book) Plans() []models.Plan {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]models.Plan, len(b.plans))
	copy(out, b.plans)
	return out
}

// Active returns the open plans, newest first.
func (b *Book) Active() []models.Plan {
	return b.filter(func(p models.Plan) bool { return p.Status == models.PlanPlanned })
}

// Closed returns the closed plans, newest first.
func (b *Book) Closed() []models.Plan {
	return b.filter(func(p models.Plan) bool { return p.Status == models.PlanClosed })
}

func (b *Book) filter(keep func(models.Plan) bool) []models.Plan {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []models.Plan
	for _, p := range b.plans {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// consume applies snapshots until the subscription closes. Each snapshot
// fully replaces the view: last notification wins, no merging of partial
// updates.
func (b *Book) consume(sub docstore.Subscription) {
	defer b.wg.Done()

	for snap := range sub.Snapshots() {
		plans := make([]models.Plan, 0, len(snap.Docs))
		for _, d := range snap.Docs {
			plan, err := docToPlan(d)
			if err != nil {
				b.logger.Warn().Err(err).Str("plan_id", d.ID).Msg("Skipping undecodable plan document")
				continue
			}
			plans = append(plans, plan)
		}

		// Newest first; the stable sort keeps snapshot order for equal
		// timestamps.
		sort.SliceStable(plans, func(i, j int) bool {
			return plans[i].CreatedAt.After(plans[j].CreatedAt)
		})

		b.mu.Lock()
		if b.sub != sub {
			// Released or rebound while this snapshot was in flight.
			b.mu.Unlock()
			return
		}
		b.plans = plans
		callbacks := append([]func([]models.Plan){}, b.onChange...)
		view := make([]models.Plan, len(plans))
		copy(view, plans)
		b.mu.Unlock()

		for _, fn := range callbacks {
			fn(view)
		}
	}
}

func planToDoc(plan models.Plan) (docstore.Document, error) {
	// The id lives in the storage path, not in the document body.
	plan.ID = ""

	data, err := json.Marshal(plan)
	if err != nil {
		return nil, err
	}

	var doc docstore.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func docToPlan(d docstore.SnapshotDoc) (models.Plan, error) {
	data, err := json.Marshal(d.Data)
	if err != nil {
		return models.Plan{}, err
	}

	var plan models.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return models.Plan{}, err
	}
	plan.ID = d.ID
	return plan, nil
}
