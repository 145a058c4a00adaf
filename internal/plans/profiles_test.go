package plans

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tradeplan/internal/docstore"
	"tradeplan/internal/identity"
)

func TestProfileTouchCreatesThenUpdates(t *testing.T) {
	store := docstore.NewMemoryStore()
	p := NewProfiles(store, zerolog.Nop(), "trade-plan-v0")
	ctx := context.Background()

	times := []time.Time{
		time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC),
	}
	i := 0
	p.now = func() time.Time {
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}

	session := identity.Session{
		UserID:   "user-a",
		SocialID: "9152",
		Username: "trader",
	}

	if err := p.Touch(ctx, session); err != nil {
		t.Fatalf("first Touch: %v", err)
	}

	profile, err := p.Lookup(ctx, "user-a")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !profile.CreatedAt.Equal(times[0]) {
		t.Errorf("CreatedAt: got %v, want %v", profile.CreatedAt, times[0])
	}
	if !profile.LastSeenAt.Equal(times[0]) {
		t.Errorf("LastSeenAt: got %v, want %v", profile.LastSeenAt, times[0])
	}

	session.Username = "renamed"
	if err := p.Touch(ctx, session); err != nil {
		t.Fatalf("second Touch: %v", err)
	}

	profile, err = p.Lookup(ctx, "user-a")
	if err != nil {
		t.Fatalf("Lookup after update: %v", err)
	}
	if !profile.CreatedAt.Equal(times[0]) {
		t.Errorf("CreatedAt changed on repeat visit: got %v", profile.CreatedAt)
	}
	if !profile.LastSeenAt.Equal(times[1]) {
		t.Errorf("LastSeenAt: got %v, want %v", profile.LastSeenAt, times[1])
	}
	if profile.Username != "renamed" {
		t.Errorf("Username: got %q, want renamed", profile.Username)
	}
}

func TestProfileTouchIgnoresZeroSession(t *testing.T) {
	store := docstore.NewMemoryStore()
	p := NewProfiles(store, zerolog.Nop(), "trade-plan-v0")

	if err := p.Touch(context.Background(), identity.Session{}); err != nil {
		t.Fatalf("Touch with zero session: %v", err)
	}
	if _, err := p.Lookup(context.Background(), ""); err == nil {
		t.Fatal("Lookup after zero-session Touch: want error, got profile")
	}
}
