package plans

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"tradeplan/internal/docstore"
	errs "tradeplan/internal/errors"
	"tradeplan/internal/identity"
	"tradeplan/internal/models"
)

// Profiles records user sightings. Every established session upserts the
// user's profile document: createdAt is written once on first sight,
// lastSeenAt on every sight.
type Profiles struct {
	store  docstore.Store
	logger zerolog.Logger
	appID  string
	now    func() time.Time
}

// NewProfiles creates a profile registry.
func NewProfiles(store docstore.Store, logger zerolog.Logger, appID string) *Profiles {
	return &Profiles{
		store:  store,
		logger: logger,
		appID:  appID,
		now:    time.Now,
	}
}

// Touch upserts the profile for the given session. Called on every
// session establishment, including repeat visits.
func (p *Profiles) Touch(ctx context.Context, session identity.Session) error {
	if session.IsZero() {
		return nil
	}

	path := docstore.UserProfilePath(p.appID, session.UserID)
	now := p.now().Format(time.RFC3339Nano)

	doc := docstore.Document{
		"socialId":      session.SocialID,
		"username":      session.Username,
		"displayName":   session.DisplayName,
		"avatarUrl":     session.AvatarURL,
		"walletAddress": session.WalletAddress,
		"lastSeenAt":    now,
	}

	_, err := p.store.Get(ctx, path)
	switch {
	case errs.Is(err, docstore.ErrNotFound):
		doc["createdAt"] = now
		if err := p.store.Set(ctx, path, doc); err != nil {
			p.logger.Error().Err(err).Str("owner_id", session.UserID).Msg("Failed to create user profile")
			return errs.NewStoreError("profile create", path.String(), err)
		}
		p.logger.Debug().Str("owner_id", session.UserID).Msg("User profile created")
		return nil
	case err != nil:
		return errs.NewStoreError("profile read", path.String(), err)
	}

	// Merge update: existing createdAt and any fields we do not set here
	// survive.
	if err := p.store.Update(ctx, path, doc); err != nil {
		p.logger.Error().Err(err).Str("owner_id", session.UserID).Msg("Failed to update user profile")
		return errs.NewStoreError("profile update", path.String(), err)
	}
	return nil
}

// Lookup fetches a stored profile.
func (p *Profiles) Lookup(ctx context.Context, userID string) (*models.UserProfile, error) {
	path := docstore.UserProfilePath(p.appID, userID)
	doc, err := p.store.Get(ctx, path)
	if err != nil {
		return nil, errs.NewStoreError("profile read", path.String(), err)
	}

	profile := &models.UserProfile{
		SocialID:      str(doc, "socialId"),
		Username:      str(doc, "username"),
		DisplayName:   str(doc, "displayName"),
		AvatarURL:     str(doc, "avatarUrl"),
		WalletAddress: str(doc, "walletAddress"),
	}
	if t, err := time.Parse(time.RFC3339Nano, str(doc, "createdAt")); err == nil {
		profile.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, str(doc, "lastSeenAt")); err == nil {
		profile.LastSeenAt = t
	}
	return profile, nil
}

func str(doc docstore.Document, key string) string {
	if v, ok := doc[key].(string); ok {
		return v
	}
	return ""
}
