package identity

import (
	"fmt"
	"strings"
	"sync"

	errs "tradeplan/internal/errors"
)

// StaticProvider serves a fixed session, typically derived from config or
// environment. It is also the fake used throughout the tests.
type StaticProvider struct {
	mu        sync.Mutex
	session   Session
	err       error
	callbacks []func(Session, error)
}

// NewStaticProvider creates a provider already holding a session.
func NewStaticProvider(s Session) *StaticProvider {
	return &StaticProvider{session: s}
}

// NewPendingProvider creates a provider with no session yet; use Establish
// or Fail to drive it.
func NewPendingProvider() *StaticProvider {
	return &StaticProvider{}
}

// Current implements Provider.
func (p *StaticProvider) Current() (Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session, !p.session.IsZero()
}

// OnChange implements Provider.
func (p *StaticProvider) OnChange(fn func(Session, error)) {
	p.mu.Lock()
	p.callbacks = append(p.callbacks, fn)
	s, err := p.session, p.err
	p.mu.Unlock()

	if !s.IsZero() || err != nil {
		fn(s, err)
	}
}

// Establish sets the session and notifies observers.
func (p *StaticProvider) Establish(s Session) {
	p.mu.Lock()
	p.session = s
	callbacks := append([]func(Session, error){}, p.callbacks...)
	p.mu.Unlock()

	for _, fn := range callbacks {
		fn(s, nil)
	}
}

// Fail records a handshake failure and notifies observers.
func (p *StaticProvider) Fail(err error) {
	p.mu.Lock()
	p.err = err
	callbacks := append([]func(Session, error){}, p.callbacks...)
	p.mu.Unlock()

	for _, fn := range callbacks {
		fn(Session{}, errs.NewIdentityError("static", err))
	}
}

// TokenProvider derives its session from a platform handshake: the user
// context plus an optional quick-auth token. The derivation happens once,
// at construction; a bad context surfaces as a handshake failure.
type TokenProvider struct {
	inner *StaticProvider
}

// NewTokenProvider creates a provider from the platform handshake result.
func NewTokenProvider(pc PlatformContext, token string) *TokenProvider {
	inner := NewPendingProvider()
	session, err := FromPlatformContext(pc, token)
	if err != nil {
		inner.err = err
	} else {
		inner.session = session
	}
	return &TokenProvider{inner: inner}
}

// Current implements Provider.
func (p *TokenProvider) Current() (Session, bool) {
	return p.inner.Current()
}

// OnChange implements Provider.
func (p *TokenProvider) OnChange(fn func(Session, error)) {
	p.inner.OnChange(fn)
}

// PlatformContext is the user context handed over by the hosting social
// platform client alongside an optional auth token.
type PlatformContext struct {
	FID           int64
	Username      string
	DisplayName   string
	AvatarURL     string
	WalletAddress string
}

// FromPlatformContext derives a session from the platform handshake. The
// token is optional: the original handshake tolerates a missing quick-auth
// token as long as the user context is present.
func FromPlatformContext(pc PlatformContext, token string) (Session, error) {
	if pc.FID == 0 {
		return Session{}, errs.NewIdentityError("platform", fmt.Errorf("no user in platform context"))
	}

	fid := fmt.Sprintf("%d", pc.FID)
	return Session{
		UserID:        fid,
		SocialID:      fid,
		Username:      strings.TrimSpace(pc.Username),
		DisplayName:   strings.TrimSpace(pc.DisplayName),
		AvatarURL:     pc.AvatarURL,
		WalletAddress: pc.WalletAddress,
		Token:         token,
	}, nil
}
