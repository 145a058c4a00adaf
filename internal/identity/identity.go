// Package identity gates storage operations on the availability of a
// platform session. Until an identity is established, everything downstream
// stays a no-op.
package identity

import (
	"context"
	"strings"
	"sync"
)

// Session is the authenticated user/session identity used to scope and own
// records. UserID is the stable storage key; the social fields are
// best-effort profile data from the platform handshake.
type Session struct {
	UserID        string
	SocialID      string
	Username      string
	DisplayName   string
	AvatarURL     string
	WalletAddress string
	Token         string
}

// IsZero reports whether the session carries no usable identity.
func (s Session) IsZero() bool {
	return strings.TrimSpace(s.UserID) == ""
}

// Provider is the abstract platform identity source.
type Provider interface {
	// Current returns the session if one is already established.
	Current() (Session, bool)
	// OnChange registers a callback invoked whenever the provider's
	// session state changes; err is non-nil when the handshake failed.
	OnChange(fn func(s Session, err error))
}

// Gate observes a Provider and latches the first usable session: the
// transition is monotonic, null to identity, at most once. A failed
// handshake leaves the gate unready indefinitely; there is no retry policy
// here beyond what the provider itself performs.
type Gate struct {
	mu      sync.Mutex
	session Session
	ready   bool
	readyCh chan struct{}
	onReady []func(Session)
	onError func(error)
}

// NewGate creates a gate watching the given provider.
func NewGate(provider Provider) *Gate {
	g := &Gate{readyCh: make(chan struct{})}

	provider.OnChange(func(s Session, err error) {
		if err != nil {
			g.fail(err)
			return
		}
		g.latch(s)
	})

	if s, ok := provider.Current(); ok {
		g.latch(s)
	}

	return g
}

// OnError registers a passthrough for provider errors.
func (g *Gate) OnError(fn func(error)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onError = fn
}

// OnReady registers a callback fired once when the session becomes
// available. Registering after the fact fires immediately.
func (g *Gate) OnReady(fn func(Session)) {
	g.mu.Lock()
	if g.ready {
		s := g.session
		g.mu.Unlock()
		fn(s)
		return
	}
	g.onReady = append(g.onReady, fn)
	g.mu.Unlock()
}

// Session returns the latched session, if any.
func (g *Gate) Session() (Session, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session, g.ready
}

// Ready reports whether a session has been latched.
func (g *Gate) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ready
}

// Wait blocks until a session is available or the context is done.
func (g *Gate) Wait(ctx context.Context) (Session, error) {
	g.mu.Lock()
	if g.ready {
		s := g.session
		g.mu.Unlock()
		return s, nil
	}
	ch := g.readyCh
	g.mu.Unlock()

	select {
	case <-ch:
		s, _ := g.Session()
		return s, nil
	case <-ctx.Done():
		return Session{}, ctx.Err()
	}
}

func (g *Gate) latch(s Session) {
	if s.IsZero() {
		return
	}

	g.mu.Lock()
	if g.ready {
		// Already latched; later changes never replace the session.
		g.mu.Unlock()
		return
	}
	g.session = s
	g.ready = true
	callbacks := g.onReady
	g.onReady = nil
	close(g.readyCh)
	g.mu.Unlock()

	for _, fn := range callbacks {
		fn(s)
	}
}

func (g *Gate) fail(err error) {
	g.mu.Lock()
	fn := g.onError
	g.mu.Unlock()

	if fn != nil {
		fn(err)
	}
}
