package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	domainauth "github.com/target/tenderwatch/internal/domain/auth"
	apperrors "github.com/target/tenderwatch/internal/errors"
	"github.com/target/tenderwatch/internal/ports"
)

// SessionProviderOptions groups dependencies for SessionProvider.
type SessionProviderOptions struct {
	Sessions ports.SessionStore
	// Verifier is optional; without it bearer tokens are ignored.
	Verifier ports.TokenVerifier
	// Warmers are established once by Start before the provider leaves the loading state.
	Warmers []ports.Warmer
	Logger  *slog.Logger
	Now     func() time.Time
}

// SessionProvider owns the {user, loading} state consumed by the access guard.
// It reports loading until Start has run its warmers, and collapses every
// lookup failure into an unauthenticated state.
type SessionProvider struct {
	sessions ports.SessionStore
	verifier ports.TokenVerifier
	warmers  []ports.Warmer
	logger   *slog.Logger
	now      func() time.Time

	loading   atomic.Bool
	ready     chan struct{}
	startOnce sync.Once
}

var _ ports.SessionSource = (*SessionProvider)(nil)

// NewSessionProvider constructs a provider in the loading state.
func NewSessionProvider(opts SessionProviderOptions) *SessionProvider {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	p := &SessionProvider{
		sessions: opts.Sessions,
		verifier: opts.Verifier,
		warmers:  opts.Warmers,
		logger:   logger,
		now:      now,
		ready:    make(chan struct{}),
	}
	p.loading.Store(true)
	return p
}

// Start runs each warmer once and then settles the provider.
// A warmer failure is logged and does not keep the provider loading;
// the affected dependency answers as unauthenticated instead.
// Calls after the first return immediately.
func (p *SessionProvider) Start(ctx context.Context) error {
	var err error
	p.startOnce.Do(func() {
		var errs []error
		for _, w := range p.warmers {
			if warmErr := w.Warm(ctx); warmErr != nil {
				p.logger.WarnContext(ctx, "session provider dependency unavailable", "error", warmErr)
				errs = append(errs, warmErr)
			}
		}
		p.loading.Store(false)
		close(p.ready)
		p.logger.InfoContext(ctx, "session provider ready", "degraded", len(errs) > 0)
		err = errors.Join(errs...)
	})
	return err
}

// Loading reports whether the provider is still being established.
func (p *SessionProvider) Loading() bool {
	return p.loading.Load()
}

// Ready returns a channel that is closed once the provider leaves the loading state.
func (p *SessionProvider) Ready() <-chan struct{} {
	return p.ready
}

// State resolves credentials into the current session state.
func (p *SessionProvider) State(ctx context.Context, creds ports.Credentials) domainauth.SessionState {
	if p.loading.Load() {
		return domainauth.SessionState{Loading: true}
	}

	if u := p.fromSession(ctx, creds.SessionID); u != nil {
		return domainauth.SessionState{User: u}
	}
	if u := p.fromBearer(ctx, creds.BearerToken); u != nil {
		return domainauth.SessionState{User: u}
	}
	return domainauth.SessionState{}
}

// Logout revokes the server-side session.
func (p *SessionProvider) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" || p.sessions == nil {
		return nil
	}
	return p.sessions.Delete(ctx, sessionID)
}

func (p *SessionProvider) fromSession(ctx context.Context, sessionID string) *domainauth.User {
	if sessionID == "" || p.sessions == nil {
		return nil
	}

	sess, err := p.sessions.Get(ctx, sessionID)
	if err != nil {
		p.logLookupFailure(ctx, "session lookup failed", err)
		return nil
	}

	if sess.Expired(p.now()) {
		if deleteErr := p.sessions.Delete(ctx, sessionID); deleteErr != nil {
			p.logger.WarnContext(ctx, "delete expired session failed", "error", deleteErr)
		}
		return nil
	}

	u := sess.User()
	return &u
}

func (p *SessionProvider) fromBearer(ctx context.Context, token string) *domainauth.User {
	if token == "" || p.verifier == nil {
		return nil
	}

	u, err := p.verifier.Verify(ctx, token)
	if err != nil {
		p.logLookupFailure(ctx, "bearer token rejected", err)
		return nil
	}
	if !u.ExpiresAt.IsZero() && p.now().After(u.ExpiresAt) {
		return nil
	}
	return &u
}

// logLookupFailure keeps expected misses quiet and surfaces dependency faults.
func (p *SessionProvider) logLookupFailure(ctx context.Context, msg string, err error) {
	if apperrors.IsNotFound(err) || apperrors.IsUnauthenticated(err) {
		p.logger.DebugContext(ctx, msg, "error", err)
		return
	}
	p.logger.WarnContext(ctx, msg, "error", err)
}
