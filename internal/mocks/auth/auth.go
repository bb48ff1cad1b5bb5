package auth

// Package auth contains simple hand-written test doubles for session ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"sync"

	domainauth "github.com/target/tenderwatch/internal/domain/auth"
	apperrors "github.com/target/tenderwatch/internal/errors"
	"github.com/target/tenderwatch/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.SessionStore  = (*MemorySessionStore)(nil)
	_ ports.TokenVerifier = (*StubVerifier)(nil)
	_ ports.Warmer        = (*StubWarmer)(nil)
)

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session

	// GetErr, when set, is returned by every Get call.
	GetErr error
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

// Put seeds a session as the identity service would.
func (m *MemorySessionStore) Put(sess domainauth.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
}

// Has reports whether a session is present.
func (m *MemorySessionStore) Has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	return ok
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	if m.GetErr != nil {
		return domainauth.Session{}, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, apperrors.NotFound("session not found")
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// StubVerifier accepts tokens present in Users and rejects everything else.
type StubVerifier struct {
	Users map[string]domainauth.User
	Err   error
}

func (s *StubVerifier) Verify(_ context.Context, rawToken string) (domainauth.User, error) {
	if s.Err != nil {
		return domainauth.User{}, s.Err
	}
	u, ok := s.Users[rawToken]
	if !ok {
		return domainauth.User{}, apperrors.Unauthenticated("unknown token")
	}
	return u, nil
}

// StubWarmer records calls and returns Err.
type StubWarmer struct {
	Err   error
	Calls int
	// Block, when non-nil, is received from before Warm returns.
	Block chan struct{}
}

func (s *StubWarmer) Warm(ctx context.Context) error {
	s.Calls++
	if s.Block != nil {
		select {
		case <-s.Block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.Err
}
