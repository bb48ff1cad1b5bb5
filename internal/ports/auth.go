package ports

// Package ports defines interfaces (hexagonal ports) for session-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/target/tenderwatch/internal/domain/auth"
)

// Credentials carries whatever the caller presented to identify a session.
// Either field may be empty.
type Credentials struct {
	SessionID   string
	BearerToken string
}

// SessionSource exposes the current session state for a set of credentials.
// Implementations never return an error: failures settle as an unauthenticated state.
type SessionSource interface {
	State(ctx context.Context, creds Credentials) domainauth.SessionState
}

// SessionStore reads and revokes sessions written by the identity service.
type SessionStore interface {
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// TokenVerifier validates a bearer ID token and returns the identity it asserts.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (domainauth.User, error)
}

// Warmer is implemented by dependencies that must be established before
// the session provider can give an authoritative answer.
type Warmer interface {
	Warm(ctx context.Context) error
}

// RoleMapper maps provider groups to application roles.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}
