// Package testutil provides testing utilities and helpers for tenderwatch.
package testutil

import (
	"time"

	domainauth "github.com/target/tenderwatch/internal/domain/auth"
)

// SessionBuilder provides a fluent interface for building Session objects for testing.
type SessionBuilder struct {
	sess domainauth.Session
}

// NewSession creates a SessionBuilder with sensible defaults: a user-role session valid for an hour.
func NewSession() *SessionBuilder {
	return &SessionBuilder{
		sess: domainauth.Session{
			ID:        "sess-1",
			UserID:    "u1",
			FirstName: "Test",
			LastName:  "Buyer",
			Email:     "buyer@example.com",
			Role:      domainauth.RoleUser,
			ExpiresAt: time.Now().Add(time.Hour).UTC().Truncate(time.Second),
		},
	}
}

// WithID sets the session id.
func (b *SessionBuilder) WithID(id string) *SessionBuilder {
	b.sess.ID = id
	return b
}

// WithUser sets the user id and email.
func (b *SessionBuilder) WithUser(userID, email string) *SessionBuilder {
	b.sess.UserID = userID
	b.sess.Email = email
	return b
}

// WithRole sets the role.
func (b *SessionBuilder) WithRole(role domainauth.Role) *SessionBuilder {
	b.sess.Role = role
	return b
}

// ExpiresAt sets an absolute expiry.
func (b *SessionBuilder) ExpiresAt(t time.Time) *SessionBuilder {
	b.sess.ExpiresAt = t
	return b
}

// Expired makes the session expired one minute ago.
func (b *SessionBuilder) Expired() *SessionBuilder {
	b.sess.ExpiresAt = time.Now().Add(-time.Minute).UTC().Truncate(time.Second)
	return b
}

// Build returns the built session.
func (b *SessionBuilder) Build() domainauth.Session {
	return b.sess
}

// AdminSession is a valid admin session.
func AdminSession() domainauth.Session {
	return NewSession().WithID("admin-sess").WithUser("admin", "admin@example.com").WithRole(domainauth.RoleAdmin).Build()
}
