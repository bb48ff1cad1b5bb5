package auth

// Package auth contains domain-level types for identities and session state.
// It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// User is the authenticated identity the guard lets through.
type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsGuest returns true if the user role is guest.
func (u User) IsGuest() bool { return u.Role == RoleGuest }

// Session is the server-side record written by the identity service into the shared store.
// ID is an opaque session identifier carried in the session_id cookie.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// User projects the stored session into the identity exposed to handlers.
func (s Session) User() User {
	return User{
		ID:        s.UserID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
		Role:      s.Role,
		ExpiresAt: s.ExpiresAt,
	}
}

// SessionState is the snapshot a session provider exposes to its consumers.
// While Loading is true, User is not authoritative and must not decide access.
type SessionState struct {
	User    *User
	Loading bool
}

// Authenticated reports whether the state carries a settled identity.
func (s SessionState) Authenticated() bool {
	return !s.Loading && s.User != nil
}
