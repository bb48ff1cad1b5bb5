package httpx

import (
	"context"

	domainauth "github.com/target/tenderwatch/internal/domain/auth"
)

// userKey is an unexported context key type to avoid collisions across packages.
type userKey struct{}

// SetUserInContext returns a child context that carries the given user.
// If user is nil, the original ctx is returned unchanged.
func SetUserInContext(ctx context.Context, user *domainauth.User) context.Context {
	if user == nil {
		return ctx
	}
	return context.WithValue(ctx, userKey{}, user)
}

// GetUserFromContext returns the authorized user and a boolean indicating presence.
func GetUserFromContext(ctx context.Context) (*domainauth.User, bool) {
	if u, ok := ctx.Value(userKey{}).(*domainauth.User); ok && u != nil {
		return u, true
	}
	return nil, false
}

// IsGuestUser reports whether the current request context is unauthenticated or a guest.
func IsGuestUser(ctx context.Context) bool {
	u, ok := GetUserFromContext(ctx)
	if !ok {
		return true
	}
	return u.IsGuest()
}
