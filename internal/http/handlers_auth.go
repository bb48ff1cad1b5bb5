package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/target/tenderwatch/internal/domain/guard"
	"github.com/target/tenderwatch/internal/ports"
)

// SessionService is the slice of the session provider the HTTP layer needs.
type SessionService interface {
	ports.SessionSource
	Loading() bool
	Logout(ctx context.Context, sessionID string) error
}

// SessionHandlers exposes the session provider to browser clients.
type SessionHandlers struct {
	Svc          SessionService
	LoginPath    string
	CookieDomain string
	Logger       *slog.Logger
}

func (h *SessionHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *SessionHandlers) loginPath() string {
	if h.LoginPath == "" {
		return guard.DefaultLoginPath
	}
	return h.LoginPath
}

// Status returns the current session state.
// GET /auth/status.
func (h *SessionHandlers) Status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	creds := credentialsFromRequest(r)
	state := h.Svc.State(r.Context(), creds)

	if state.Loading {
		WriteJSON(w, http.StatusOK, map[string]any{
			"authenticated": false,
			"loading":       true,
		})
		return
	}

	if state.User == nil {
		if creds.SessionID != "" {
			// Session is invalid or expired, clear the cookie
			h.clearCookie(w, r, SessionCookieName)
		}
		WriteJSON(w, http.StatusOK, map[string]any{
			"authenticated": false,
			"loading":       false,
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"loading":       false,
		"user":          state.User,
	})
}

// Logout revokes the server-side session and clears the cookie.
// POST /auth/logout.
func (h *SessionHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionCookie, err := r.Cookie(SessionCookieName); err == nil {
		if logoutErr := h.Svc.Logout(r.Context(), sessionCookie.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
	}
	h.clearCookie(w, r, SessionCookieName)

	redirectURI := r.FormValue("redirect_uri")
	if redirectURI == "" {
		redirectURI = "/"
	}

	u, err := url.Parse(h.loginPath())
	if err != nil {
		u = &url.URL{Path: guard.DefaultLoginPath}
	}
	q := u.Query()
	q.Set("redirect_uri", safeRedirectPath(redirectURI))
	u.RawQuery = q.Encode()
	loginURL := u.String()

	if wantsJSON(r) {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": loginURL,
		})
		return
	}

	http.Redirect(w, r, loginURL, http.StatusFound)
}

// clearCookie clears a cookie by setting it to expire immediately.
// It mirrors the attributes the identity service uses when setting it.
func (h *SessionHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	isSecure := r.TLS != nil || isForwardedHTTPS(r)
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}
