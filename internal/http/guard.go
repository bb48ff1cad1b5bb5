package httpx

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/target/tenderwatch/internal/domain/guard"
	"github.com/target/tenderwatch/internal/ports"
)

// SessionCookieName is the cookie carrying the opaque session id.
const SessionCookieName = "session_id"

// DefaultRetryAfter is advertised to clients while the session provider is loading.
const DefaultRetryAfter = 2 * time.Second

// DecisionRecorder receives one call per guard evaluation.
type DecisionRecorder interface {
	RecordDecision(kind guard.Kind, api bool)
}

// GuardOptions groups dependencies for RequireSession.
type GuardOptions struct {
	Guard    *guard.Guard
	Sessions ports.SessionSource
	Recorder DecisionRecorder // optional
	Logger   *slog.Logger     // optional
	// RetryAfter is sent with loading responses. Defaults to DefaultRetryAfter.
	RetryAfter time.Duration
}

// RequireSession gates next behind the access guard.
// While the session provider is loading it renders a placeholder, when no user
// is present it redirects to the login path, and otherwise it passes the request
// through with the user stored in the context.
func RequireSession(opts GuardOptions) func(http.Handler) http.Handler {
	g := opts.Guard
	if g == nil {
		g = guard.New(guard.Config{})
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	retryAfter := opts.RetryAfter
	if retryAfter <= 0 {
		retryAfter = DefaultRetryAfter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := opts.Sessions.State(r.Context(), credentialsFromRequest(r))
			decision := g.Evaluate(state, guard.LocationFromURL(r.URL))
			api := !IsBrowserRequest(r)
			if opts.Recorder != nil {
				opts.Recorder.RecordDecision(decision.Kind, api)
			}

			switch decision.Kind {
			case guard.KindAuthorized:
				next.ServeHTTP(w, r.WithContext(SetUserInContext(r.Context(), decision.User)))
			case guard.KindLoading:
				logger.DebugContext(r.Context(), "session provider loading", "path", r.URL.Path)
				renderLoading(w, r, loadingParams{RetryAfter: retryAfter, API: api})
			case guard.KindRedirect:
				renderRedirect(w, r, redirectParams{LoginPath: g.LoginPath(), Redirect: decision.Redirect, API: api})
			default:
				logger.ErrorContext(r.Context(), "unknown guard decision", "kind", decision.Kind.String())
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		})
	}
}

// credentialsFromRequest collects the session cookie and a bearer token, either may be absent.
func credentialsFromRequest(r *http.Request) ports.Credentials {
	var creds ports.Credentials
	if c, err := r.Cookie(SessionCookieName); err == nil {
		creds.SessionID = strings.TrimSpace(c.Value)
	}
	if scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " "); ok &&
		strings.EqualFold(scheme, "Bearer") {
		creds.BearerToken = strings.TrimSpace(token)
	}
	return creds
}

type loadingParams struct {
	RetryAfter time.Duration
	API        bool
}

var loadingPage = template.Must(template.New("loading").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="{{.Seconds}}">
<title>{{.Title}}</title>
<style>
body{margin:0;min-height:100vh;display:flex;align-items:center;justify-content:center;font-family:system-ui,sans-serif;color:#333}
.spinner{width:2.5rem;height:2.5rem;margin:0 auto 1rem;border:4px solid #ddd;border-top-color:#555;border-radius:50%;animation:spin 1s linear infinite}
@keyframes spin{to{transform:rotate(360deg)}}
main{text-align:center}
</style>
</head>
<body>
<main role="status" aria-live="polite">
<div class="spinner" aria-hidden="true"></div>
<p>{{.Message}}</p>
</main>
</body>
</html>
`))

// LoadingMessage is the text shown while the session is being established.
const LoadingMessage = "Checking your session…"

func renderLoading(w http.ResponseWriter, r *http.Request, p loadingParams) {
	seconds := strconv.Itoa(max(1, int(p.RetryAfter.Round(time.Second)/time.Second)))
	h := w.Header()
	h.Set("Retry-After", seconds)
	h.Set("Cache-Control", "no-store")

	if p.API {
		WriteError(w, ErrorParams{
			Code:    http.StatusServiceUnavailable,
			ErrCode: "session_loading",
			Err:     errors.New("session is being established"),
		})
		return
	}

	var buf bytes.Buffer
	data := struct{ Title, Message, Seconds string }{Title: "Loading", Message: LoadingMessage, Seconds: seconds}
	if err := loadingPage.Execute(&buf, data); err != nil {
		http.Error(w, LoadingMessage, http.StatusServiceUnavailable)
		return
	}

	h.Set("Refresh", seconds)
	h.Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := buf.WriteTo(w); err != nil {
		return
	}
}

type redirectParams struct {
	LoginPath string
	Redirect  *guard.Redirect
	API       bool
}

func renderRedirect(w http.ResponseWriter, r *http.Request, p redirectParams) {
	from := r.URL.RequestURI()
	to := p.LoginPath
	if p.Redirect != nil {
		from = p.Redirect.State.From.String()
		if p.Redirect.To != "" {
			to = p.Redirect.To
		}
	}
	target := loginURL(to, from)
	w.Header().Set("Cache-Control", "no-store")

	if p.API {
		w.Header().Set("WWW-Authenticate", `Bearer realm="tenderwatch"`)
		WriteJSON(w, http.StatusUnauthorized, map[string]string{
			"error":     "authentication_required",
			"message":   "authentication required",
			"login_url": target,
		})
		return
	}

	// 303 keeps the guarded URL out of the browser history.
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// loginURL appends the originally requested location to the login path as redirect_uri.
func loginURL(loginPath, from string) string {
	u, err := url.Parse(loginPath)
	if err != nil || u.IsAbs() || u.Host != "" {
		u = &url.URL{Path: guard.DefaultLoginPath}
	}
	q := u.Query()
	q.Set("redirect_uri", safeRedirectPath(from))
	u.RawQuery = q.Encode()
	return u.String()
}

// safeRedirectPath allows only same-origin relative paths and collapses anything else to "/".
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	if strings.HasPrefix(candidate, "//") || strings.HasPrefix(candidate, "/\\") {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return candidate
}
