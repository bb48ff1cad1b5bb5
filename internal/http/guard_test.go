package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/tenderwatch/internal/domain/auth"
	"github.com/target/tenderwatch/internal/domain/guard"
	"github.com/target/tenderwatch/internal/mocks"
	"github.com/target/tenderwatch/internal/ports"
	"go.uber.org/mock/gomock"
)

func newGuarded(t *testing.T, state domainauth.SessionState, rec DecisionRecorder) (http.Handler, *childHandler) {
	t.Helper()
	ctrl := gomock.NewController(t)
	src := mocks.NewMockSessionSource(ctrl)
	src.EXPECT().State(gomock.Any(), gomock.Any()).Return(state).AnyTimes()

	child := &childHandler{}
	mw := RequireSession(GuardOptions{Guard: guard.New(guard.Config{}), Sessions: src, Recorder: rec})
	return BrowserDetection()(mw(child)), child
}

func TestRequireSession_LoadingRendersPlaceholder(t *testing.T) {
	h, child := newGuarded(t, domainauth.SessionState{Loading: true, User: &domainauth.User{ID: "u1"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.False(t, child.called)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Empty(t, w.Header().Get("Location"))
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	assert.Equal(t, "2", w.Header().Get("Refresh"))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), LoadingMessage)
	assert.NotContains(t, w.Body.String(), "<form")
	assert.NotContains(t, w.Body.String(), "<a ")
}

func TestRequireSession_LoadingHEADHasNoBody(t *testing.T) {
	h, _ := newGuarded(t, domainauth.SessionState{Loading: true}, nil)

	req := httptest.NewRequest(http.MethodHead, "/dashboard", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRequireSession_LoadingAPI(t *testing.T) {
	h, child := newGuarded(t, domainauth.SessionState{Loading: true}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/procurement/tenders", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.False(t, child.called)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "session_loading", body["error"])
}

func TestRequireSession_RedirectsAnonymousBrowser(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   string
	}{
		{name: "plain path", target: "/dashboard", want: "/login?redirect_uri=%2Fdashboard"},
		{name: "with query", target: "/dashboard?tab=1", want: "/login?redirect_uri=%2Fdashboard%3Ftab%3D1"},
		{name: "root", target: "/", want: "/login?redirect_uri=%2F"},
		{name: "escaped question mark", target: "/tenders/a%3Fb", want: "/login?redirect_uri=%2Ftenders%2Fa%253Fb"},
		{name: "escaped slash", target: "/tenders/a%2Fb", want: "/login?redirect_uri=%2Ftenders%2Fa%252Fb"},
		{name: "escaped percent", target: "/docs/50%25", want: "/login?redirect_uri=%2Fdocs%2F50%2525"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, child := newGuarded(t, domainauth.SessionState{}, nil)

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			req.Header.Set("Accept", "text/html")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.False(t, child.called)
			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, tt.want, w.Header().Get("Location"))
		})
	}
}

func TestRequireSession_RedirectAPIReturns401(t *testing.T) {
	h, child := newGuarded(t, domainauth.SessionState{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/procurement/tenders?limit=5", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.False(t, child.called)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Bearer")

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "authentication_required", body["error"])
	assert.Equal(t, "/login?redirect_uri=%2Fapi%2Fprocurement%2Ftenders%3Flimit%3D5", body["login_url"])
}

func TestRequireSession_AuthorizedPassesThrough(t *testing.T) {
	user := &domainauth.User{ID: "u1", Role: domainauth.RoleUser}
	h, child := newGuarded(t, domainauth.SessionState{User: user}, nil)

	req := httptest.NewRequest(http.MethodGet, "/dashboard?x=1", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.True(t, child.called)
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "child content", w.Body.String())
	assert.Equal(t, "/dashboard?x=1", child.path)
	require.NotNil(t, child.user)
	assert.Equal(t, "u1", child.user.ID)
}

func TestRequireSession_PassesCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockSessionSource(ctrl)
	src.EXPECT().
		State(gomock.Any(), ports.Credentials{SessionID: "sess-1", BearerToken: "tok-1"}).
		Return(domainauth.SessionState{User: &domainauth.User{ID: "u1"}})

	child := &childHandler{}
	h := RequireSession(GuardOptions{Sessions: src})(child)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess-1"})
	req.Header.Set("Authorization", "bearer tok-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, child.called)
}

func TestRequireSession_RecordsDecisions(t *testing.T) {
	rec := &decisionLog{}
	h, _ := newGuarded(t, domainauth.SessionState{}, rec)

	browser := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	h.ServeHTTP(httptest.NewRecorder(), browser)
	api := httptest.NewRequest(http.MethodGet, "/api/procurement/tenders", nil)
	h.ServeHTTP(httptest.NewRecorder(), api)

	assert.Equal(t, []guard.Kind{guard.KindRedirect, guard.KindRedirect}, rec.kinds)
	assert.Equal(t, []bool{false, true}, rec.api)
}

func TestRequireSession_CustomLoginPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockSessionSource(ctrl)
	src.EXPECT().State(gomock.Any(), gomock.Any()).Return(domainauth.SessionState{})

	h := RequireSession(GuardOptions{
		Guard:    guard.New(guard.Config{LoginPath: "/sso/start?provider=corp"}),
		Sessions: src,
	})(&childHandler{})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/sso/start?provider=corp&redirect_uri=%2Fdashboard", w.Header().Get("Location"))
}

func TestCredentialsFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		auth   string
		want   ports.Credentials
	}{
		{name: "none"},
		{name: "cookie only", cookie: "abc", want: ports.Credentials{SessionID: "abc"}},
		{name: "bearer only", auth: "Bearer xyz", want: ports.Credentials{BearerToken: "xyz"}},
		{name: "basic ignored", auth: "Basic dXNlcjpwYXNz"},
		{name: "both", cookie: "abc", auth: "BEARER  xyz ", want: ports.Credentials{SessionID: "abc", BearerToken: "xyz"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.cookie})
			}
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			assert.Equal(t, tt.want, credentialsFromRequest(req))
		})
	}
}

func TestSafeRedirectPath(t *testing.T) {
	tests := map[string]string{
		"":                      "/",
		"/dashboard":            "/dashboard",
		"/dashboard?tab=1":      "/dashboard?tab=1",
		"//evil.example":        "/",
		"/\\evil.example":       "/",
		"https://evil.example/": "/",
		"relative":              "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeRedirectPath(in), "input %q", in)
	}
}
