package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/tenderwatch/internal/domain/auth"
)

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestStatus_Loading(t *testing.T) {
	h := &SessionHandlers{Svc: &fakeSessions{state: domainauth.SessionState{Loading: true}}}

	w := httptest.NewRecorder()
	h.Status(w, httptest.NewRequest(http.MethodGet, "/auth/status", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["loading"])
	assert.Equal(t, false, body["authenticated"])
}

func TestStatus_AnonymousClearsStaleCookie(t *testing.T) {
	svc := &fakeSessions{}
	h := &SessionHandlers{Svc: svc, CookieDomain: "example.test"}

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale"})
	w := httptest.NewRecorder()
	h.Status(w, req)

	body := decodeBody(t, w)
	assert.Equal(t, false, body["authenticated"])
	assert.Equal(t, "stale", svc.lastCreds.SessionID)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.Equal(t, "example.test", cookies[0].Domain)
}

func TestStatus_Authenticated(t *testing.T) {
	user := &domainauth.User{ID: "u1", Email: "u1@example.test", Role: domainauth.RoleAdmin}
	h := &SessionHandlers{Svc: &fakeSessions{state: domainauth.SessionState{User: user}}}

	w := httptest.NewRecorder()
	h.Status(w, httptest.NewRequest(http.MethodGet, "/auth/status", nil))

	body := decodeBody(t, w)
	assert.Equal(t, true, body["authenticated"])
	u, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "u1", u["id"])
	assert.Equal(t, "admin", u["role"])
	assert.Empty(t, w.Result().Cookies())
}

func TestLogout_BrowserRedirectsToLogin(t *testing.T) {
	svc := &fakeSessions{logoutErr: errors.New("redis down")}
	h := &SessionHandlers{Svc: svc}

	form := url.Values{"redirect_uri": {"/dashboard"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess-1"})
	w := httptest.NewRecorder()
	h.Logout(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?redirect_uri=%2Fdashboard", w.Header().Get("Location"))
	assert.Equal(t, []string{"sess-1"}, svc.loggedOut)
	require.Len(t, w.Result().Cookies(), 1)
	assert.Equal(t, -1, w.Result().Cookies()[0].MaxAge)
}

func TestLogout_JSONRejectsOffsiteRedirect(t *testing.T) {
	svc := &fakeSessions{}
	h := &SessionHandlers{Svc: svc, LoginPath: "/signin"}

	req := httptest.NewRequest(http.MethodPost, "/auth/logout?redirect_uri=//evil.example", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	h.Logout(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "/signin?redirect_uri=%2F", body["redirect_to"])
	assert.Empty(t, svc.loggedOut)
}
