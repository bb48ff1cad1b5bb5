package httpx

import (
	"context"
	"net/http"
	"sync"

	domainauth "github.com/target/tenderwatch/internal/domain/auth"
	"github.com/target/tenderwatch/internal/domain/guard"
	"github.com/target/tenderwatch/internal/ports"
)

// fakeSessions is a hand-rolled SessionService for handler and router tests.
type fakeSessions struct {
	mu        sync.Mutex
	state     domainauth.SessionState
	logoutErr error
	loggedOut []string
	lastCreds ports.Credentials
}

func (f *fakeSessions) State(_ context.Context, creds ports.Credentials) domainauth.SessionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCreds = creds
	return f.state
}

func (f *fakeSessions) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.Loading
}

func (f *fakeSessions) Logout(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedOut = append(f.loggedOut, id)
	return f.logoutErr
}

type decisionLog struct {
	mu    sync.Mutex
	kinds []guard.Kind
	api   []bool
}

func (d *decisionLog) RecordDecision(kind guard.Kind, api bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.kinds = append(d.kinds, kind)
	d.api = append(d.api, api)
}

// childHandler records whether it ran and what it saw.
type childHandler struct {
	called bool
	user   *domainauth.User
	path   string
}

func (c *childHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.called = true
	c.path = r.URL.RequestURI()
	c.user, _ = GetUserFromContext(r.Context())
	w.WriteHeader(http.StatusTeapot)
	_, _ = w.Write([]byte("child content"))
}
