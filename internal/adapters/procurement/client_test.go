package procurement

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/target/tenderwatch/internal/errors"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(ClientOptions{BaseURL: srv.URL + "/api/2.5/"})
	require.NoError(t, err)
	return c
}

func TestListTenders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/2.5/tenders", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "1", r.URL.Query().Get("descending"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"a"}],"next_page":{"offset":"x"}}`))
	})

	raw, err := c.ListTenders(context.Background(), ListOptions{Limit: 10, Descending: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[{"id":"a"}],"next_page":{"offset":"x"}}`, string(raw))
}

func TestGetTender(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/2.5/tenders/abc" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"id":"abc"}}`))
	})

	raw, err := c.GetTender(context.Background(), " abc ")
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"id":"abc"}}`, string(raw))

	_, err = c.GetTender(context.Background(), "missing")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = c.GetTender(context.Background(), "  ")
	assert.True(t, apperrors.IsValidation(err))
}

func TestClient_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"status":"error"}`},
		{name: "not json", status: http.StatusOK, body: `<html>maintenance</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.ListTenders(context.Background(), ListOptions{})
			require.Error(t, err)
			assert.True(t, apperrors.IsUpstream(err))
		})
	}
}

func TestClient_KeepsAffinityCookie(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.SetCookie(w, &http.Cookie{Name: "SERVER_ID", Value: "node-7", Path: "/"})
		} else {
			ck, err := r.Cookie("SERVER_ID")
			if assert.NoError(t, err) {
				assert.Equal(t, "node-7", ck.Value)
			}
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	_, err := c.ListTenders(context.Background(), ListOptions{})
	require.NoError(t, err)
	_, err = c.ListTenders(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewClient(ClientOptions{BaseURL: base})
	require.NoError(t, err)

	_, err = c.ListTenders(context.Background(), ListOptions{})
	assert.True(t, apperrors.IsUnavailable(err))
}

func TestNewClient_Validation(t *testing.T) {
	c, err := NewClient(ClientOptions{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.base.String())

	_, err = NewClient(ClientOptions{BaseURL: "ftp://example.test"})
	assert.True(t, apperrors.IsValidation(err))
}
