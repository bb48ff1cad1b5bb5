// Package procurement is a thin client for the public procurement API.
// Payloads are returned as opaque JSON.
package procurement

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/target/tenderwatch/internal/errors"
	"golang.org/x/net/publicsuffix"
)

const (
	// DefaultBaseURL is the public API root.
	DefaultBaseURL = "https://public.api.openprocurement.org/api/2.5"
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 32 << 20
	userAgent      = "tenderwatch"
)

// ClientOptions configures a Client.
type ClientOptions struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client // optional; its Jar is replaced when nil
}

// Client issues single, unpaginated requests against the API.
// The API pins callers to a backend with a SERVER_ID cookie, so the client keeps a cookie jar.
type Client struct {
	base *url.URL
	http *http.Client
}

// ListOptions narrows a tender listing.
type ListOptions struct {
	Limit      int
	Descending bool
}

// NewClient validates the base URL and prepares the HTTP client.
func NewClient(opts ClientOptions) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, apperrors.Validationf("base url must be absolute http(s): %q", raw)
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	if hc.Jar == nil {
		jar, jarErr := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if jarErr != nil {
			return nil, fmt.Errorf("cookie jar: %w", jarErr)
		}
		hc.Jar = jar
	}

	return &Client{base: base, http: hc}, nil
}

// ListTenders fetches one page of the tender feed.
func (c *Client) ListTenders(ctx context.Context, opts ListOptions) (json.RawMessage, error) {
	q := url.Values{}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Descending {
		q.Set("descending", "1")
	}
	return c.get(ctx, "/tenders", q)
}

// GetTender fetches a single tender by id.
func (c *Client) GetTender(ctx context.Context, id string) (json.RawMessage, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.Validation("tender id is required")
	}
	return c.get(ctx, "/tenders/"+url.PathEscape(id), nil)
}

func (c *Client) get(ctx context.Context, path string, q url.Values) (json.RawMessage, error) {
	u := *c.base
	u.Path = c.base.Path + path
	u.RawPath = ""
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeUnavailable, "GET %s", path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.NotFoundf("GET %s", path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, apperrors.Upstream(resp.StatusCode, snippet(body))
	}

	if !json.Valid(body) {
		return nil, apperrors.Upstream(resp.StatusCode, "response is not valid JSON")
	}
	return json.RawMessage(body), nil
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	return s
}
