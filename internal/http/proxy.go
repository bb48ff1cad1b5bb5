package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/target/tenderwatch/internal/ports"
)

const (
	// DefaultProxyTimeout bounds how long the proxy waits for upstream response headers.
	DefaultProxyTimeout = 15 * time.Second
	maxCachedBody       = 1 << 20
	cacheHeader         = "X-Cache"
)

// ProxyOptions configures the procurement API reverse proxy.
type ProxyOptions struct {
	// Upstream is the base URL requests are forwarded to, including any base path.
	Upstream string
	// Prefix is stripped from the inbound path before forwarding.
	Prefix  string
	Timeout time.Duration
	// Cache is optional; when set, successful JSON GET responses are replayed from it.
	Cache ports.ResponseCache
	// Recorder is optional and receives the duration of every request sent upstream.
	Recorder UpstreamRecorder
	Logger   *slog.Logger
}

// UpstreamRecorder receives one call per request forwarded to the procurement API.
type UpstreamRecorder interface {
	RecordUpstream(status int, elapsed time.Duration)
}

// ProcurementProxy forwards requests under a path prefix to the procurement API.
// The Host header is rewritten to the upstream, and caller credentials are never forwarded.
type ProcurementProxy struct {
	proxy    *httputil.ReverseProxy
	cache    ports.ResponseCache
	recorder UpstreamRecorder
	logger   *slog.Logger
}

// NewProcurementProxy validates opts and builds the proxy handler.
func NewProcurementProxy(opts ProxyOptions) (*ProcurementProxy, error) {
	target, err := url.Parse(strings.TrimSpace(opts.Upstream))
	if err != nil {
		return nil, fmt.Errorf("parse upstream url: %w", err)
	}
	if (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		return nil, fmt.Errorf("upstream url must be absolute http(s), got %q", opts.Upstream)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultProxyTimeout
	}
	prefix := NormalizePrefix(opts.Prefix)

	transport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, errors.New("default transport is not *http.Transport")
	}
	transport = transport.Clone()
	transport.ResponseHeaderTimeout = timeout

	p := &ProcurementProxy{cache: opts.Cache, recorder: opts.Recorder, logger: logger}
	p.proxy = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			path := strings.TrimPrefix(pr.In.URL.Path, prefix)
			if path == "" {
				path = "/"
			}
			pr.Out.URL.Path = path
			pr.Out.URL.RawPath = ""
			pr.SetURL(target)
			pr.Out.Header.Del("Cookie")
			pr.Out.Header.Del("Authorization")
			if p.cache != nil {
				// Let the transport negotiate and decode gzip so cached bodies are plain.
				pr.Out.Header.Del("Accept-Encoding")
			}
			pr.SetXForwarded()
		},
		ModifyResponse: func(resp *http.Response) error {
			resp.Header.Del("Set-Cookie")
			return nil
		},
		Transport: transport,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.WarnContext(r.Context(), "procurement upstream failed",
				"error", err, "path", r.URL.Path, "upstream", target.Host)
			WriteError(w, ErrorParams{
				Code:    http.StatusBadGateway,
				ErrCode: "upstream_unavailable",
				Err:     errors.New("procurement API is unavailable"),
			})
		},
	}
	return p, nil
}

// NormalizePrefix returns prefix with a single leading slash and no trailing slash.
func NormalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ""
	}
	return "/" + prefix
}

func (p *ProcurementProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	useCache := p.cache != nil && r.Method == http.MethodGet && r.Header.Get("Range") == ""
	key := r.URL.RequestURI()

	if useCache {
		cached, hit, err := p.cache.Get(r.Context(), key)
		if err != nil {
			p.logger.WarnContext(r.Context(), "proxy cache read failed", "error", err)
		}
		if hit {
			writeCached(w, cached)
			return
		}
	}

	cw := &captureWriter{ResponseWriter: w, status: http.StatusOK, capture: useCache}
	start := time.Now()
	p.proxy.ServeHTTP(cw, r)
	if p.recorder != nil {
		p.recorder.RecordUpstream(cw.status, time.Since(start))
	}

	if !useCache || !cw.cacheable() {
		return
	}
	resp := ports.CachedResponse{
		Status:      cw.status,
		ContentType: cw.Header().Get("Content-Type"),
		Body:        cw.buf.Bytes(),
	}
	if err := p.cache.Set(r.Context(), key, resp); err != nil {
		p.logger.WarnContext(r.Context(), "proxy cache write failed", "error", err)
	}
}

func writeCached(w http.ResponseWriter, resp ports.CachedResponse) {
	h := w.Header()
	if resp.ContentType != "" {
		h.Set("Content-Type", resp.ContentType)
	}
	h.Set(cacheHeader, "HIT")
	w.WriteHeader(resp.Status)
	if _, err := w.Write(resp.Body); err != nil {
		return
	}
}

// captureWriter records the status of a proxied response and, when capture is set,
// tees the body so it can be cached after the response completes.
// X-Cache: MISS is only sent on responses that qualify for caching.
type captureWriter struct {
	http.ResponseWriter
	status      int
	capture     bool
	wroteHeader bool
	buf         bytes.Buffer
	overflow    bool
}

func (c *captureWriter) WriteHeader(status int) {
	if !c.wroteHeader {
		c.wroteHeader = true
		c.status = status
		if c.capture && c.storable() {
			c.Header().Set(cacheHeader, "MISS")
		}
	}
	c.ResponseWriter.WriteHeader(status)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	if !c.wroteHeader {
		c.WriteHeader(http.StatusOK)
	}
	if c.capture && !c.overflow {
		if c.buf.Len()+len(b) > maxCachedBody {
			c.overflow = true
			c.buf.Reset()
		} else {
			c.buf.Write(b)
		}
	}
	return c.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (c *captureWriter) Unwrap() http.ResponseWriter { return c.ResponseWriter }

// storable reports whether the status and headers allow caching.
func (c *captureWriter) storable() bool {
	if c.status != http.StatusOK {
		return false
	}
	h := c.Header()
	if h.Get("Content-Encoding") != "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(h.Get("Content-Type"))
	return err == nil && (mt == "application/json" || strings.HasSuffix(mt, "+json"))
}

func (c *captureWriter) cacheable() bool {
	return c.capture && !c.overflow && c.storable()
}
