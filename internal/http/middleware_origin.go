package httpx

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// SameOrigin returns a middleware that rejects cross-site state-changing requests.
// Browsers announce the initiator through Sec-Fetch-Site or Origin; when neither
// header is present the request is not from a browser form and is allowed through.
//
// GET, HEAD, OPTIONS, and TRACE requests are exempt.
func SameOrigin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requiresOriginCheck(r.Method) && !sameOriginRequest(r) {
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "cross_origin_request",
					Err:     errors.New("cross-origin request rejected"),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requiresOriginCheck returns true if the HTTP method changes state.
func requiresOriginCheck(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	default:
		return true
	}
}

func sameOriginRequest(r *http.Request) bool {
	if site := strings.TrimSpace(r.Header.Get("Sec-Fetch-Site")); site != "" {
		// "none" is a user-initiated navigation such as a bookmark.
		return strings.EqualFold(site, "same-origin") || strings.EqualFold(site, "none")
	}

	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		// Covers the opaque "null" origin.
		return false
	}
	if !strings.EqualFold(u.Host, r.Host) {
		return false
	}
	scheme := "http"
	if r.TLS != nil || isForwardedHTTPS(r) {
		scheme = "https"
	}
	return strings.EqualFold(u.Scheme, scheme)
}

// isForwardedHTTPS checks if the request was forwarded over HTTPS.
// Handles comma-separated values in X-Forwarded-Proto header.
func isForwardedHTTPS(r *http.Request) bool {
	for _, proto := range strings.Split(r.Header.Get("X-Forwarded-Proto"), ",") {
		if strings.EqualFold(strings.TrimSpace(proto), "https") {
			return true
		}
	}
	return false
}
