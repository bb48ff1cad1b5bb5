package httpx

import (
	"io"
	"net/http"
)

const (
	healthResponse  = `{"status":"ok"}`
	loadingResponse = `{"status":"loading"}`
)

// healthHandler returns a simple 200 OK status for liveness checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, r, http.StatusOK, healthResponse)
}

// LoadingReporter reports whether a dependency is still being established.
type LoadingReporter interface {
	Loading() bool
}

// readyHandler answers 503 until the session provider has settled.
func readyHandler(src LoadingReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if src != nil && src.Loading() {
			writeStatus(w, r, http.StatusServiceUnavailable, loadingResponse)
			return
		}
		writeStatus(w, r, http.StatusOK, healthResponse)
	}
}

func writeStatus(w http.ResponseWriter, r *http.Request, code int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, body); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}
