package httpx

import (
	"log/slog"
	"net/http"

	"github.com/target/tenderwatch/internal/domain/guard"
)

// RouterServices holds everything the HTTP router wires together.
type RouterServices struct {
	Sessions SessionService
	Guard    *guard.Guard
	// Optional: guard decision metrics.
	Recorder DecisionRecorder
	// Optional: procurement proxy mounted at ProxyPrefix behind the guard.
	Proxy       http.Handler
	ProxyPrefix string
	// Optional: metrics exposition handler mounted at /metrics.
	Metrics      http.Handler
	CookieDomain string
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router with browser detection middleware.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	g := services.Guard
	if g == nil {
		g = guard.New(guard.Config{})
	}
	protect := RequireSession(GuardOptions{
		Guard:    g,
		Sessions: services.Sessions,
		Recorder: services.Recorder,
		Logger:   services.Logger,
	})

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readyHandler(services.Sessions))

	if services.Metrics != nil {
		mux.Handle("GET /metrics", services.Metrics)
	}

	registerSessionRoutes(mux, &SessionHandlers{
		Svc:          services.Sessions,
		LoginPath:    g.LoginPath(),
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	})

	prefix := NormalizePrefix(services.ProxyPrefix)
	dashboard := DashboardHandler{}
	if services.Proxy != nil && prefix != "" {
		dashboard.ProxyPrefix = prefix
		mux.Handle(prefix+"/", protect(services.Proxy))
	}
	mux.Handle("GET /dashboard", protect(dashboard))
	mux.Handle("GET /{$}", protect(dashboard))

	return BrowserDetection()(mux)
}

func registerSessionRoutes(mux *http.ServeMux, h *SessionHandlers) {
	mux.HandleFunc("GET /auth/status", h.Status)
	mux.Handle("POST /auth/logout", SameOrigin()(http.HandlerFunc(h.Logout)))
}
