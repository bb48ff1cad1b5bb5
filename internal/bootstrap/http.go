package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/tenderwatch/config"
	redisadapter "github.com/target/tenderwatch/internal/adapters/redis"
	"github.com/target/tenderwatch/internal/domain/guard"
	httpx "github.com/target/tenderwatch/internal/http"
	"github.com/target/tenderwatch/internal/observability/metrics"
	"github.com/target/tenderwatch/internal/ports"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config        *config.AppConfig
	Sessions      httpx.SessionService
	RedisClient   redis.UniversalClient
	Observability ObservabilityContainer
	Logger        *slog.Logger
}

// NewHTTPServer builds the server and its handler chain without starting it.
func NewHTTPServer(cfg HTTPServerConfig) (*http.Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	services := httpx.RouterServices{
		Sessions:     cfg.Sessions,
		Guard:        guard.New(guard.Config{LoginPath: appCfg.Auth.LoginPath}),
		Recorder:     cfg.Observability.Recorder,
		Metrics:      cfg.Observability.Handler,
		CookieDomain: appCfg.HTTP.CookieDomain,
		Logger:       logger,
	}

	if appCfg.ProxyMounted() {
		proxy, err := buildProxy(appCfg.Procurement, cfg.RedisClient, cfg.Observability.Proxy, logger)
		if err != nil {
			return nil, err
		}
		services.Proxy = proxy
		services.ProxyPrefix = appCfg.Procurement.ProxyPrefix
		logger.Info("procurement proxy mounted",
			"prefix", appCfg.Procurement.ProxyPrefix,
			"upstream", appCfg.Procurement.APIURL,
			"cache", proxyCacheEnabled(appCfg.Procurement, cfg.RedisClient))
	}

	addr := appCfg.HTTP.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	return &http.Server{
		Addr:              addr,
		Handler:           buildHTTPHandler(logger, httpx.NewRouter(services)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}, nil
}

func proxyCacheEnabled(cfg config.ProcurementConfig, client redis.UniversalClient) bool {
	return cfg.CacheEnabled && client != nil
}

func buildProxy(
	cfg config.ProcurementConfig,
	client redis.UniversalClient,
	recorder *metrics.ProxyRecorder,
	logger *slog.Logger,
) (*httpx.ProcurementProxy, error) {
	opts := httpx.ProxyOptions{
		Upstream: cfg.APIURL,
		Prefix:   cfg.ProxyPrefix,
		Timeout:  cfg.Timeout,
		Logger:   logger,
	}
	if recorder != nil {
		opts.Recorder = recorder
	}
	if proxyCacheEnabled(cfg, client) {
		var cache ports.ResponseCache = redisadapter.NewResponseCache(client, cfg.CacheTTL)
		opts.Cache = cache
	}

	proxy, err := httpx.NewProcurementProxy(opts)
	if err != nil {
		return nil, fmt.Errorf("build procurement proxy: %w", err)
	}
	return proxy, nil
}

// buildHTTPHandler applies the outer middleware.
// Order: Recover -> Logging -> Router.
func buildHTTPHandler(logger *slog.Logger, router http.Handler) http.Handler {
	h := httpx.Logging(logger)(router)
	return httpx.Recover(logger)(h)
}

// serveHTTP runs srv until ctx is cancelled, then shuts it down gracefully.
func serveHTTP(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	logger.Info("HTTP server stopped")
	return <-errCh
}
