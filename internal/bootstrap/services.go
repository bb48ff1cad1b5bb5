package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultWarmupTimeout bounds how long the session provider may stay loading.
const DefaultWarmupTimeout = 30 * time.Second

// Starter establishes a dependency once; the session provider implements it.
type Starter interface {
	Start(ctx context.Context) error
}

// ServiceOrchestrationConfig contains everything RunServicesWithShutdown supervises.
type ServiceOrchestrationConfig struct {
	Server   *http.Server
	Provider Starter
	Logger   *slog.Logger
	// WarmupTimeout defaults to DefaultWarmupTimeout.
	WarmupTimeout time.Duration
	// Signals defaults to SIGINT and SIGTERM.
	Signals []os.Signal
}

// RunServicesWithShutdown serves HTTP while the session provider warms up in the background,
// and shuts everything down on the first signal or server failure.
func RunServicesWithShutdown(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Server == nil {
		return errors.New("service orchestration config requires an HTTP server")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	signals := cfg.Signals
	if len(signals) == 0 {
		signals = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}

	ctx, stop := signal.NotifyContext(ctx, signals...)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return serveHTTP(gctx, cfg.Server, logger)
	})

	if cfg.Provider != nil {
		g.Go(func() error {
			warmCtx, cancel := context.WithTimeout(gctx, warmupTimeout(cfg.WarmupTimeout))
			defer cancel()
			// Warmup failures degrade the provider but never stop the server.
			if err := cfg.Provider.Start(warmCtx); err != nil {
				logger.WarnContext(gctx, "session provider started degraded", "error", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run services: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}

func warmupTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultWarmupTimeout
	}
	return d
}
