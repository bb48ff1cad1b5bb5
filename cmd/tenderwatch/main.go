package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/target/tenderwatch/config"
	"github.com/target/tenderwatch/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logStartupInfo(ctx, logger, &cfg)

	redisClient, err := bootstrap.NewRedisClient(cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := redisClient.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close redis failed", "error", cerr)
		}
	}()

	provider, err := bootstrap.BuildSessionProvider(bootstrap.AuthConfig{
		Auth:        cfg.Auth,
		RedisClient: redisClient,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	obs := bootstrap.BuildObservability(logger, cfg.Observability)
	defer func() {
		if cerr := obs.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close statsd failed", "error", cerr)
		}
	}()

	server, err := bootstrap.NewHTTPServer(bootstrap.HTTPServerConfig{
		Config:        &cfg,
		Sessions:      provider,
		RedisClient:   redisClient,
		Observability: obs,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	return bootstrap.RunServicesWithShutdown(ctx, &bootstrap.ServiceOrchestrationConfig{
		Server:   server,
		Provider: provider,
		Logger:   logger,
	})
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting tenderwatch",
		"addr", cfg.HTTP.Addr,
		"dev", cfg.IsDev,
		"login_path", cfg.Auth.LoginPath,
		"oidc_enabled", cfg.Auth.OIDC.Enabled(),
		"proxy_mounted", cfg.ProxyMounted(),
		"procurement_api", cfg.Procurement.APIURL)
}
