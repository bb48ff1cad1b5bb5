package bootstrap

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/target/tenderwatch/config"
	"github.com/target/tenderwatch/internal/adapters/authroles"
	"github.com/target/tenderwatch/internal/adapters/oidc"
	redisadapter "github.com/target/tenderwatch/internal/adapters/redis"
	"github.com/target/tenderwatch/internal/ports"
	"github.com/target/tenderwatch/internal/service"
)

// AuthConfig contains dependencies for the session provider.
type AuthConfig struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	HTTPClient  *http.Client // optional, used for OIDC discovery
	Logger      *slog.Logger
}

// BuildSessionProvider assembles the session provider from the Redis session store
// and, when configured, the OIDC bearer token verifier. Both are warmed by Start.
func BuildSessionProvider(cfg AuthConfig) (*service.SessionProvider, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := service.SessionProviderOptions{Logger: logger}

	if cfg.RedisClient != nil {
		store := redisadapter.NewSessionStoreWithPrefix(cfg.RedisClient, cfg.Auth.SessionPrefix)
		opts.Sessions = store
		opts.Warmers = append(opts.Warmers, store)
	} else {
		logger.Warn("session store disabled: redis client not configured")
	}

	if cfg.Auth.OIDC.Enabled() {
		verifier, err := oidc.NewVerifier(oidc.VerifierConfig{
			IssuerURL:  cfg.Auth.OIDC.IssuerURL,
			ClientID:   cfg.Auth.OIDC.ClientID,
			Roles:      authroles.StaticRoleMapper{AdminGroup: cfg.Auth.AdminGroup, UserGroup: cfg.Auth.UserGroup},
			HTTPClient: cfg.HTTPClient,
		})
		if err != nil {
			return nil, fmt.Errorf("build oidc verifier: %w", err)
		}
		opts.Verifier = verifier
		opts.Warmers = append(opts.Warmers, verifier)
	} else {
		logger.Info("bearer token verification disabled: OIDC issuer or client id not set")
	}

	return service.NewSessionProvider(opts), nil
}

var _ ports.Warmer = (*oidc.Verifier)(nil)
