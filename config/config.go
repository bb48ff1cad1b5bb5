package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: access guard and session provider configuration
//   - database.go: Redis configuration
//   - http.go: HTTP server configuration
//   - procurement.go: upstream API, proxy and cache configuration
//   - observability.go: metrics configuration
type AppConfig struct {
	// IsDev controls development mode behavior such as mounting the procurement proxy.
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	Auth AuthConfig

	Redis RedisConfig `envPrefix:"REDIS_"`

	HTTP HTTPConfig

	Procurement ProcurementConfig `envPrefix:"PROCUREMENT_"`

	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Auth.Sanitize()
	c.Procurement.Sanitize()
	c.Observability.Sanitize()

	// Check NODE_ENV for dev mode
	c.detectDevMode()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// ProxyMounted reports whether the procurement proxy should be served.
// The proxy is a development aid; production mounts it only when explicitly enabled.
func (c *AppConfig) ProxyMounted() bool {
	return c.IsDev || c.Procurement.ProxyEnabled
}
