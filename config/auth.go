package config

import "strings"

// DefaultLoginPath is where anonymous browsers are sent.
const DefaultLoginPath = "/login"

// OIDCConfig controls bearer token verification. Leave IssuerURL empty to accept sessions only.
type OIDCConfig struct {
	IssuerURL string `env:"ISSUER_URL"`
	ClientID  string `env:"CLIENT_ID"`
}

// Enabled reports whether bearer token verification is configured.
func (c OIDCConfig) Enabled() bool {
	return c.IssuerURL != "" && c.ClientID != ""
}

// AuthConfig groups access guard and session provider configuration.
type AuthConfig struct {
	// LoginPath is the external login entry point. Must be a same-origin path.
	LoginPath string `env:"AUTH_LOGIN_PATH" envDefault:"/login"`

	OIDC OIDCConfig `envPrefix:"AUTH_OIDC_"`

	// AdminGroup and UserGroup map the token groups claim to roles.
	AdminGroup string `env:"AUTH_ADMIN_GROUP"`
	UserGroup  string `env:"AUTH_USER_GROUP"`

	// SessionPrefix namespaces session keys written by the identity service.
	SessionPrefix string `env:"AUTH_SESSION_PREFIX" envDefault:"session:"`
}

// Sanitize trims values and falls back to safe defaults.
func (c *AuthConfig) Sanitize() {
	c.LoginPath = strings.TrimSpace(c.LoginPath)
	if !strings.HasPrefix(c.LoginPath, "/") || strings.HasPrefix(c.LoginPath, "//") {
		c.LoginPath = DefaultLoginPath
	}
	c.OIDC.IssuerURL = strings.TrimSpace(c.OIDC.IssuerURL)
	c.OIDC.ClientID = strings.TrimSpace(c.OIDC.ClientID)
	c.AdminGroup = strings.TrimSpace(c.AdminGroup)
	c.UserGroup = strings.TrimSpace(c.UserGroup)
}
