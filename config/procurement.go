package config

import (
	"strings"
	"time"
)

// ProcurementConfig controls the procurement API client, the development proxy and its cache.
type ProcurementConfig struct {
	APIURL      string        `env:"API_URL"      envDefault:"https://public.api.openprocurement.org/api/2.5"`
	ProxyPrefix string        `env:"PROXY_PREFIX" envDefault:"/api/procurement"`
	Timeout     time.Duration `env:"TIMEOUT"      envDefault:"15s"`

	// ProxyEnabled mounts the proxy outside dev mode.
	ProxyEnabled bool `env:"PROXY_ENABLED" envDefault:"false"`

	CacheEnabled bool          `env:"CACHE_ENABLED" envDefault:"false"`
	CacheTTL     time.Duration `env:"CACHE_TTL"     envDefault:"1m"`
}

// Sanitize normalises the proxy prefix and clamps durations.
func (c *ProcurementConfig) Sanitize() {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if p := strings.Trim(strings.TrimSpace(c.ProxyPrefix), "/"); p != "" {
		c.ProxyPrefix = "/" + p
	} else {
		c.ProxyPrefix = "/api/procurement"
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Minute
	}
}
