// Package config handles configuration for the proxy relay, including
// defaults, JSON overlay, and command-line flags.
package config

import (
	"time"

	"github.com/dmitrijs2005/eventbooking/internal/flagx"
)

// UpstreamURLEnv overrides the built-in default upstream API URL.
const UpstreamURLEnv = "EVENTBOOKING_API_URL"

// EnvDev switches the relay to human-readable console logs.
const EnvDev = "DEV"

// Config holds runtime settings for the relay.
//
// Fields:
//   - ListenAddr: bind address of the HTTP listener.
//   - UpstreamURL: root of the backend REST API requests are relayed to.
//   - UpstreamTimeout: upper bound for one upstream round trip.
//   - AllowedOrigins: browser origins granted CORS access ("*" for any).
//   - RateLimitRPS / RateLimitBurst: per-client token bucket.
//   - TrustForwardedFor: key rate limits on X-Forwarded-For; only set
//     behind a proxy that overwrites that header.
//   - MaxBodyBytes: request body limit.
//   - Env: deployment environment; DEV logs to the console.
type Config struct {
	ListenAddr        string
	UpstreamURL       string
	UpstreamTimeout   time.Duration
	AllowedOrigins    []string
	RateLimitRPS      float64
	RateLimitBurst    int
	TrustForwardedFor bool
	MaxBodyBytes      int64
	Env               string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":3000"
	c.UpstreamURL = flagx.EnvString(UpstreamURLEnv, "http://localhost:8080/api")
	c.UpstreamTimeout = 30 * time.Second
	c.AllowedOrigins = []string{"*"}
	c.RateLimitRPS = 20
	c.RateLimitBurst = 40
	c.MaxBodyBytes = 10 << 20
	c.Env = EnvDev
}

// IsDev reports whether the relay runs in the development environment.
func (c *Config) IsDev() bool { return c.Env == EnvDev }

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
