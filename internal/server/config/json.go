package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/eventbooking/internal/flagx"
	"github.com/dmitrijs2005/eventbooking/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept "30s" or
// integer nanoseconds; absent keys leave the current value alone.
type JsonConfig struct {
	ListenAddr        *string         `json:"listen_addr"`
	UpstreamURL       *string         `json:"upstream_url"`
	UpstreamTimeout   *timex.Duration `json:"upstream_timeout"`
	AllowedOrigins    []string        `json:"allowed_origins"`
	RateLimitRPS      *float64        `json:"rate_limit_rps"`
	RateLimitBurst    *int            `json:"rate_limit_burst"`
	TrustForwardedFor *bool           `json:"trust_forwarded_for"`
	MaxBodyBytes      *int64          `json:"max_body_bytes"`
	Env               *string         `json:"env"`
}

// parseJson loads the file named by -c/-config into config. Nothing happens
// without the flag; unreadable files and invalid JSON panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.ListenAddr != nil {
		config.ListenAddr = *c.ListenAddr
	}
	if c.UpstreamURL != nil {
		config.UpstreamURL = *c.UpstreamURL
	}
	if c.UpstreamTimeout != nil {
		config.UpstreamTimeout = c.UpstreamTimeout.Duration
	}
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.RateLimitRPS != nil {
		config.RateLimitRPS = *c.RateLimitRPS
	}
	if c.RateLimitBurst != nil {
		config.RateLimitBurst = *c.RateLimitBurst
	}
	if c.TrustForwardedFor != nil {
		config.TrustForwardedFor = *c.TrustForwardedFor
	}
	if c.MaxBodyBytes != nil {
		config.MaxBodyBytes = *c.MaxBodyBytes
	}
	if c.Env != nil {
		config.Env = *c.Env
	}
}
