package config

import (
	"time"

	"github.com/dmitrijs2005/eventbooking/internal/flagx"
)

// BaseURLEnv overrides the built-in default API base URL.
const BaseURLEnv = "EVENTBOOKING_API_URL"

const defaultBaseURL = "http://localhost:8080/api"

// Config holds runtime settings for the event booking CLI.
//
// Fields:
//   - BaseURL: root of the backend REST API (or of a proxy relay in front of it).
//   - DatabasePath: SQLite file holding the session; empty keeps it in memory.
//   - RequestTimeout: upper bound for a single HTTP request.
//   - Verbose: log debug records to stderr.
type Config struct {
	BaseURL        string
	DatabasePath   string
	RequestTimeout time.Duration
	Verbose        bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = flagx.EnvString(BaseURLEnv, defaultBaseURL)
	c.DatabasePath = "eventbooking.db"
	c.RequestTimeout = 30 * time.Second
	c.Verbose = false
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
