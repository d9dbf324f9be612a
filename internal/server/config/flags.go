package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/eventbooking/internal/flagx"
)

// parseFlags populates relay Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   listen address (e.g., ":3000")
//	-u string   upstream API URL
//	-t int      upstream timeout, seconds
//	-o string   allowed CORS origins, comma separated
//	-r float    rate limit, requests per second per client
//	-b int      rate limit burst
//	-x          trust X-Forwarded-For from a fronting proxy
//	-m int      maximum request body, bytes
//	-e string   environment (DEV enables console logs)
//
// Unknown flags are filtered out with flagx.FilterArgs first.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-u", "-t", "-o", "-r", "-b", "-x", "-m", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to listen on")
	fs.StringVar(&config.UpstreamURL, "u", config.UpstreamURL, "upstream API URL")
	timeout := fs.Int("t", int(config.UpstreamTimeout.Seconds()), "upstream timeout (in seconds)")
	origins := fs.String("o", strings.Join(config.AllowedOrigins, ","), "allowed CORS origins (comma separated)")
	fs.Float64Var(&config.RateLimitRPS, "r", config.RateLimitRPS, "requests per second per client")
	fs.IntVar(&config.RateLimitBurst, "b", config.RateLimitBurst, "rate limit burst")
	fs.BoolVar(&config.TrustForwardedFor, "x", config.TrustForwardedFor, "trust X-Forwarded-For for client addresses")
	fs.Int64Var(&config.MaxBodyBytes, "m", config.MaxBodyBytes, "maximum request body (in bytes)")
	fs.StringVar(&config.Env, "e", config.Env, "environment")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.UpstreamTimeout = time.Duration(*timeout) * time.Second
	config.AllowedOrigins = flagx.SplitList(*origins)
}
