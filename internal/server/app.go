// Package server runs the proxy relay: it wires configuration, logging, the
// middleware chain and the relay handler into an HTTP server and shuts it
// down gracefully on SIGINT, SIGTERM or SIGQUIT.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/eventbooking/internal/logging"
	"github.com/dmitrijs2005/eventbooking/internal/server/config"
	"github.com/dmitrijs2005/eventbooking/internal/server/middleware"
	"github.com/dmitrijs2005/eventbooking/internal/server/proxy"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
	idleClientTTL   = 5 * time.Minute
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	relay   *proxy.Relay
	limiter *middleware.RateLimiter
	metrics *middleware.Metrics
}

func NewApp(c *config.Config, l logging.Logger) *App {
	upstream := &http.Client{Timeout: c.UpstreamTimeout}
	return &App{
		config:  c,
		logger:  l.With("module", "server"),
		relay:   proxy.NewRelay(c.UpstreamURL, upstream, l),
		limiter: middleware.NewRateLimiter(c.RateLimitRPS, c.RateLimitBurst, c.TrustForwardedFor),
		metrics: middleware.NewMetrics(),
	}
}

// Handler returns the relay routes wrapped in the middleware chain.
func (app *App) Handler() http.Handler {
	mux := http.NewServeMux()
	app.relay.Register(mux)
	mux.Handle("GET /metrics", app.metrics.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return middleware.Chain(mux,
		middleware.Recover(app.logger),
		middleware.Logging(app.logger),
		app.metrics.Instrument,
		middleware.CORS(middleware.NewAllowedOrigins(app.config.AllowedOrigins...)),
		app.limiter.Middleware,
		middleware.MaxBody(app.config.MaxBodyBytes),
	)
}

// Run listens on the configured address and serves until ctx is done or a
// termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	ln, err := net.Listen("tcp", app.config.ListenAddr)
	if err != nil {
		return err
	}
	return app.Serve(ctx, ln)
}

// Serve runs the HTTP server on ln together with the rate limiter sweeper.
// It returns after a graceful shutdown once ctx is done.
func (app *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info(gctx, "Starting relay", "address", ln.Addr().String(), "upstream", app.config.UpstreamURL)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info(gctx, "Stopping relay...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return app.limiter.Run(gctx, sweepInterval, idleClientTTL)
	})

	return g.Wait()
}
