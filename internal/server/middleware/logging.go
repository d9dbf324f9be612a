package middleware

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/eventbooking/internal/logging"
)

// Logging writes one record per request: method, path, status, duration.
func Logging(l logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := newStatusWriter(w)
			start := time.Now()
			next.ServeHTTP(sw, r)

			l.Info(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.code,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote", remoteHost(r),
			)
		})
	}
}
