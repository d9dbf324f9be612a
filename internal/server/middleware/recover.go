package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/dmitrijs2005/eventbooking/internal/logging"
)

// Recover turns a panicking handler into a 500 envelope.
func Recover(l logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := newStatusWriter(w)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				l.Error(r.Context(), "handler panicked",
					"method", r.Method, "path", r.URL.Path, "panic", fmt.Sprint(rec), "stack", string(debug.Stack()))
				if !sw.wroteHeader {
					writeError(sw, http.StatusInternalServerError, "Internal server error")
				}
			}()
			next.ServeHTTP(sw, r)
		})
	}
}
