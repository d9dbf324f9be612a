package middleware

import (
	"net/http"
	"sort"
	"strings"
)

const (
	corsMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsHeaders = "Content-Type, Authorization"
)

// AllowedOrigins is the set of browser origins the relay answers. The entry
// "*" allows any origin without credentials.
type AllowedOrigins map[string]struct{}

func NewAllowedOrigins(origins ...string) AllowedOrigins {
	a := AllowedOrigins{}
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			a[o] = struct{}{}
		}
	}
	return a
}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

func (a AllowedOrigins) String() string {
	origins := make([]string, 0, len(a))
	for k := range a {
		origins = append(origins, k)
	}
	sort.Strings(origins)
	return strings.Join(origins, ", ")
}

// CORS sets Access-Control headers for allowed origins and answers
// preflight requests with 204. Requests without an Origin header pass
// through untouched.
func CORS(origins AllowedOrigins) Middleware {
	isWildcard := origins.IsAllowedOrigin("*")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			allowed := true
			switch {
			case origins.IsAllowedOrigin(origin):
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")
			case isWildcard:
				// no credentials with a wildcard origin
				h.Set("Access-Control-Allow-Origin", "*")
			default:
				allowed = false
			}

			if r.Method == http.MethodOptions {
				if allowed {
					h.Set("Access-Control-Allow-Methods", corsMethods)
					h.Set("Access-Control-Allow-Headers", corsHeaders)
					h.Set("Access-Control-Max-Age", "86400")
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
