package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter is a token bucket per client IP. The client IP is the peer
// address unless the relay runs behind a trusted proxy, in which case it is
// the first X-Forwarded-For entry.
type RateLimiter struct {
	rps            rate.Limit
	burst          int
	trustForwarded bool
	now            func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

func NewRateLimiter(rps float64, burst int, trustForwarded bool) *RateLimiter {
	return &RateLimiter{
		rps:            rate.Limit(rps),
		burst:          burst,
		trustForwarded: trustForwarded,
		now:            time.Now,
		buckets:        make(map[string]*bucket),
	}
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[key] = b
	}
	b.seen = l.now()
	return b.lim
}

// Sweep forgets clients idle for longer than ttl and returns how many
// buckets remain.
func (l *RateLimiter) Sweep(ttl time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for k, b := range l.buckets {
		if now.Sub(b.seen) > ttl {
			delete(l.buckets, k)
		}
	}
	return len(l.buckets)
}

// Run sweeps idle buckets every interval until ctx is done.
func (l *RateLimiter) Run(ctx context.Context, interval, ttl time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l.Sweep(ttl)
		}
	}
}

// Middleware rejects requests over the client's budget with 429.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := l.clientIP(r)
		if ip == "" {
			ip = "unknown"
		}
		lim := l.limiter(ip)
		if !lim.AllowN(l.now(), 1) {
			retry := 1
			if l.rps > 0 {
				retry = int(math.Ceil(1 / float64(l.rps)))
			}
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) clientIP(r *http.Request) string {
	if l.trustForwarded {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	return remoteHost(r)
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
