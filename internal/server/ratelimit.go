package server

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/govgate/govgate/internal/config"
)

// rateLimiter tracks one token-bucket limiter per client IP.
type rateLimiter struct {
	cfg      config.RateLimitConfig
	mu       sync.Mutex
	limiters map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newRateLimiter(cfg config.RateLimitConfig) *rateLimiter {
	return &rateLimiter{
		cfg:      cfg,
		limiters: make(map[string]*clientLimiter),
	}
}

// allow reports whether a request from clientIP may proceed.
func (r *rateLimiter) allow(clientIP string) bool {
	if !r.cfg.Enabled {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cl, ok := r.limiters[clientIP]
	if !ok {
		cl = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(float64(r.cfg.RequestsPerMin)/60.0), r.cfg.Burst),
		}
		r.limiters[clientIP] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter.Allow()
}

// cleanup drops limiters idle for over an hour so the map cannot grow
// without bound.
func (r *rateLimiter) cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-time.Hour)
	for ip, cl := range r.limiters {
		if cl.lastSeen.Before(cutoff) {
			delete(r.limiters, ip)
		}
	}
}

// startCleanupRoutine runs cleanup periodically for the server lifetime.
func (r *rateLimiter) startCleanupRoutine() {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			r.cleanup()
		}
	}()
}

// rateLimitMiddleware rejects clients that exhausted their budget.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(getClientIP(r)) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
