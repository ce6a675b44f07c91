package api

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an unused per-client limiter is kept.
const limiterIdleTTL = 10 * time.Minute

// clientLimiter hands out one token bucket per client address.
type clientLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*limiterEntry
	now      func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(requestsPerMinute, burst int) *clientLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &clientLimiter{
		limit:    rate.Limit(float64(requestsPerMinute) / 60),
		burst:    burst,
		limiters: make(map[string]*limiterEntry),
		now:      time.Now,
	}
}

func (c *clientLimiter) allow(key string) bool {
	c.mu.Lock()
	e, ok := c.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.limiters[key] = e
	}
	e.lastSeen = c.now()
	c.mu.Unlock()

	return e.limiter.Allow()
}

// sweep drops limiters idle for longer than limiterIdleTTL.
func (c *clientLimiter) sweep() {
	cutoff := c.now().Add(-limiterIdleTTL)

	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(c.limiters, k)
		}
	}
}

func (c *clientLimiter) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(limiterIdleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

// rateLimitMiddleware rejects clients that exceed their bucket with 429.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(clientKey(r)) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, ErrCodeRateLimited, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
