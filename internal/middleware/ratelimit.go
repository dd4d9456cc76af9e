// Package middleware provides HTTP middleware for topicd.
package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// maxClients caps the number of tracked IPs so the bucket table cannot grow
// without bound.
const maxClients = 100_000

// RateLimiter throttles requests per client IP with a token bucket.
//
// Clustering runs are expensive; the limiter exists to keep a single
// misbehaving client from queueing dozens of refits, not to shape fair
// traffic precisely.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*tokenBucket
	rate    int
	burst   int
}

type tokenBucket struct {
	tokens   int
	lastFill time.Time
}

// NewRateLimiter creates a RateLimiter allowing ratePerSec sustained requests
// with the given burst. A background goroutine evicts idle buckets until ctx
// is cancelled.
func NewRateLimiter(ctx context.Context, ratePerSec, burst int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*tokenBucket),
		rate:    ratePerSec,
		burst:   burst,
	}
	go rl.evictLoop(ctx)

	return rl
}

// take refills the bucket from elapsed time and consumes one token.
// Callers must hold rl.mu.
func (rl *RateLimiter) take(b *tokenBucket) bool {
	now := time.Now()

	refill := int(now.Sub(b.lastFill).Seconds() * float64(rl.rate))
	if refill > 0 {
		b.tokens = min(b.tokens+refill, rl.burst)
		b.lastFill = now
	}

	if b.tokens == 0 {
		return false
	}

	b.tokens--

	return true
}

func (rl *RateLimiter) evictLoop(ctx context.Context) {
	const (
		sweepEvery = 5 * time.Minute
		idleAfter  = 10 * time.Minute
	)

	ticker := time.NewTicker(sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, b := range rl.clients {
				if now.Sub(b.lastFill) > idleAfter {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Handler returns Gin middleware that applies the per-IP limit.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// c.ClientIP() cannot be spoofed via X-Forwarded-For because the
		// router disables proxy header trust with SetTrustedProxies(nil).
		ip := c.ClientIP()

		rl.mu.Lock()
		b, ok := rl.clients[ip]
		if !ok {
			if len(rl.clients) >= maxClients {
				rl.mu.Unlock()
				respondError(c, http.StatusTooManyRequests, "rate_limited", "too many clients")

				return
			}

			b = &tokenBucket{tokens: rl.burst, lastFill: time.Now()}
			rl.clients[ip] = b
		}

		allowed := rl.take(b)
		rl.mu.Unlock()

		if !allowed {
			respondError(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")

			return
		}

		c.Next()
	}
}
