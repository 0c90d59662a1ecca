package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// SecurityHeaders adds the response headers a JSON API needs.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client key.
type RateLimiter struct {
	entries map[string]*limiterEntry
	mu      sync.Mutex
	rate    rate.Limit
	burst   int
	ttl     time.Duration
}

func NewRateLimiter(r rate.Limit, b int, ttl time.Duration) *RateLimiter {
	return &RateLimiter{
		entries: make(map[string]*limiterEntry),
		rate:    r,
		burst:   b,
		ttl:     ttl,
	}
}

// GetLimiter returns the limiter for key, creating it on first use. Stale
// entries are swept on the way.
func (rl *RateLimiter) GetLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if e, ok := rl.entries[key]; ok {
		e.lastSeen = now
		return e.limiter
	}
	for k, e := range rl.entries {
		if now.Sub(e.lastSeen) > rl.ttl {
			delete(rl.entries, k)
		}
	}
	e := &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst), lastSeen: now}
	rl.entries[key] = e
	return e.limiter
}

// RateLimit keys on the authenticated user when there is one, else on the
// client IP.
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(UserContextKey)
		if key == "" {
			key = c.ClientIP()
		}
		if !rl.GetLimiter(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}
		c.Next()
	}
}
