// Package middleware provides gin middleware for rate limiting, access logging and metrics.
package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"service-area-api/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// RateLimiter allows each client perMinute requests per minute on one route as a token
// bucket: a full bucket of perMinute requests, refilled one token every minute/perMinute.
// Limiters are keyed by client IP and evicted after a period of inactivity.
type RateLimiter struct {
	name     string
	limit    rate.Limit
	burst    int
	now      func() time.Time
	mu       sync.Mutex
	limiters *cache.Cache
}

// NewRateLimiter creates a limiter for route name allowing perMinute requests per client.
func NewRateLimiter(name string, perMinute int) *RateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &RateLimiter{
		name:     name,
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		now:      time.Now,
		limiters: cache.New(2*time.Minute, 5*time.Minute),
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	var limiter *rate.Limiter
	if v, found := rl.limiters.Get(key); found {
		limiter = v.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
	}
	// refresh the idle expiry on every hit
	rl.limiters.Set(key, limiter, cache.DefaultExpiration)
	return limiter
}

// Handler returns the gin middleware enforcing the limit.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		limiter := rl.getLimiter(key)

		now := rl.now()
		reservation := limiter.ReserveN(now, 1)
		if delay := reservation.DelayFrom(now); delay > 0 {
			reservation.CancelAt(now)
			metrics.RateLimitedTotal.WithLabelValues(rl.name).Inc()
			log.Warn().
				Str("route", rl.name).
				Str("client_ip", key).
				Msg("rate limit exceeded")

			retryAfter := int(delay.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, please try again later"})
			return
		}

		c.Next()
	}
}
