package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/hrygo/quand/internal/errors"
)

const (
	// maxTrackedClients bounds the limiter store.
	maxTrackedClients = 10000
	// idleClientTTL drops limiters of clients that went quiet.
	idleClientTTL = 10 * time.Minute
)

// RateLimiter provides per-key token-bucket rate limiting.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

// NewRateLimiter creates a limiter allowing perSecond requests per key with
// the given burst.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](maxTrackedClients, nil, idleClientTTL),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

// getLimiter gets or creates a limiter for the given key.
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, ok := rl.limiters.Get(key); ok {
		return limiter
	}
	limiter := rate.NewLimiter(rl.limit, rl.burst)
	rl.limiters.Add(key, limiter)
	return limiter
}

// Allow checks if a request is allowed for the given key.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Tracked returns how many keys currently hold a limiter.
func (rl *RateLimiter) Tracked() int {
	return rl.limiters.Len()
}

// Middleware rejects requests over the limit with 429, keyed by client IP.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.Allow(c.RealIP()) {
				err := errors.RateLimitExceeded("too many requests")
				return echo.NewHTTPError(http.StatusTooManyRequests, map[string]string{
					"code":    string(err.Code),
					"message": err.Message,
				}).SetInternal(err)
			}
			return next(c)
		}
	}
}
