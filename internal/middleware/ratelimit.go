package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/octobees/cardcrm/internal/config"
)

// ScanPath is the route guarded by ScanRateLimiter.
const ScanPath = "/contacts/scan"

// ScanRateLimiter applies a token bucket to card scans, which call the paid
// extraction service. Buckets are kept per operator, or per client IP for
// unauthenticated requests.
func ScanRateLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Second
	}

	var (
		mu       sync.Mutex
		limiters = map[string]*rate.Limiter{}
	)
	limiterFor := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[key]
		if !ok {
			l = rate.NewLimiter(rate.Every(perRequest), cfg.Requests)
			limiters[key] = l
		}
		return l
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() != ScanPath {
				return next(c)
			}

			key := OperatorFromContext(c)
			if key == "" {
				key = "ip:" + c.RealIP()
			}
			if !limiterFor(key).Allow() {
				return c.JSON(http.StatusTooManyRequests, errorBody("scan rate limit exceeded"))
			}
			return next(c)
		}
	}
}
