package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/newrelic/go-agent/v3/newrelic"
	"golang.org/x/time/rate"

	"github.com/deppfellow/enhanced-calculator/internal/errs"
	"github.com/deppfellow/enhanced-calculator/internal/server"
)

// RateLimitMessage is the error returned to throttled clients.
const RateLimitMessage = "Too many requests"

// RateLimitMiddleware enforces a per-client-IP token bucket when
// rate_limit.enabled is set, and records denials as New Relic events.
type RateLimitMiddleware struct {
	server *server.Server
	nrApp  *newrelic.Application
}

func NewRateLimitMiddleware(s *server.Server, nrApp *newrelic.Application) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		server: s,
		nrApp:  nrApp,
	}
}

// Limit returns the limiter middleware, or a pass-through when disabled.
func (r *RateLimitMiddleware) Limit() echo.MiddlewareFunc {
	cfg := r.server.Config.RateLimit
	if !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	store := echoMiddleware.NewRateLimiterMemoryStoreWithConfig(echoMiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(cfg.RequestsPerSecond),
		Burst:     cfg.Burst,
		ExpiresIn: 3 * time.Minute,
	})

	return echoMiddleware.RateLimiterWithConfig(echoMiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errs.NewInternalServerError()
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			r.RecordRateLimitHit(c.Path())
			GetLogger(c).Warn().
				Str("client", identifier).
				Msg("rate limit exceeded")
			return errs.NewTooManyRequestsError(RateLimitMessage)
		},
	})
}

// RecordRateLimitHit records a RateLimitHit custom event when New Relic is enabled.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	if r.nrApp != nil {
		r.nrApp.RecordCustomEvent("RateLimitHit", map[string]interface{}{
			"endpoint": endpoint,
		})
	}
}
