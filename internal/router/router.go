// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and maps every route to its handler.
package router

import (
	"net"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/enhanced-calculator/internal/handler"
	"github.com/deppfellow/enhanced-calculator/internal/middleware"
	"github.com/deppfellow/enhanced-calculator/internal/server"
)

// NewRouter builds the Echo instance with the global middleware chain,
// the error handler, the system routes and the calculator routes.
//
// Paths are matched without regard to case or a trailing slash.
//
// Middleware order matters:
//  1. Recover catches panics from everything below it.
//  2. RequestID must exist before any logger is built.
//  3. New Relic starts the transaction, EnhanceTracing decorates it.
//  4. ContextEnhancer builds the request logger from the above.
//  5. RequestReceived logs the inbound request before dispatch.
//  6. RequestLogger writes the completion line.
//  7. CORS, Secure and RateLimit run closest to the handler.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler
	router.IPExtractor = clientIPExtractor(s.Config.Server.TrustedProxies)

	router.Pre(
		middlewares.Global.RemoveTrailingSlash(),
		middlewares.Global.LowercasePath(),
	)

	router.Use(
		middlewares.Global.Recover(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestReceived(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middlewares.RateLimit.Limit(),
	)

	registerSystemRoutes(router, h)
	registerCalculatorRoutes(router, h)

	return router
}

// clientIPExtractor decides what c.RealIP reports. Without trusted proxies
// it is the socket peer and forwarding headers are ignored. With them,
// X-Forwarded-For is walked back only through the listed ranges.
func clientIPExtractor(trustedProxies []string) echo.IPExtractor {
	if len(trustedProxies) == 0 {
		return echo.ExtractIPDirect()
	}

	options := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range trustedProxies {
		// Ranges are validated at config load.
		if _, ipNet, err := net.ParseCIDR(cidr); err == nil {
			options = append(options, echo.TrustIPRange(ipNet))
		}
	}

	return echo.ExtractIPFromXFFHeader(options...)
}
