package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/deppfellow/enhanced-calculator/internal/errs"
	"github.com/deppfellow/enhanced-calculator/internal/server"
)

// RouteNotFoundMessage is returned for paths no route matches.
const RouteNotFoundMessage = "Route not found"

// GlobalMiddlewares groups “global” middleware and the global error handler.
type GlobalMiddlewares struct {
	server *server.Server
}

func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

// CORS returns Echo’s CORS middleware configured by the server config.
func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: global.server.Config.Server.CORSAllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
	})
}

// RemoveTrailingSlash returns Echo’s trailing slash remover, so /add/
// routes like /add. It must be registered with Pre.
func (global *GlobalMiddlewares) RemoveTrailingSlash() echo.MiddlewareFunc {
	return middleware.RemoveTrailingSlash()
}

// LowercasePath lowercases the request path before routing; every route is
// registered in lower case, so /ADD routes like /add. The query string is
// left alone. It must be registered with Pre.
func (global *GlobalMiddlewares) LowercasePath() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := c.Request().URL
			u.Path = strings.ToLower(u.Path)
			if u.RawPath != "" {
				u.RawPath = strings.ToLower(u.RawPath)
			}
			return next(c)
		}
	}
}

// RequestReceived logs every inbound request before it is dispatched:
// method, raw URL, query parameters and client address.
//
// It never alters the request and never fails it; zerolog swallows
// write errors.
func (global *GlobalMiddlewares) RequestReceived() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			uri := req.RequestURI
			if uri == "" {
				uri = req.URL.RequestURI()
			}

			GetLogger(c).Info().
				Str("method", req.Method).
				Str("url", uri).
				Interface("query", flattenQuery(c.QueryParams())).
				Str("ip", c.RealIP()).
				Msg("Request received")

			return next(c)
		}
	}
}

// flattenQuery keeps single values as strings and repeated keys as arrays.
func flattenQuery(values url.Values) map[string]interface{} {
	out := make(map[string]interface{}, len(values))
	for key, vs := range values {
		if len(vs) == 1 {
			out[key] = vs[0]
			continue
		}
		out[key] = vs
	}
	return out
}

// RequestLogger returns Echo’s request logger middleware writing one “API”
// line per completed request, with severity based on status.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			statusCode := v.Status

			// When a handler returns an error the global error handler has not
			// written the final status yet, so derive it from the error type.
			// Reference: https://github.com/labstack/echo/issues/2310#issuecomment-1288196898
			if v.Error != nil {
				var httpErr *errs.HTTPError
				var echoErr *echo.HTTPError

				if errors.As(v.Error, &httpErr) {
					statusCode = httpErr.Status
				} else if errors.As(v.Error, &echoErr) {
					statusCode = echoErr.Code
				} else {
					statusCode = http.StatusInternalServerError
				}
			}

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

// Recover returns Echo’s panic recovery middleware. Panics become 500 responses.
func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}

// Secure returns Echo’s secure headers middleware.
func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// GlobalErrorHandler is the final error funnel for the entire HTTP server.
//
// Every error is answered as {"error": message}. Domain errors were already
// logged by the handler pipeline; only 5xx are logged here, with stack.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	originalErr := err

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			if echoErr.Code == http.StatusNotFound {
				httpErr = errs.NewNotFoundError(RouteNotFoundMessage, nil)
			} else {
				message := http.StatusText(echoErr.Code)
				if msg, ok := echoErr.Message.(string); ok {
					message = msg
				}
				httpErr = &errs.HTTPError{
					Code:    errs.MakeUpperCaseWithUnderscores(http.StatusText(echoErr.Code)),
					Message: message,
					Status:  echoErr.Code,
				}
			}
		} else {
			httpErr = errs.NewInternalServerError()
		}
	}

	if httpErr.Status >= http.StatusInternalServerError {
		GetLogger(c).Error().Stack().
			Err(originalErr).
			Int("status", httpErr.Status).
			Str("error_code", httpErr.Code).
			Msg(httpErr.Message)
	}

	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(httpErr.Status)
		return
	}

	_ = c.JSON(httpErr.Status, httpErr.Response())
}
