package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/enhanced-calculator/internal/handler"
	"github.com/deppfellow/enhanced-calculator/static"
)

// readMethods is what every GET route also answers: HEAD runs the GET
// handler and the body is dropped.
var readMethods = []string{http.MethodGet, http.MethodHead}

// registerSystemRoutes registers endpoints that are not part of the calculator:
// health, docs UI and the static assets the docs UI loads.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.Match(readMethods, "/status", h.Health.CheckHealth)

	r.StaticFS("/static", static.Files)

	r.Match(readMethods, "/docs", h.OpenAPI.ServeOpenAPIUI)
}
