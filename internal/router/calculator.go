package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/enhanced-calculator/internal/handler"
)

// registerCalculatorRoutes registers one GET (and HEAD) route per calculator operation.
func registerCalculatorRoutes(r *echo.Echo, h *handler.Handlers) {
	for _, op := range h.Calculator.Operations() {
		r.Match(readMethods, op.Path(), h.Calculator.Endpoint(op))
	}
}
