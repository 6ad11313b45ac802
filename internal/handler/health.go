package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/enhanced-calculator/internal/middleware"
	"github.com/deppfellow/enhanced-calculator/internal/server"
	"github.com/deppfellow/enhanced-calculator/internal/service"
)

// HealthHandler exposes a "system" endpoint that uptime monitors and load
// balancers use to verify the service is alive.
type HealthHandler struct {
	Handler
	calculator *service.CalculatorService
}

func NewHealthHandler(s *server.Server, calculator *service.CalculatorService) *HealthHandler {
	return &HealthHandler{
		Handler:    NewHandler(s),
		calculator: calculator,
	}
}

// CheckHealth returns system health status and self checks.
//
// The calculator check evaluates 2 + 3 through the service.
// It returns 200 when every check passes and 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := map[string]interface{}{}
	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"uptime":      time.Since(h.server.StartedAt).Round(time.Second).String(),
		"checks":      checks,
	}

	isHealthy := true

	calcStart := time.Now()
	if err := h.checkCalculator(); err != nil {
		checks["calculator"] = map[string]interface{}{
			"status":        "unhealthy",
			"response_time": time.Since(calcStart).String(),
			"error":         err.Error(),
		}
		isHealthy = false

		logger.Error().
			Err(err).
			Dur("response_time", time.Since(calcStart)).
			Msg("calculator health check failed")

		if app := h.server.LoggerService.GetApplication(); app != nil {
			app.RecordCustomEvent("HealthCheckError", map[string]interface{}{
				"check_type":       "calculator",
				"operation":        "health_check",
				"response_time_ms": time.Since(calcStart).Milliseconds(),
				"error_message":    err.Error(),
			})
		}
	} else {
		checks["calculator"] = map[string]interface{}{
			"status":        "healthy",
			"response_time": time.Since(calcStart).String(),
		}
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}

func (h *HealthHandler) checkCalculator() error {
	op, ok := h.calculator.Lookup("add")
	if !ok {
		return fmt.Errorf("add operation not registered")
	}

	result, err := h.calculator.Evaluate(op, []float64{2, 3})
	if err != nil {
		return err
	}
	if result != 5 {
		return fmt.Errorf("2 + 3 evaluated to %s", service.FormatNumber(result))
	}

	return nil
}
