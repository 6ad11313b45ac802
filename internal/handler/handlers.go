package handler

import (
	"github.com/deppfellow/enhanced-calculator/internal/server"
	"github.com/deppfellow/enhanced-calculator/internal/service"
)

// Handlers is a container that groups all HTTP handlers, so router setup
// passes one value around instead of many.
type Handlers struct {
	Health     *HealthHandler     // Health serves the /status endpoint.
	OpenAPI    *OpenAPIHandler    // OpenAPI serves API documentation.
	Calculator *CalculatorHandler // Calculator serves the arithmetic endpoints.
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(s, services.Calculator),
		OpenAPI:    NewOpenAPIHandler(s),
		Calculator: NewCalculatorHandler(s, services.Calculator),
	}
}
