package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/enhanced-calculator/internal/middleware"
	"github.com/deppfellow/enhanced-calculator/internal/server"
	"github.com/deppfellow/enhanced-calculator/internal/service"
	"github.com/deppfellow/enhanced-calculator/internal/validation"
)

// OperationResponse is the success payload of every arithmetic endpoint.
type OperationResponse struct {
	Result service.Number `json:"result"`
}

// CalculatorHandler serves the arithmetic endpoints. All seven routes are
// instances of Endpoint, one per service.Operation.
type CalculatorHandler struct {
	Handler
	calculator *service.CalculatorService
}

func NewCalculatorHandler(s *server.Server, calculator *service.CalculatorService) *CalculatorHandler {
	return &CalculatorHandler{
		Handler:    NewHandler(s),
		calculator: calculator,
	}
}

// Operations lists the operations to register routes for.
func (h *CalculatorHandler) Operations() []service.Operation {
	return h.calculator.Operations()
}

// Endpoint builds the handler for one operation: parse and validate the
// declared query parameters, check the guard, compute, log the symbolic
// form and answer {"result": n}.
func (h *CalculatorHandler) Endpoint(op service.Operation) echo.HandlerFunc {
	return Handle(h.Handler, op.Name, func(c echo.Context, req *validation.OperandsRequest) (*OperationResponse, error) {
		operands := req.Operands()

		result, err := h.calculator.Evaluate(op, operands)
		if err != nil {
			return nil, err
		}

		middleware.GetLogger(c).Info().
			Str("operation", op.Name).
			Floats64("operands", operands).
			Float64("result", result).
			Msg(op.Describe(operands, result))

		return &OperationResponse{Result: service.Number(result)}, nil
	}, http.StatusOK, func() *validation.OperandsRequest {
		return validation.NewOperandsRequest(op.Params...)
	})
}
