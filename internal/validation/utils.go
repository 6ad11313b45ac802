package validation

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/enhanced-calculator/internal/errs"
)

// Validatable is implemented by request payload types that know how to validate themselves.
type Validatable interface {
	Validate() error
}

// Bindable is a request payload that populates itself from the echo
// context before validation.
type Bindable interface {
	Validatable
	Bind(c echo.Context) error
}

// BindAndValidate binds request data into payload and validates it.
//
// Validation failures are returned as *errs.HTTPError (400). Anything else
// is wrapped as a plain bad request.
func BindAndValidate(c echo.Context, payload Bindable) error {
	if err := payload.Bind(c); err != nil {
		return errs.NewBadRequestError(err.Error(), nil)
	}

	if err := payload.Validate(); err != nil {
		if errs.IsCode(err, errs.CodeInvalidInput) {
			return err
		}
		return errs.NewBadRequestError(err.Error(), nil)
	}

	return nil
}

// OperandsRequest carries the numeric query parameters of one arithmetic
// endpoint. A fresh value is built per request.
type OperandsRequest struct {
	params   []string
	raw      []string
	operands []float64
}

// NewOperandsRequest prepares a request reading the given query parameters
// in operand order.
func NewOperandsRequest(params ...string) *OperandsRequest {
	return &OperandsRequest{params: params}
}

// Bind reads each declared query parameter. Absent parameters read as "".
func (r *OperandsRequest) Bind(c echo.Context) error {
	r.raw = make([]string, len(r.params))
	r.operands = make([]float64, len(r.params))

	for i, name := range r.params {
		r.raw[i] = c.QueryParam(name)
		r.operands[i] = ParseNumber(r.raw[i])
	}

	return nil
}

// Validate applies ValidateNumbers to the parsed operands.
func (r *OperandsRequest) Validate() error {
	if len(r.operands) == 0 {
		return errs.NewInvalidInputError(InvalidNumbersMessage)
	}

	result := ValidateNumbers(r.operands[0], r.operands[1:]...)
	if !result.IsValid {
		return errs.NewInvalidInputError(result.Message)
	}

	return nil
}

// Operands returns the parsed values in parameter order.
func (r *OperandsRequest) Operands() []float64 {
	return r.operands
}

// Raw returns the query text as received, in parameter order.
func (r *OperandsRequest) Raw() []string {
	return r.raw
}
