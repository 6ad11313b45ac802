package service

import (
	"fmt"
	"math"

	"github.com/deppfellow/enhanced-calculator/internal/errs"
)

// Guard is an operation-specific precondition on already valid operands.
type Guard struct {
	// Violated reports whether the operands break the precondition.
	Violated func(operands []float64) bool

	// Message is returned to the client when Violated is true.
	Message string
}

// Operation binds one arithmetic function to one endpoint.
//
// Every endpoint of the service is an instance of this type; the router
// registers one route per Operation and the handler layer runs all of
// them through the same pipeline.
type Operation struct {
	// Name is the route segment ("add" is served at /add).
	Name string

	// Label names the operation in log lines ("Addition").
	Label string

	// Params lists the query parameters in operand order. One entry for
	// unary operations, two for binary ones.
	Params []string

	// Guard is nil for operations that accept every numeric input.
	Guard *Guard

	apply    func(operands []float64) float64
	describe func(operands []float64) string
}

// Path returns the route the operation is served at.
func (op Operation) Path() string {
	return "/" + op.Name
}

// Apply computes the result. operands must have len(op.Params) entries.
func (op Operation) Apply(operands []float64) float64 {
	return op.apply(operands)
}

// Describe renders the operation symbolically, e.g. "Addition: 2 + 3 = 5".
func (op Operation) Describe(operands []float64, result float64) string {
	return fmt.Sprintf("%s: %s = %s", op.Label, op.describe(operands), FormatNumber(result))
}

func binary(name, label, symbol string, params [2]string, fn func(a, b float64) float64, guard *Guard) Operation {
	return Operation{
		Name:   name,
		Label:  label,
		Params: []string{params[0], params[1]},
		Guard:  guard,
		apply: func(x []float64) float64 {
			return fn(x[0], x[1])
		},
		describe: func(x []float64) string {
			return FormatNumber(x[0]) + " " + symbol + " " + FormatNumber(x[1])
		},
	}
}

func unary(name, label, function, param string, fn func(a float64) float64, guard *Guard) Operation {
	return Operation{
		Name:   name,
		Label:  label,
		Params: []string{param},
		Guard:  guard,
		apply: func(x []float64) float64 {
			return fn(x[0])
		},
		describe: func(x []float64) string {
			return function + "(" + FormatNumber(x[0]) + ")"
		},
	}
}

func nonZeroDivisor(message string) *Guard {
	return &Guard{
		Violated: func(x []float64) bool { return x[1] == 0 },
		Message:  message,
	}
}

// Operations returns the operation table in route registration order.
func Operations() []Operation {
	return []Operation{
		binary("add", "Addition", "+", [2]string{"num1", "num2"},
			func(a, b float64) float64 { return a + b }, nil),
		binary("subtract", "Subtraction", "-", [2]string{"num1", "num2"},
			func(a, b float64) float64 { return a - b }, nil),
		binary("multiply", "Multiplication", "*", [2]string{"num1", "num2"},
			func(a, b float64) float64 { return a * b }, nil),
		binary("divide", "Division", "/", [2]string{"num1", "num2"},
			func(a, b float64) float64 { return a / b },
			nonZeroDivisor("Division by zero is not allowed")),
		binary("power", "Power", "^", [2]string{"base", "exponent"},
			math.Pow, nil),
		unary("sqrt", "Square Root", "sqrt", "num",
			math.Sqrt,
			&Guard{
				Violated: func(x []float64) bool { return x[0] < 0 },
				Message:  "Square root of negative number is not allowed",
			}),
		binary("modulo", "Modulo", "%", [2]string{"num1", "num2"},
			math.Mod,
			nonZeroDivisor("Modulo by zero is not allowed")),
	}
}

// CalculatorService evaluates operations. It is stateless; the operation
// table is built once and only read afterwards.
type CalculatorService struct {
	operations []Operation
	byName     map[string]Operation
}

func NewCalculatorService() *CalculatorService {
	ops := Operations()
	byName := make(map[string]Operation, len(ops))
	for _, op := range ops {
		byName[op.Name] = op
	}

	return &CalculatorService{
		operations: ops,
		byName:     byName,
	}
}

// Operations returns the registered operations in registration order.
func (cs *CalculatorService) Operations() []Operation {
	out := make([]Operation, len(cs.operations))
	copy(out, cs.operations)
	return out
}

// Lookup finds an operation by route name.
func (cs *CalculatorService) Lookup(name string) (Operation, bool) {
	op, ok := cs.byName[name]
	return op, ok
}

// Evaluate checks the operation guard and computes the result.
//
// Operands must already be validated as numbers. A violated guard yields an
// *errs.HTTPError with code DOMAIN_GUARD_VIOLATION. Non-finite results are
// returned as-is.
func (cs *CalculatorService) Evaluate(op Operation, operands []float64) (float64, error) {
	if len(operands) != len(op.Params) {
		return 0, fmt.Errorf("%s expects %d operands, got %d", op.Name, len(op.Params), len(operands))
	}

	if op.Guard != nil && op.Guard.Violated(operands) {
		return 0, errs.NewGuardViolationError(op.Guard.Message)
	}

	return op.Apply(operands), nil
}
