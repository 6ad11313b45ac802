package errs

import "strings"

// ErrorResponse is the only error shape written to API clients.
//
// Example:
//
//	{ "error": "Division by zero is not allowed" }
type ErrorResponse struct {
	Error string `json:"error"`
}

// HTTPError is the main custom error type for API responses.
//
// It implements the `error` interface via Error().
// Fields:
//   - Code: machine-friendly error code (e.g. "INVALID_INPUT").
//   - Message: human-friendly message, sent to the client as-is.
//   - Status: HTTP status code.
type HTTPError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// Error makes *HTTPError satisfy the built-in `error` interface.
// Printing/logging the error shows the client message.
func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is also an *HTTPError.
//
// This does NOT compare Code/Status. Use errors.As and inspect
// the fields when the kind matters.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)

	return ok
}

// WithMessage returns a *copy* of this HTTPError with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Code:    e.Code,
		Message: message,
		Status:  e.Status,
	}
}

// Response converts the error into its wire shape.
func (e *HTTPError) Response() ErrorResponse {
	return ErrorResponse{Error: e.Message}
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
// Example:
//
//	"Bad Request" -> "BAD_REQUEST"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
