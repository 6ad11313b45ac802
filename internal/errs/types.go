package errs

import (
	"errors"
	"net/http"
)

const (
	// CodeInvalidInput marks requests whose operands did not parse as numbers.
	CodeInvalidInput = "INVALID_INPUT"

	// CodeGuardViolation marks operands that parse fine but break an
	// operation precondition (zero divisor, negative radicand).
	CodeGuardViolation = "DOMAIN_GUARD_VIOLATION"
)

// NewBadRequestError creates a 400 Bad Request HTTPError.
//
// code is optional; if nil it defaults to "BAD_REQUEST".
func NewBadRequestError(message string, code *string) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusBadRequest))

	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:    formattedCode,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewInvalidInputError creates the 400 returned when operands are not numbers.
func NewInvalidInputError(message string) *HTTPError {
	code := CodeInvalidInput
	return NewBadRequestError(message, &code)
}

// NewGuardViolationError creates the 400 returned when an operation-specific
// precondition fails.
func NewGuardViolationError(message string) *HTTPError {
	code := CodeGuardViolation
	return NewBadRequestError(message, &code)
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string, code *string) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusNotFound))

	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:    formattedCode,
		Message: message,
		Status:  http.StatusNotFound,
	}
}

// NewTooManyRequestsError creates a 429 Too Many Requests HTTPError.
func NewTooManyRequestsError(message string) *HTTPError {
	return &HTTPError{
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(http.StatusTooManyRequests)),
		Message: message,
		Status:  http.StatusTooManyRequests,
	}
}

// NewInternalServerError creates a 500 Internal Server Error HTTPError.
//
// The message is the generic status text, never the real internal error.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError)),
		Message: http.StatusText(http.StatusInternalServerError),
		Status:  http.StatusInternalServerError,
	}
}

// IsCode reports whether err is an *HTTPError carrying the given code.
func IsCode(err error, code string) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Code == code
}
