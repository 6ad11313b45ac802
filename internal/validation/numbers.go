package validation

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// InvalidNumbersMessage is returned whenever an operand is not a number.
const InvalidNumbersMessage = "Invalid input: Parameters must be numbers"

// Result is the verdict of ValidateNumbers. Message is empty when IsValid.
type Result struct {
	IsValid bool
	Message string
}

// numericPrefix matches the longest leading decimal literal:
// sign, digits with optional fraction, optional exponent, or Infinity.
var numericPrefix = regexp.MustCompile(`^[+-]?(?:Infinity|(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][+-]?[0-9]+)?)`)

// isLeadingSpace reports whether r is skipped before a number: ASCII
// whitespace, the Unicode space separators, the line and paragraph
// separators and the byte order mark. U+0085 is not skipped.
func isLeadingSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		'\u00a0', '\u1680', '\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}

// ParseNumber parses raw query text into a float64.
//
// Leading whitespace is skipped and trailing garbage is ignored, so
// "  42px" parses as 42. Text without a numeric prefix (including the
// empty string of an absent parameter) yields NaN, never an error.
func ParseNumber(raw string) float64 {
	s := strings.TrimLeftFunc(raw, isLeadingSpace)

	prefix := numericPrefix.FindString(s)
	if prefix == "" {
		return math.NaN()
	}

	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		// Out-of-range literals come back as ±Inf with ErrRange.
		if errors.Is(err, strconv.ErrRange) {
			return f
		}
		return math.NaN()
	}

	return f
}

// ValidateNumbers reports whether primary and every supplied secondary
// operand are numbers. It is a pure function.
func ValidateNumbers(primary float64, secondary ...float64) Result {
	if math.IsNaN(primary) {
		return Result{IsValid: false, Message: InvalidNumbersMessage}
	}

	for _, v := range secondary {
		if math.IsNaN(v) {
			return Result{IsValid: false, Message: InvalidNumbersMessage}
		}
	}

	return Result{IsValid: true}
}
