package service

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a float64 result as written to API clients.
//
// JSON has no literal for NaN or ±Inf, so those serialise as null
// instead of failing the whole response. Negative zero serialises as 0.
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	if f == 0 {
		return []byte("0"), nil
	}

	return json.Marshal(f)
}

// FormatNumber renders f the way operands and results appear in log lines:
// shortest round-trip decimal, exponent notation only for very large or
// very small magnitudes ("5", "0.1", "1e+21", "1e-7", "NaN", "-Infinity").
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// Go pads the exponent to two digits ("1e-07").
		mantissa, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + sign + digits
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}
