// Package validation contains the logic for validating
// request data.
//
// Query operands are parsed leniently into float64 (NaN when they are
// not numbers) and then classified by ValidateNumbers. Failures are
// returned as *errs.HTTPError so the handler pipeline can answer 400.
package validation
