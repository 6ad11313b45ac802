// Package service contains the business logic.
//
// It sits behind the handler layer. It receives validated operands
// from the handler, applies operation guards and evaluates the
// arithmetic.
package service
