// Package handler is the first layer after the router.
//
// It parses requests, handles input validation using the
// validation package, and calls the appropriate service.
package handler
