// Package middlewares provides HTTP middleware for the gateway router:
// request ID propagation, panic recovery, and request timeouts.
//
// All middleware uses the standard func(http.Handler) http.Handler shape
// and composes with chi's Use.
package middlewares
