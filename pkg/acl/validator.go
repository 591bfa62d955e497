package acl

import (
	"context"
	"net/http"
)

// ValidationRequest describes a request submitted to a Validator before
// route resolution. StatusCode is the status written when the request is
// rejected; implementations may change it, the default is 404.
type ValidationRequest struct {
	Method     string
	Path       string
	RemoteAddr string
	Headers    http.Header
	Identity   *Identity
	StatusCode int
}

// Validator is an optional external hook that may veto a request before
// any route resolution happens. Implementations are typically
// script-backed (see pkg/scripting).
type Validator interface {
	Validate(ctx context.Context, req *ValidationRequest) (bool, error)
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(ctx context.Context, req *ValidationRequest) (bool, error)

func (f ValidatorFunc) Validate(ctx context.Context, req *ValidationRequest) (bool, error) {
	return f(ctx, req)
}
