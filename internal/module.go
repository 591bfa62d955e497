package internal

import (
	"context"
	"strings"
)

// Module is a built-in endpoint module, selected by the sanitized first
// path segment. A module implements one method-specific interface per HTTP
// method it supports; a request with a method the module does not
// implement fails with 405.
type Module interface {
	// Name is the path segment the module answers under. The empty name
	// is the synthetic root resource.
	Name() string
}

// Getter handles GET requests.
type Getter interface {
	Get(ctx context.Context, args *Args) error
}

// Poster handles POST requests.
type Poster interface {
	Post(ctx context.Context, args *Args) error
}

// Putter handles PUT requests.
type Putter interface {
	Put(ctx context.Context, args *Args) error
}

// Patcher handles PATCH requests.
type Patcher interface {
	Patch(ctx context.Context, args *Args) error
}

// Deleter handles DELETE requests.
type Deleter interface {
	Delete(ctx context.Context, args *Args) error
}

// Endpoint is an externally loaded handler unit bound to a custom route.
// Unlike built-in modules, its method surface is only known after loading.
type Endpoint interface {
	// Handles reports whether the endpoint exports a handler for the
	// lower-cased HTTP method.
	Handles(method string) bool

	// Invoke runs the handler for the lower-cased HTTP method.
	Invoke(ctx context.Context, method string, args *Args) error
}

// ModuleLoader loads an Endpoint by script path. The dispatch core only
// depends on this interface; the embedded scripting host is the standard
// implementation.
type ModuleLoader interface {
	Load(path string) (Endpoint, error)
}

// SanitizeSegment reduces a path segment to a safe module identifier:
// lower-cased, with everything outside [a-z0-9_] dropped.
func SanitizeSegment(seg string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(seg) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
