package internal

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/mkloubert/editgate/pkg/config"
)

// Resolution is the outcome of route resolution: an invocable handler, the
// path remainder for sub-resource addressing, the endpoint name used for
// automatic hook emission, and the matched route's options (nil for
// built-ins).
type Resolution struct {
	Invoke  func(ctx context.Context, args *Args) error
	Name    string
	Rest    string
	Options map[string]any
}

type compiledRoute struct {
	re      *regexp.Regexp // nil matches every path
	script  string
	options map[string]any
}

// Resolver picks the handler for a normalized request path. Custom routes
// are checked first, in declaration order; the first matching active route
// is authoritative and resolution never falls through to built-ins after a
// match. Built-in modules are keyed by the sanitized first path segment
// after the API prefix.
type Resolver struct {
	prefix  string
	routes  []compiledRoute
	loader  ModuleLoader
	modules map[string]Module
}

// NewResolver compiles the custom route table and indexes the built-in
// modules. Inactive routes are dropped here; an invalid pattern is a
// startup error, not a per-request one.
func NewResolver(prefix string, routes []config.Route, loader ModuleLoader, modules []Module) (*Resolver, error) {
	r := &Resolver{
		prefix:  strings.TrimSuffix(prefix, "/"),
		loader:  loader,
		modules: make(map[string]Module, len(modules)),
	}

	for _, m := range modules {
		r.modules[SanitizeSegment(m.Name())] = m
	}

	for i, route := range routes {
		if !route.IsActive() {
			continue
		}
		cr := compiledRoute{script: route.Script, options: route.Options}
		if route.Pattern != "" {
			re, err := regexp.Compile(route.Pattern)
			if err != nil {
				return nil, fmt.Errorf("endpoint route %d: invalid pattern %q: %w", i, route.Pattern, err)
			}
			cr.re = re
		}
		r.routes = append(r.routes, cr)
	}

	return r, nil
}

// Resolve maps (method, path) to a handler. path is the full normalized
// request path including the API prefix, which is what custom route
// patterns are tested against. Failures carry the dispatch taxonomy:
// 501 for a matched custom route that cannot be fulfilled, 404 for an
// unknown built-in module, 405 for a known module without the method.
func (r *Resolver) Resolve(method, path string) (*Resolution, error) {
	method = strings.ToLower(method)

	for _, route := range r.routes {
		if route.re != nil && !route.re.MatchString(path) {
			continue
		}
		return r.resolveCustom(route, method, path)
	}

	return r.resolveBuiltin(method, path)
}

func (r *Resolver) resolveCustom(route compiledRoute, method, path string) (*Resolution, error) {
	if r.loader == nil || route.script == "" {
		return nil, ErrNotImplemented("custom route has no loadable script")
	}

	ep, err := r.loader.Load(route.script)
	if err != nil {
		return nil, ErrNotImplemented("custom endpoint failed to load", WithError(err))
	}
	if !ep.Handles(method) {
		return nil, ErrNotImplemented(fmt.Sprintf("custom endpoint has no %s handler", method))
	}

	return &Resolution{
		Invoke: func(ctx context.Context, args *Args) error {
			return ep.Invoke(ctx, method, args)
		},
		Name:    route.script,
		Rest:    path,
		Options: route.options,
	}, nil
}

func (r *Resolver) resolveBuiltin(method, path string) (*Resolution, error) {
	rest := strings.TrimPrefix(path, r.prefix)
	rest = strings.Trim(rest, "/")

	var selector string
	if rest != "" {
		selector, rest, _ = strings.Cut(rest, "/")
	}

	mod, ok := r.modules[SanitizeSegment(selector)]
	if !ok {
		return nil, ErrNotFound("no such module")
	}

	invoke, ok := methodHandler(mod, method)
	if !ok {
		return nil, ErrMethodNotAllowed(fmt.Sprintf("module does not support %s", strings.ToUpper(method)))
	}

	name := SanitizeSegment(selector)
	if name == "" {
		name = "root"
	}
	return &Resolution{Invoke: invoke, Name: name, Rest: rest}, nil
}

// methodHandler maps the lower-cased HTTP method to the module's
// method-specific interface.
func methodHandler(mod Module, method string) (func(ctx context.Context, args *Args) error, bool) {
	switch method {
	case strings.ToLower(http.MethodGet):
		if h, ok := mod.(Getter); ok {
			return h.Get, true
		}
	case strings.ToLower(http.MethodPost):
		if h, ok := mod.(Poster); ok {
			return h.Post, true
		}
	case strings.ToLower(http.MethodPut):
		if h, ok := mod.(Putter); ok {
			return h.Put, true
		}
	case strings.ToLower(http.MethodPatch):
		if h, ok := mod.(Patcher); ok {
			return h.Patch, true
		}
	case strings.ToLower(http.MethodDelete):
		if h, ok := mod.(Deleter); ok {
			return h.Delete, true
		}
	}
	return nil, false
}
