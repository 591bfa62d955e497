package scripting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dop251/goja"
)

// ErrNoExport is returned by Invoke when the script does not export the
// requested entry point.
var ErrNoExport = errors.New("scripting: export not found")

// ErrInterrupted is returned when an invocation was aborted because its
// context expired.
var ErrInterrupted = errors.New("scripting: invocation interrupted")

// Script is a compiled script bound to its host. Scripts follow a
// CommonJS-like convention: the source assigns entry points to an
// "exports" object (or replaces "module.exports" wholesale), e.g.
//
//	exports.get = function (args) {
//	    args.response.data = { hello: args.identity.get("name") };
//	};
//
// Entry point names are resolved at load time; each Invoke re-runs the
// compiled program in a fresh runtime before calling the export.
type Script struct {
	host    *Host
	path    string
	prog    *goja.Program
	exports map[string]struct{}
}

// Path returns the resolved absolute path of the script.
func (s *Script) Path() string {
	return s.path
}

// Has reports whether the script exports an entry point with that name.
func (s *Script) Has(name string) bool {
	_, ok := s.exports[name]
	return ok
}

// Invoke runs the named export with the given arguments. Arguments are
// converted to ECMAScript values by goja; maps of functions become
// callable objects, which is how callers expose request helpers to the
// script. The export's return value is converted back with Export.
// A script exception comes back as an error; expiry of ctx interrupts the
// runtime and yields ErrInterrupted.
func (s *Script) Invoke(ctx context.Context, name string, args ...any) (any, error) {
	if !s.Has(name) {
		return nil, fmt.Errorf("%w: %s in %s", ErrNoExport, name, s.path)
	}

	ctx, cancel := context.WithTimeout(ctx, s.host.timeout)
	defer cancel()

	rt := goja.New()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			rt.Interrupt(ctx.Err())
		case <-stop:
		}
	}()

	exports, err := s.run(rt)
	if err != nil {
		return nil, err
	}

	fn, ok := goja.AssertFunction(exports.Get(name))
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s is not a function", ErrNoExport, name, s.path)
	}

	vals := make([]goja.Value, len(args))
	for i, a := range args {
		vals[i] = rt.ToValue(a)
	}

	res, err := fn(goja.Undefined(), vals...)
	if err != nil {
		return nil, s.wrapError(err)
	}
	if res == nil || goja.IsUndefined(res) || goja.IsNull(res) {
		return nil, nil
	}
	return res.Export(), nil
}

// run evaluates the compiled program in rt with fresh module/exports
// globals and returns the resulting exports object.
func (s *Script) run(rt *goja.Runtime) (*goja.Object, error) {
	module := rt.NewObject()
	exports := rt.NewObject()
	if err := module.Set("exports", exports); err != nil {
		return nil, fmt.Errorf("scripting: %s: %w", s.path, err)
	}
	if err := rt.Set("module", module); err != nil {
		return nil, fmt.Errorf("scripting: %s: %w", s.path, err)
	}
	if err := rt.Set("exports", exports); err != nil {
		return nil, fmt.Errorf("scripting: %s: %w", s.path, err)
	}
	rt.Set("log", s.logFunc(rt))

	if _, err := rt.RunProgram(s.prog); err != nil {
		return nil, s.wrapError(err)
	}

	// The script may have replaced module.exports entirely.
	out := module.Get("exports").ToObject(rt)
	return out, nil
}

// exportNames evaluates the program once in a scratch runtime to learn
// which entry points it exposes.
func (s *Script) exportNames() (map[string]struct{}, error) {
	exports, err := s.run(goja.New())
	if err != nil {
		return nil, err
	}

	names := make(map[string]struct{})
	for _, key := range exports.Keys() {
		if _, ok := goja.AssertFunction(exports.Get(key)); ok {
			names[key] = struct{}{}
		}
	}
	return names, nil
}

// logFunc gives scripts a global log(...) helper writing to the host's
// logger.
func (s *Script) logFunc(rt *goja.Runtime) func(args ...goja.Value) {
	return func(args ...goja.Value) {
		vals := make([]any, len(args))
		for i, a := range args {
			vals[i] = a.Export()
		}
		s.host.log.Info("script log",
			slog.String("script", s.path),
			slog.Any("values", vals))
	}
}

func (s *Script) wrapError(err error) error {
	var ie *goja.InterruptedError
	if errors.As(err, &ie) {
		return fmt.Errorf("%w: %s", ErrInterrupted, s.path)
	}
	return fmt.Errorf("scripting: %s: %w", s.path, err)
}
