package internal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mkloubert/editgate/pkg/scripting"
	"github.com/mkloubert/editgate/pkg/statestore"
)

// ScriptLoader adapts the embedded scripting host to the ModuleLoader
// interface used by route resolution.
type ScriptLoader struct {
	host *scripting.Host
}

// NewScriptLoader creates a loader over the given script host.
func NewScriptLoader(host *scripting.Host) *ScriptLoader {
	return &ScriptLoader{host: host}
}

// Load implements ModuleLoader.
func (l *ScriptLoader) Load(path string) (Endpoint, error) {
	s, err := l.host.Load(path)
	if err != nil {
		return nil, err
	}
	return &scriptEndpoint{script: s, path: s.Path()}, nil
}

// scriptEndpoint exposes a loaded script as an Endpoint. Method handlers
// are the script's get/post/put/patch/delete exports.
type scriptEndpoint struct {
	script *scripting.Script
	path   string
}

func (e *scriptEndpoint) Handles(method string) bool {
	return e.script.Has(method)
}

// Invoke runs the method export with a script-facing view of the Args.
// A returned value becomes the envelope's data payload; everything else
// goes through the accessor functions the script was handed.
func (e *scriptEndpoint) Invoke(ctx context.Context, method string, args *Args) error {
	res, err := e.script.Invoke(ctx, method, scriptArgs(ctx, args, e.path))
	if err != nil {
		return err
	}
	if res != nil {
		args.Response.Data = res
	}
	return nil
}

// scriptArgs bridges *Args into an object a script can use. Response
// mutation goes through setters because changes to a converted JS object
// would not flow back into the Go structs. The endpoint state handed to
// the script is scoped to scriptPath, so scripts do not observe each
// other's keys.
func scriptArgs(ctx context.Context, args *Args, scriptPath string) map[string]any {
	obj := map[string]any{
		"path":    args.Path,
		"options": args.Options,

		"setCode": func(code int) {
			if code >= 100 && code < 600 {
				args.Response.Code = code
			}
		},
		"setData": func(v any) { args.Response.Data = v },
		"setMsg":  func(msg string) { args.Response.Msg = msg },
		"setContent": func(data string, contentType string) {
			args.SetContent([]byte(data), contentType)
		},

		"sendNotFound":         args.SendNotFound,
		"sendForbidden":        args.SendForbidden,
		"sendMethodNotAllowed": args.SendMethodNotAllowed,
		"sendBadRequest":       args.SendBadRequest,
		"sendError":            args.SendError,

		"disableCompression": args.DisableCompression,

		"doNotEmitHook": args.DoNotEmitHook,
		"emitHook": func(name string, data map[string]any) (bool, error) {
			return args.EmitHook(ctx, name, data)
		},

		"body": func() (string, error) {
			b, err := args.Body()
			return string(b), err
		},
		"json": func() (any, error) {
			b, err := args.Body()
			if err != nil {
				return nil, err
			}
			var v any
			if err := json.Unmarshal(b, &v); err != nil {
				return nil, err
			}
			return v, nil
		},

		"state":          scriptState(ctx, scopeState(args.EndpointState(), scriptPath)),
		"workspaceState": scriptState(ctx, args.WorkspaceState()),
	}

	if args.Identity != nil {
		obj["identity"] = map[string]any{
			"isGuest": args.Identity.IsGuest(),
			"get": func(name string) any {
				v, _ := args.Identity.Get(name)
				return v
			},
			"set":   func(name string, value any) { args.Identity.Set(name, value) },
			"has":   args.Identity.Has,
			"unset": args.Identity.Unset,
			"can":   args.Identity.Can,
		}
	}
	if r := args.Request(); r != nil {
		headers := make(map[string]string, len(r.Header))
		for name := range r.Header {
			headers[name] = r.Header.Get(name)
		}
		obj["method"] = r.Method
		obj["headers"] = headers
		obj["query"] = r.URL.Query().Encode()
		obj["remoteAddr"] = r.RemoteAddr
	}

	return obj
}

// stateAccess is the subset of statestore.Store a script state object
// needs. It lets scoped views exist without carrying Clear and Close.
type stateAccess interface {
	Get(ctx context.Context, key string) (any, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
}

// scopedState prefixes every key with the owning script's path so two
// scripts sharing the endpoint store cannot read or clobber each other's
// entries.
type scopedState struct {
	inner  statestore.Store[any]
	prefix string
}

func scopeState(st statestore.Store[any], scriptPath string) stateAccess {
	if st == nil {
		return nil
	}
	return &scopedState{inner: st, prefix: scriptPath + ":"}
}

func (s *scopedState) Get(ctx context.Context, key string) (any, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *scopedState) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return s.inner.Set(ctx, s.prefix+key, value, ttl)
}

func (s *scopedState) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

func (s *scopedState) Has(ctx context.Context, key string) (bool, error) {
	return s.inner.Has(ctx, s.prefix+key)
}

// scriptState mirrors the state accessors hook scripts get; failures are
// thrown as script exceptions via goja's error-return convention.
func scriptState(ctx context.Context, st stateAccess) map[string]any {
	if st == nil {
		return nil
	}

	return map[string]any{
		"get": func(key string) (any, error) {
			v, err := st.Get(ctx, key)
			if errors.Is(err, statestore.ErrNotFound) {
				return nil, nil
			}
			return v, err
		},
		"set": func(key string, value any) error {
			return st.Set(ctx, key, value, 0)
		},
		"remove": func(key string) error {
			err := st.Delete(ctx, key)
			if errors.Is(err, statestore.ErrNotFound) {
				return nil
			}
			return err
		},
		"has": func(key string) (bool, error) {
			return st.Has(ctx, key)
		},
	}
}
