package scripting

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mkloubert/editgate/pkg/acl"
	"github.com/mkloubert/editgate/pkg/hooks"
	"github.com/mkloubert/editgate/pkg/statestore"
)

// ExportHook is the entry point a hook script must expose.
const ExportHook = "onHook"

// ExportValidate is the entry point a validator script must expose.
const ExportValidate = "validate"

// ExportPrepare is the entry point a preparer script must expose.
const ExportPrepare = "prepare"

// NewHookHandler adapts a script's onHook export to the hooks.Handler
// interface. The export receives one object:
//
//	{
//	    name:        string,
//	    time:        string (RFC 3339),
//	    data:        object or null,
//	    state:       { get, set, remove, has },  // private to this script
//	    globalState: { get, set, remove, has },  // shared by all hook scripts
//	}
func NewHookHandler(script *Script) hooks.Handler {
	return hooks.HandlerFunc(func(ctx context.Context, ev hooks.Event, st hooks.States) error {
		arg := map[string]any{
			"name":        ev.Name,
			"time":        ev.Time.Format(time.RFC3339),
			"data":        ev.Data,
			"state":       stateObject(ctx, st.Script),
			"globalState": stateObject(ctx, st.Global),
		}
		_, err := script.Invoke(ctx, ExportHook, arg)
		return err
	})
}

// Preparer runs a script's prepare export against the resolved Identity.
type Preparer struct {
	script *Script
	state  statestore.Store[any]
	global statestore.Store[any]
}

// NewPreparer creates a script-backed acl.Preparer. state is private to the
// preparer script, global is the workspace-wide shared store.
func NewPreparer(script *Script, state, global statestore.Store[any]) *Preparer {
	return &Preparer{script: script, state: state, global: global}
}

// Prepare invokes the prepare export with the identity and its state
// stores. The script may mutate the identity through set/unset, or return
// an object whose entries replace the identity's variables wholesale.
// Failures abort the request.
func (p *Preparer) Prepare(ctx context.Context, identity *acl.Identity) (*acl.Identity, error) {
	arg := map[string]any{
		"identity":    identityObject(identity),
		"state":       stateObject(ctx, p.state),
		"globalState": stateObject(ctx, p.global),
	}

	res, err := p.script.Invoke(ctx, ExportPrepare, arg)
	if err != nil {
		return nil, err
	}

	if vars, ok := res.(map[string]any); ok {
		for name := range identity.Vars() {
			identity.Unset(name)
		}
		for name, value := range vars {
			identity.Set(name, value)
		}
	}
	return identity, nil
}

// Validator runs a script's validate export before route resolution.
type Validator struct {
	script *Script
	state  statestore.Store[any]
	global statestore.Store[any]
}

// NewValidator creates a script-backed request validator.
func NewValidator(script *Script, state, global statestore.Store[any]) *Validator {
	return &Validator{script: script, state: state, global: global}
}

// Validate invokes the validate export with an acl.ValidationRequest. An
// undefined or null result means the request is valid; a boolean result
// decides directly. When the script rejects, req.StatusCode carries the
// status to write; scripts may change it through setStatusCode, the
// default is 404.
func (v *Validator) Validate(ctx context.Context, req *acl.ValidationRequest) (bool, error) {
	if req.StatusCode == 0 {
		req.StatusCode = http.StatusNotFound
	}

	headers := make(map[string]string, len(req.Headers))
	for name := range req.Headers {
		headers[name] = req.Headers.Get(name)
	}

	arg := map[string]any{
		"method":     req.Method,
		"path":       req.Path,
		"remoteAddr": req.RemoteAddr,
		"headers":    headers,
		"identity":   identityObject(req.Identity),
		"statusCode": req.StatusCode,
		"setStatusCode": func(code int) {
			if code >= 100 && code < 600 {
				req.StatusCode = code
			}
		},
		"state":       stateObject(ctx, v.state),
		"globalState": stateObject(ctx, v.global),
	}

	res, err := v.script.Invoke(ctx, ExportValidate, arg)
	if err != nil {
		return false, err
	}

	switch val := res.(type) {
	case nil:
		return true, nil
	case bool:
		return val, nil
	default:
		// Any other truthy-ish return is treated as valid.
		return true, nil
	}
}

// identityObject exposes an Identity to scripts as an object of accessor
// functions. Mutations go straight through to the Go-side identity.
func identityObject(identity *acl.Identity) map[string]any {
	if identity == nil {
		return nil
	}

	obj := map[string]any{
		"isGuest": identity.IsGuest(),
		"get": func(name string) any {
			v, _ := identity.Get(name)
			return v
		},
		"set":   func(name string, value any) { identity.Set(name, value) },
		"has":   identity.Has,
		"unset": identity.Unset,
		"can":   identity.Can,
		"vars":  identity.Vars,
	}
	if acc := identity.Account(); acc != nil {
		obj["account"] = acc.Name
	}
	return obj
}

// stateObject exposes a state store to scripts. Get returns null for
// missing keys; store failures are thrown as script exceptions via goja's
// error-return convention.
func stateObject(ctx context.Context, st statestore.Store[any]) map[string]any {
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
