package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"

	"github.com/mkloubert/editgate/pkg/acl"
	"github.com/mkloubert/editgate/pkg/compress"
	"github.com/mkloubert/editgate/pkg/hooks"
	"github.com/mkloubert/editgate/pkg/statestore"
)

// Validator may veto a request before route resolution. A rejected
// request is answered with the (adjustable) status code in the
// validation request, default 404, and no body.
type Validator = acl.Validator

// Dispatcher is the HTTP entry point of the gateway. Each request runs the
// same sequential pipeline: authenticate, prepare, validate, resolve,
// execute, respond. Every failure along the way is converted into a
// status-coded response; only 500s carry the error text, as a plain-text
// body, and 4xx responses stay bodyless so hidden and absent resources are
// indistinguishable.
type Dispatcher struct {
	resolver  *Resolver
	accounts  *acl.Resolver
	preparer  acl.Preparer
	validator Validator
	emitter   *hooks.Emitter
	env       *envBuilder
	logger    *slog.Logger
	realm     string

	endpointState  statestore.Store[any]
	workspaceState statestore.Store[any]
}

// bodyless are the failure statuses written without any body.
func bodyless(code int) bool {
	switch code {
	case http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusMethodNotAllowed,
		http.StatusConflict,
		http.StatusGone,
		http.StatusNotImplemented:
		return true
	}
	return false
}

// ServeHTTP runs the dispatch pipeline for one request.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w)
	rw.Header().Set("Server", AppName+"/"+Version)

	ctx := r.Context()
	normalized := path.Clean(r.URL.Path)

	// Authenticating.
	identity, err := d.accounts.Resolve(r.Header)
	if err != nil {
		rw.Header().Set("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", d.realm))
		rw.WriteHeader(http.StatusUnauthorized)
		return
	}

	if d.preparer != nil {
		prepared, err := d.preparer.Prepare(ctx, identity)
		if err != nil {
			d.writeFailure(ctx, rw, ErrInternal("preparer failed", WithError(err)))
			return
		}
		if prepared != nil {
			identity = prepared
		}
	}

	// Validating.
	if d.validator != nil {
		vreq := &acl.ValidationRequest{
			Method:     r.Method,
			Path:       normalized,
			RemoteAddr: r.RemoteAddr,
			Headers:    r.Header,
			Identity:   identity,
			StatusCode: http.StatusNotFound,
		}
		valid, err := d.validator.Validate(ctx, vreq)
		if err != nil {
			d.writeFailure(ctx, rw, ErrInternal("validator failed", WithError(err)))
			return
		}
		if !valid {
			rw.WriteHeader(vreq.StatusCode)
			return
		}
	}

	// Resolving.
	res, err := d.resolver.Resolve(r.Method, normalized)
	if err != nil {
		d.writeFailure(ctx, rw, err)
		return
	}

	args := &Args{
		Path:           res.Rest,
		Identity:       identity,
		Response:       &Response{Code: http.StatusOK},
		Options:        res.Options,
		req:            r,
		logger:         d.logger,
		emitter:        d.emitter,
		endpointState:  d.endpointState,
		workspaceState: d.workspaceState,
	}

	// Executing.
	if err := d.invoke(ctx, res, args); err != nil {
		d.writeFailure(ctx, rw, err)
		return
	}

	// Responding.
	d.respond(rw, r, args)

	// Fire-and-forget hook emission; the response never waits on it.
	if args.EmitsHook() && d.emitter != nil {
		if _, err := d.emitter.Emit(ctx, res.Name, map[string]any{
			"method": r.Method,
			"path":   normalized,
			"status": args.Response.Code,
		}); err != nil && !errors.Is(err, hooks.ErrClosed) {
			d.logger.ErrorContext(ctx, "hook emission failed",
				slog.String("endpoint", res.Name),
				slog.Any("error", err))
		}
	}
}

// invoke runs the resolved handler, converting panics into internal
// errors so one request cannot take the process down.
func (d *Dispatcher) invoke(ctx context.Context, res *Resolution, args *Args) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = ErrInternal(fmt.Sprintf("handler panicked: %v", rec))
		}
	}()
	return res.Invoke(ctx, args)
}

// respond serializes the staged response: bare status for the bodyless
// failure codes, raw content if the handler opted out of the envelope,
// otherwise the JSON envelope. The payload is compressed per the client's
// Accept-Encoding; write errors are logged, never escalated, because the
// client may already be gone.
func (d *Dispatcher) respond(rw *ResponseWriter, r *http.Request, args *Args) {
	code := args.Response.Code

	if bodyless(code) {
		rw.WriteHeader(code)
		return
	}

	var payload []byte
	if content, contentType, ok := args.Content(); ok {
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		rw.Header().Set("Content-Type", contentType)
		payload = content
	} else {
		env := Envelope{
			Code: code,
			Data: args.Response.Data,
			Msg:  args.Response.Msg,
			Env:  d.env.build(r),
		}
		var err error
		if payload, err = json.Marshal(env); err != nil {
			d.writeFailure(r.Context(), rw, ErrInternal("response serialization failed", WithError(err)))
			return
		}
		rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	}

	body, encoding := payload, compress.Identity
	if !args.CompressionDisabled() {
		body, encoding = compress.Negotiate(payload, r.Header.Get("Accept-Encoding"))
	}
	if encoding != compress.Identity {
		rw.Header().Set("Content-Encoding", string(encoding))
	}

	rw.WriteHeader(code)
	if _, err := rw.Write(body); err != nil {
		d.logger.WarnContext(r.Context(), "response write failed", slog.Any("error", err))
	}
}

// writeFailure converts a dispatch failure into its terminal response.
// Custom reason phrases are not available through net/http, so the 500
// error text is written as a plain-text body instead of a structured one.
func (d *Dispatcher) writeFailure(ctx context.Context, rw *ResponseWriter, err error) {
	httpErr := AsHTTPError(err)
	if httpErr == nil {
		httpErr = ErrInternal(err.Error(), WithError(err))
	}

	if httpErr.Code >= http.StatusInternalServerError {
		d.logger.ErrorContext(ctx, "request failed",
			slog.Int("status", httpErr.Code),
			slog.Any("error", err))
	}

	if rw.Written() {
		return
	}

	if bodyless(httpErr.Code) {
		rw.WriteHeader(httpErr.Code)
		return
	}

	rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
	rw.WriteHeader(httpErr.Code)
	if _, werr := rw.Write([]byte(httpErr.Message)); werr != nil {
		d.logger.WarnContext(ctx, "response write failed", slog.Any("error", werr))
	}
}
