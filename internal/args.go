package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mkloubert/editgate/pkg/acl"
	"github.com/mkloubert/editgate/pkg/hooks"
	"github.com/mkloubert/editgate/pkg/statestore"
)

// maxBodyBytes bounds request bodies read through Args.
const maxBodyBytes = 8 << 20 // 8MB

// Response is the staged result of a handler. The dispatcher serializes
// it into the JSON envelope after the handler returns, unless raw content
// was set through SetContent.
type Response struct {
	// Code is the HTTP status to write. Handlers may change it.
	Code int

	// Data is the envelope's data payload.
	Data any

	// Msg is the envelope's human-readable message.
	Msg string
}

// Args is what a handler invocation receives: the request, the resolved
// identity, the path remainder after the consumed module selector, staged
// response state, and the injected collaborators.
type Args struct {
	// Path is the remainder of the request path after the module-selector
	// segment, for sub-resource addressing. Empty for the module root.
	Path string

	// Identity is the authenticated caller.
	Identity *acl.Identity

	// Response is the staged response, serialized after the handler
	// returns.
	Response *Response

	// Options carries the matched route's configured options, nil for
	// built-in modules.
	Options map[string]any

	req     *http.Request
	logger  *slog.Logger
	emitter *hooks.Emitter

	endpointState  statestore.Store[any]
	workspaceState statestore.Store[any]

	body     []byte
	bodyRead bool
	bodyErr  error

	content     []byte
	contentType string
	hasContent  bool

	suppressHook  bool
	noCompression bool
}

// Request returns the underlying HTTP request.
func (a *Args) Request() *http.Request {
	return a.req
}

// Logger returns the request-scoped logger.
func (a *Args) Logger() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.logger
}

// Body reads and caches the request body. Safe to call repeatedly.
func (a *Args) Body() ([]byte, error) {
	if a.bodyRead {
		return a.body, a.bodyErr
	}
	a.bodyRead = true

	if a.req == nil || a.req.Body == nil {
		return nil, nil
	}
	defer a.req.Body.Close()

	a.body, a.bodyErr = io.ReadAll(io.LimitReader(a.req.Body, maxBodyBytes))
	return a.body, a.bodyErr
}

// JSON decodes the request body into v.
func (a *Args) JSON(v any) error {
	body, err := a.Body()
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return fmt.Errorf("empty request body")
	}
	return json.Unmarshal(body, v)
}

// SetContent opts out of the JSON envelope: the response body and
// Content-Type become handler-supplied. The staged status code still
// applies.
func (a *Args) SetContent(data []byte, contentType string) {
	a.content = data
	a.contentType = contentType
	a.hasContent = true
}

// Content returns raw content staged via SetContent.
func (a *Args) Content() (data []byte, contentType string, ok bool) {
	return a.content, a.contentType, a.hasContent
}

// SendNotFound stages an empty 404 response, discarding any staged
// payload.
func (a *Args) SendNotFound() {
	a.stageEmpty(http.StatusNotFound)
}

// SendForbidden stages an empty 403 response.
func (a *Args) SendForbidden() {
	a.stageEmpty(http.StatusForbidden)
}

// SendMethodNotAllowed stages an empty 405 response.
func (a *Args) SendMethodNotAllowed() {
	a.stageEmpty(http.StatusMethodNotAllowed)
}

// SendGone stages an empty 410 response.
func (a *Args) SendGone() {
	a.stageEmpty(http.StatusGone)
}

// SendConflict stages an empty 409 response.
func (a *Args) SendConflict() {
	a.stageEmpty(http.StatusConflict)
}

// SendBadRequest stages a 400 response with an optional message.
func (a *Args) SendBadRequest(msg string) {
	a.stageEmpty(http.StatusBadRequest)
	a.Response.Msg = msg
}

// SendError stages a 500 response with an optional message, discarding
// any staged payload.
func (a *Args) SendError(msg string) {
	a.stageEmpty(http.StatusInternalServerError)
	a.Response.Msg = msg
}

func (a *Args) stageEmpty(code int) {
	a.Response.Code = code
	a.Response.Data = nil
	a.Response.Msg = ""
	a.content = nil
	a.contentType = ""
	a.hasContent = false
	a.suppressHook = true
}

// DisableCompression opts the staged response out of content-encoding
// negotiation; the body is written verbatim regardless of the client's
// Accept-Encoding.
func (a *Args) DisableCompression() {
	a.noCompression = true
}

// CompressionDisabled reports whether the handler opted the response out
// of content-encoding negotiation.
func (a *Args) CompressionDisabled() bool {
	return a.noCompression
}

// DoNotEmitHook suppresses the automatic hook emission after the handler
// completes.
func (a *Args) DoNotEmitHook() {
	a.suppressHook = true
}

// EmitsHook reports whether the automatic post-handler hook should fire.
func (a *Args) EmitsHook() bool {
	return !a.suppressHook
}

// EmitHook fires a named hook explicitly. The returned bool reports
// whether any registered pattern matched.
func (a *Args) EmitHook(ctx context.Context, name string, data map[string]any) (bool, error) {
	if a.emitter == nil {
		return false, nil
	}
	return a.emitter.Emit(ctx, name, data)
}

// EndpointState is the process-wide state store shared by endpoint
// handlers, keyed by script path or any caller-chosen key.
// Last-write-wins.
func (a *Args) EndpointState() statestore.Store[any] {
	return a.endpointState
}

// WorkspaceState is the workspace-wide shared state store.
func (a *Args) WorkspaceState() statestore.Store[any] {
	return a.workspaceState
}
