// Package internal implements the gateway core: the dispatch pipeline,
// endpoint resolution, the response envelope, and the server runtime.
//
// This package is internal and should not be used directly. Import
// "github.com/mkloubert/editgate" instead, which re-exports the public
// API.
//
// # Core Types
//
//   - App: orchestrates routing, the dispatcher, and graceful shutdown
//   - Dispatcher: runs each request through authenticate, prepare,
//     validate, resolve, execute, respond
//   - Resolver: maps (method, path) to a handler; custom script routes
//     first, built-in modules second
//   - Module: a built-in endpoint, selected by the sanitized first path
//     segment after the API prefix, with one interface per HTTP method
//     (Getter, Poster, Putter, Patcher, Deleter)
//   - Endpoint and ModuleLoader: externally loaded handlers for custom
//     routes
//   - Args: the handler invocation surface, carrying the request, the
//     resolved identity, the staged Response, and the state stores
//   - HTTPError: a status-coded dispatch failure
//
// # Dispatch Pipeline
//
// Every request under the API prefix runs the same sequence. Failures
// map onto a fixed taxonomy: 401 for failed authentication (with a Basic
// challenge), 404 for unknown or invisible resources, 405 for a known
// module without the method, 501 for a matched custom route that cannot
// serve, 410 for an absent host capability, and 409 for deployment
// conflicts. All of those are written without a body; only 500 carries
// the error text, as plain text.
//
// Successful handlers are serialized into a JSON envelope carrying the
// status code, the data payload, an optional message, and process
// metadata (application name and version, host, matched language,
// machine name, and a per-process session id). A handler may bypass the
// envelope entirely with Args.SetContent.
//
// # Hooks
//
// After the response is written, the dispatcher emits a fire-and-forget
// hook named after the resolved endpoint unless the handler suppressed
// it. Responses never wait on hook handlers.
package internal
