// Package scripting embeds an ECMAScript 5 host for the gateway's
// externally supplied extension points: custom endpoint modules, hook
// handlers, request validators and identity preparers.
//
// Scripts are plain files following a CommonJS-like convention, assigning
// their entry points to an exports object:
//
//	exports.get = function (args) { ... };
//	exports.onHook = function (ev) { ... };
//
// The Host compiles each script once and caches the program; every
// invocation evaluates it in a fresh runtime, so scripts cannot leak
// in-runtime state between requests. Persistent state is provided
// explicitly through injected state stores with last-write-wins semantics.
//
// Built on github.com/dop251/goja.
package scripting
