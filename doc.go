// Package editgate provides an HTTP gateway that exposes an interactive
// editing environment as a small REST API.
//
// Every request under the API prefix flows through the same pipeline:
// HTTP Basic authentication against a configured account list, an
// optional script-backed validator and preparer, endpoint resolution
// (custom script routes first, built-in modules second), handler
// execution, and a JSON envelope response with negotiated compression.
// Each completed request fires a hook event named after the endpoint
// that handled it unless the handler opted out.
//
// # Quick Start
//
// Create an application with editgate.New(), configure it with options,
// and call Run() to start the server:
//
//	app, err := editgate.New(
//	    editgate.WithLogger(logger),
//	    editgate.WithModules(modules.All(env, false)...),
//	    editgate.WithAccounts(accounts),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := app.Run(":1781"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Modules
//
// Built-in endpoints implement the [Module] interface plus one or more
// of the per-method interfaces ([Getter], [Poster], [Putter], [Patcher],
// [Deleter]). The first path segment after the prefix selects a module
// by its sanitized name; a method without a matching interface yields
// 405 and an unknown selector yields 404.
//
// # Custom Endpoints
//
// Routes configured with a regular expression pattern and a script path
// are checked before built-in modules. Scripts are loaded through a
// [ModuleLoader]; a route that matches but cannot serve the request
// yields 501.
//
// # Hooks
//
// Completed requests emit fire-and-forget events through a hook emitter
// whose handlers are matched by regular expression against the endpoint
// name. Handlers run on their own goroutines and never delay responses.
package editgate
