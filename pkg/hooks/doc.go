// Package hooks provides a process-local event emitter for gateway hooks.
//
// Handlers are registered with regular-expression patterns that are matched
// case-insensitively against the full hook name. Emitting is fire and
// forget: handlers run in detached goroutines with their own timeout, and a
// failing or panicking handler is logged, never surfaced to the emitter's
// caller. The returned bool of Emit only reports whether any pattern
// matched.
//
//	em := hooks.NewEmitter(hooks.WithLogger(log))
//	_ = em.Register("write|save", hooks.HandlerFunc(onWrite))
//
//	matched, err := em.Emit(ctx, "save", map[string]any{"file": "a.txt"})
//
// Each registration owns a private state store and all handlers share one
// global store, both with last-write-wins semantics.
package hooks
