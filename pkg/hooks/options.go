package hooks

import (
	"log/slog"
	"time"

	"github.com/mkloubert/editgate/pkg/statestore"
)

// Option configures an Emitter.
type Option func(*Emitter)

// WithLogger sets the logger used for handler failures and panics.
func WithLogger(log *slog.Logger) Option {
	return func(e *Emitter) {
		if log != nil {
			e.log = log
		}
	}
}

// WithGlobalState replaces the in-memory global state shared by all
// handlers, e.g. with a Redis-backed store.
func WithGlobalState(st statestore.Store[any]) Option {
	return func(e *Emitter) {
		if st != nil {
			e.global = st
		}
	}
}

// WithTimeout sets the per-handler execution timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Emitter) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// RegisterOption configures a single handler registration.
type RegisterOption func(*entry)

// WithState sets the handler's private state store. Passing the same store
// to multiple registrations makes them share it.
func WithState(st statestore.Store[any]) RegisterOption {
	return func(ent *entry) {
		if st != nil {
			ent.state = st
		}
	}
}
