package hooks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/mkloubert/editgate/pkg/statestore"
)

var (
	// ErrEmptyName is returned by Emit when the hook name is empty.
	ErrEmptyName = errors.New("hooks: empty hook name")

	// ErrClosed is returned by Emit after the emitter has been closed.
	ErrClosed = errors.New("hooks: emitter is closed")
)

// Event is what a handler receives for each emitted hook.
type Event struct {
	// Name is the hook name as emitted, before pattern matching.
	Name string

	// Data carries the hook payload. May be nil.
	Data map[string]any

	// Time is when the hook was emitted.
	Time time.Time
}

// States gives a handler access to its persistent state. Script is private
// to the handler it was registered with; Global is shared by every handler
// of the emitter. Both survive across invocations for the lifetime of the
// process, last write wins.
type States struct {
	Script statestore.Store[any]
	Global statestore.Store[any]
}

// Handler reacts to an emitted hook. Returning an error marks the
// invocation as failed; the emitter logs it and moves on.
type Handler interface {
	HandleHook(ctx context.Context, ev Event, st States) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, ev Event, st States) error

// HandleHook calls f.
func (f HandlerFunc) HandleHook(ctx context.Context, ev Event, st States) error {
	return f(ctx, ev, st)
}

type entry struct {
	re      *regexp.Regexp
	handler Handler
	state   statestore.Store[any]
}

// Emitter dispatches named hooks to registered handlers. Patterns are
// regular expressions matched case-insensitively against the WHOLE hook
// name; "close" matches "close" and "CLOSE" but never "closed". Handlers
// run in detached goroutines so emitting never blocks request handling,
// and a handler failure never surfaces to the emitting request.
type Emitter struct {
	mu      sync.RWMutex
	entries []entry
	closed  bool

	global  statestore.Store[any]
	log     *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewEmitter creates an Emitter. Without options it uses an in-memory
// global state, a no-op logger and a 30s per-handler timeout.
func NewEmitter(opts ...Option) *Emitter {
	e := &Emitter{
		global:  statestore.NewMemory[any](),
		log:     slog.New(slog.DiscardHandler),
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register adds a handler for every hook name matching pattern. The
// pattern is compiled as (?i)^(?:pattern)$, so matching is
// case-insensitive and anchored to the full name. The handler gets a fresh
// private state store unless WithState overrides it; passing the same
// store to several Register calls lets one script share state across its
// pattern registrations.
func (e *Emitter) Register(pattern string, h Handler, opts ...RegisterOption) error {
	re, err := regexp.Compile(`(?i)^(?:` + pattern + `)$`)
	if err != nil {
		return fmt.Errorf("hooks: invalid pattern %q: %w", pattern, err)
	}

	ent := entry{
		re:      re,
		handler: h,
		state:   statestore.NewMemory[any](),
	}
	for _, opt := range opts {
		opt(&ent)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.entries = append(e.entries, ent)
	return nil
}

// Emit fires the named hook. The returned bool reports whether at least
// one registered pattern matched the name; it says nothing about handler
// success, because handlers run detached from the caller. The payload map
// is passed through to handlers as-is, so callers must not mutate it
// afterwards. The handler contexts are derived without the caller's
// cancelation: finishing the emitting request does not abort handlers.
func (e *Emitter) Emit(ctx context.Context, name string, data map[string]any) (bool, error) {
	if name == "" {
		return false, ErrEmptyName
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return false, ErrClosed
	}

	ev := Event{Name: name, Data: data, Time: time.Now().UTC()}

	matched := false
	for _, ent := range e.entries {
		if !ent.re.MatchString(name) {
			continue
		}
		matched = true
		e.wg.Add(1)
		go e.run(context.WithoutCancel(ctx), ent, ev)
	}
	return matched, nil
}

func (e *Emitter) run(ctx context.Context, ent entry, ev Event) {
	defer e.wg.Done()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			e.log.ErrorContext(ctx, "hook handler panicked",
				slog.String("hook", ev.Name),
				slog.Any("panic", r))
		}
	}()

	st := States{Script: ent.state, Global: e.global}
	if err := ent.handler.HandleHook(ctx, ev, st); err != nil {
		e.log.ErrorContext(ctx, "hook handler failed",
			slog.String("hook", ev.Name),
			slog.Any("error", err))
	}
}

// Wait blocks until all in-flight handlers have finished. Meant for
// shutdown and tests.
func (e *Emitter) Wait() {
	e.wg.Wait()
}

// Close stops the emitter. Emit returns ErrClosed afterwards; handlers
// already in flight are waited for.
func (e *Emitter) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	e.wg.Wait()
	return nil
}
