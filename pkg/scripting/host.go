package scripting

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/spf13/afero"
)

// Host loads and compiles endpoint, hook, validator and preparer scripts.
// Programs are compiled once per path and cached; every invocation gets a
// fresh ECMAScript runtime, so scripts never share in-runtime state and a
// cached program can be run from many goroutines at once. Cross-invocation
// state goes through the injected state stores instead.
type Host struct {
	fsys    afero.Fs
	root    string
	log     *slog.Logger
	timeout time.Duration

	mu    sync.RWMutex
	cache map[string]*Script
}

// NewHost creates a script host. Relative script paths resolve against
// root. Without options it uses a no-op logger and a 30s invocation
// timeout.
func NewHost(fsys afero.Fs, root string, opts ...HostOption) *Host {
	h := &Host{
		fsys:    fsys,
		root:    filepath.Clean(root),
		log:     slog.New(slog.DiscardHandler),
		timeout: 30 * time.Second,
		cache:   make(map[string]*Script),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Load reads, compiles and caches the script at path. Subsequent loads of
// the same path return the cached Script until Invalidate drops it.
func (h *Host) Load(path string) (*Script, error) {
	abs := h.resolve(path)

	h.mu.RLock()
	s, ok := h.cache[abs]
	h.mu.RUnlock()
	if ok {
		return s, nil
	}

	src, err := afero.ReadFile(h.fsys, abs)
	if err != nil {
		return nil, fmt.Errorf("scripting: read %s: %w", abs, err)
	}

	prog, err := goja.Compile(abs, string(src), false)
	if err != nil {
		return nil, fmt.Errorf("scripting: compile %s: %w", abs, err)
	}

	s = &Script{host: h, path: abs, prog: prog}
	if s.exports, err = s.exportNames(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.cache[abs] = s
	h.mu.Unlock()
	return s, nil
}

// Invalidate drops the cached program for path, forcing the next Load to
// recompile from disk.
func (h *Host) Invalidate(path string) {
	abs := h.resolve(path)

	h.mu.Lock()
	delete(h.cache, abs)
	h.mu.Unlock()
}

func (h *Host) resolve(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(h.root, path)
	}
	return filepath.Clean(path)
}
