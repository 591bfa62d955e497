package host

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// CommandFunc is a Go-implemented environment command.
type CommandFunc func(ctx context.Context, args []any) (any, error)

// Local is a self-contained Environment over a directory tree. It
// implements every optional capability: the editor is emulated with a
// single in-memory active document, commands are registered Go functions,
// popups go to the log, and deploys copy files into configured target
// directories. It exists for running the gateway outside a real editor and
// for tests.
type Local struct {
	name string
	fsys afero.Fs
	root string
	log  *slog.Logger

	commands map[string]localCommand
	targets  map[string]string

	mu     sync.Mutex
	active *Document
}

type localCommand struct {
	description string
	fn          CommandFunc
}

// NewLocal creates a Local environment rooted at root.
func NewLocal(fsys afero.Fs, root string, opts ...LocalOption) *Local {
	l := &Local{
		name:     "local",
		fsys:     fsys,
		root:     filepath.Clean(root),
		log:      slog.New(slog.DiscardHandler),
		commands: make(map[string]localCommand),
		targets:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Local) Name() string          { return l.name }
func (l *Local) WorkspaceRoot() string { return l.root }
func (l *Local) FS() afero.Fs          { return l.fsys }

// Active implements Editor.
func (l *Local) Active(_ context.Context) (*Document, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active == nil {
		return nil, ErrNoDocument
	}
	doc := *l.active
	return &doc, nil
}

// Open implements Editor. The document must exist under the workspace
// root.
func (l *Local) Open(_ context.Context, path string) (*Document, error) {
	abs, err := l.resolve(path)
	if err != nil {
		return nil, err
	}

	info, err := l.fsys.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("host: open %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("host: open %s: is a directory", path)
	}

	rel, _ := filepath.Rel(l.root, abs)
	doc := &Document{
		Path:     filepath.ToSlash(rel),
		OpenedAt: time.Now().UTC(),
	}

	l.mu.Lock()
	l.active = doc
	l.mu.Unlock()

	out := *doc
	return &out, nil
}

// Save implements Editor by writing content to the active document's file.
func (l *Local) Save(_ context.Context, content []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active == nil {
		return ErrNoDocument
	}

	abs := filepath.Join(l.root, filepath.FromSlash(l.active.Path))
	if err := afero.WriteFile(l.fsys, abs, content, 0o644); err != nil {
		return fmt.Errorf("host: save %s: %w", l.active.Path, err)
	}
	l.active.Dirty = false
	return nil
}

// Close implements Editor.
func (l *Local) Close(_ context.Context) error {
	l.mu.Lock()
	l.active = nil
	l.mu.Unlock()
	return nil
}

// Commands implements Commander, sorted by name.
func (l *Local) Commands(_ context.Context) ([]Command, error) {
	out := make([]Command, 0, len(l.commands))
	for name, cmd := range l.commands {
		out = append(out, Command{Name: name, Description: cmd.description})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Execute implements Commander.
func (l *Local) Execute(ctx context.Context, name string, args []any) (any, error) {
	cmd, ok := l.commands[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return cmd.fn(ctx, args)
}

// ShowMessage implements Popups by logging the message.
func (l *Local) ShowMessage(ctx context.Context, kind MessageKind, text string) error {
	level := slog.LevelInfo
	switch kind {
	case MessageWarning:
		level = slog.LevelWarn
	case MessageError:
		level = slog.LevelError
	}
	l.log.Log(ctx, level, "popup", slog.String("text", text))
	return nil
}

// Deploy implements Deployer by copying files into the target directory.
// An empty file list deploys the whole workspace.
func (l *Local) Deploy(ctx context.Context, target string, files []string) error {
	dest, ok := l.targets[target]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, target)
	}

	if len(files) == 0 {
		var err error
		files, err = l.workspaceFiles()
		if err != nil {
			return err
		}
	}

	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.copyOut(rel, dest); err != nil {
			return fmt.Errorf("host: deploy %s to %s: %w", rel, target, err)
		}
	}
	return nil
}

func (l *Local) workspaceFiles() ([]string, error) {
	var out []string
	err := afero.Walk(l.fsys, l.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	return out, err
}

func (l *Local) copyOut(rel, dest string) error {
	src, err := l.fsys.Open(filepath.Join(l.root, filepath.FromSlash(rel)))
	if err != nil {
		return err
	}
	defer src.Close()

	target := filepath.Join(dest, filepath.FromSlash(rel))
	if err := l.fsys.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	dst, err := l.fsys.Create(target)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

func (l *Local) resolve(path string) (string, error) {
	abs := filepath.FromSlash(path)
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(l.root, abs)
	}
	abs = filepath.Clean(abs)

	rel, err := filepath.Rel(l.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("host: path %s is outside the workspace", path)
	}
	return abs, nil
}
