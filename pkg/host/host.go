package host

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/afero"
)

var (
	// ErrNoDocument is returned when an operation needs an active document
	// and none is open.
	ErrNoDocument = errors.New("host: no active document")

	// ErrUnknownCommand is returned when a named command is not known to
	// the environment.
	ErrUnknownCommand = errors.New("host: unknown command")

	// ErrUnknownTarget is returned when a deploy target is not configured.
	ErrUnknownTarget = errors.New("host: unknown deploy target")
)

// Environment is the editing environment the gateway fronts. Only the
// workspace surface is mandatory; the richer capabilities are optional
// interfaces the concrete environment may or may not implement. Callers
// type-assert for them and translate absence into 410 Gone.
type Environment interface {
	// Name identifies the environment, e.g. a hostname or editor name.
	Name() string

	// WorkspaceRoot is the absolute directory all workspace paths resolve
	// against.
	WorkspaceRoot() string

	// FS exposes the workspace file system.
	FS() afero.Fs
}

// Document describes a document open in the environment.
type Document struct {
	Path     string    `json:"path"`
	Language string    `json:"language,omitempty"`
	Dirty    bool      `json:"dirty"`
	OpenedAt time.Time `json:"opened_at"`
}

// Editor is the optional document-editing capability.
type Editor interface {
	// Active returns the active document, or ErrNoDocument.
	Active(ctx context.Context) (*Document, error)

	// Open makes the document at the workspace-relative path the active
	// one.
	Open(ctx context.Context, path string) (*Document, error)

	// Save writes content into the active document.
	Save(ctx context.Context, content []byte) error

	// Close closes the active document. Closing with none open is not an
	// error.
	Close(ctx context.Context) error
}

// Command describes an executable environment command.
type Command struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Commander is the optional command-execution capability.
type Commander interface {
	Commands(ctx context.Context) ([]Command, error)
	Execute(ctx context.Context, name string, args []any) (any, error)
}

// MessageKind classifies a popup message.
type MessageKind string

const (
	MessageInfo    MessageKind = "info"
	MessageWarning MessageKind = "warn"
	MessageError   MessageKind = "error"
)

// Popups is the optional user-notification capability.
type Popups interface {
	ShowMessage(ctx context.Context, kind MessageKind, text string) error
}

// Deployer is the optional deployment capability. Deploy copies the named
// files (workspace-relative; empty means everything visible) to the named
// target and blocks until done.
type Deployer interface {
	Deploy(ctx context.Context, target string, files []string) error
}
