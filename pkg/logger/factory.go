package logger

import (
	"io"
	"log/slog"
	"os"
)

// Option configures the logger factory.
type Option func(*options)

type options struct {
	level  slog.Level
	output io.Writer
}

func defaultOptions() *options {
	return &options{
		level:  slog.LevelInfo,
		output: os.Stdout,
	}
}

// WithLevel sets the minimum log level.
// Default: Info.
func WithLevel(level slog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithOutput sets the log destination.
// Default: stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.output = w
		}
	}
}

// New creates a JSON-formatted logger for the named component with optional
// context extractors. The component name is attached to every record so a
// single process's dispatcher, hook and script logs can be filtered apart.
func New(component string, extractors []ContextExtractor, opts ...Option) *slog.Logger {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	h := slog.NewJSONHandler(o.output, &slog.HandlerOptions{
		Level: o.level,
	})

	decorated := NewLogHandlerDecorator(h, extractors...)
	if component != "" {
		decorated = decorated.WithAttrs([]slog.Attr{slog.String("component", component)})
	}
	return slog.New(decorated)
}
