package logger

import (
	"context"
	"log/slog"
)

// fanoutHandler duplicates log records to several destinations, e.g.
// stdout plus Sentry.
type fanoutHandler struct {
	targets []slog.Handler
}

func newMultiHandler(targets ...slog.Handler) slog.Handler {
	return &fanoutHandler{targets: targets}
}

// Enabled reports true when any destination would accept the level.
func (h *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, target := range h.targets {
		if target.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle delivers the record to every destination that accepts its level.
// Records are cloned per destination since handlers may retain them.
func (h *fanoutHandler) Handle(ctx context.Context, rec slog.Record) error {
	for _, target := range h.targets {
		if !target.Enabled(ctx, rec.Level) {
			continue
		}
		if err := target.Handle(ctx, rec.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.targets))
	for i, target := range h.targets {
		next[i] = target.WithAttrs(attrs)
	}
	return newMultiHandler(next...)
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.targets))
	for i, target := range h.targets {
		next[i] = target.WithGroup(name)
	}
	return newMultiHandler(next...)
}
