package scripting

import (
	"log/slog"
	"time"
)

// HostOption configures a Host.
type HostOption func(*Host)

// WithLogger sets the logger used for script log() output and failures.
func WithLogger(log *slog.Logger) HostOption {
	return func(h *Host) {
		if log != nil {
			h.log = log
		}
	}
}

// WithTimeout sets the per-invocation execution timeout.
func WithTimeout(d time.Duration) HostOption {
	return func(h *Host) {
		if d > 0 {
			h.timeout = d
		}
	}
}
