package host

import "log/slog"

// LocalOption configures a Local environment.
type LocalOption func(*Local)

// WithName sets the environment name reported in response envelopes.
func WithName(name string) LocalOption {
	return func(l *Local) {
		if name != "" {
			l.name = name
		}
	}
}

// WithLocalLogger sets the logger used for popups and diagnostics.
func WithLocalLogger(log *slog.Logger) LocalOption {
	return func(l *Local) {
		if log != nil {
			l.log = log
		}
	}
}

// WithCommand registers an executable command.
func WithCommand(name, description string, fn CommandFunc) LocalOption {
	return func(l *Local) {
		if name != "" && fn != nil {
			l.commands[name] = localCommand{description: description, fn: fn}
		}
	}
}

// WithDeployTarget maps a deploy target name to a destination directory.
func WithDeployTarget(name, dir string) LocalOption {
	return func(l *Local) {
		if name != "" && dir != "" {
			l.targets[name] = dir
		}
	}
}
