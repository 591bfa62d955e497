package internal

import (
	"log/slog"
	"net/http"

	"github.com/mkloubert/editgate/pkg/acl"
	"github.com/mkloubert/editgate/pkg/config"
	"github.com/mkloubert/editgate/pkg/hooks"
	"github.com/mkloubert/editgate/pkg/statestore"
)

// Option configures an App during New.
type Option func(*App)

// WithLogger sets the application logger. Defaults to a no-op logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *App) {
		if log != nil {
			a.logger = log
		}
	}
}

// WithPrefix changes the API path prefix. Defaults to "/api".
func WithPrefix(prefix string) Option {
	return func(a *App) {
		if prefix != "" {
			a.prefix = prefix
		}
	}
}

// WithRealm sets the realm sent in the WWW-Authenticate challenge.
func WithRealm(realm string) Option {
	return func(a *App) {
		if realm != "" {
			a.realm = realm
		}
	}
}

// WithHostName sets the environment name reported in response envelopes.
func WithHostName(name string) Option {
	return func(a *App) {
		a.hostName = name
	}
}

// WithLanguages sets the languages offered for Accept-Language matching.
// The first entry is the fallback.
func WithLanguages(languages []string) Option {
	return func(a *App) {
		a.languages = languages
	}
}

// WithAccounts sets the configured user accounts, in declaration order.
func WithAccounts(accounts []*acl.Account) Option {
	return func(a *App) {
		a.accounts = accounts
	}
}

// WithGuest enables unauthenticated access backed by the given account.
func WithGuest(guest *acl.Account) Option {
	return func(a *App) {
		a.guest = guest
	}
}

// WithPreparer sets the optional identity preparer.
func WithPreparer(p acl.Preparer) Option {
	return func(a *App) {
		a.preparer = p
	}
}

// WithValidator sets the optional request validator.
func WithValidator(v Validator) Option {
	return func(a *App) {
		a.validator = v
	}
}

// WithHookEmitter sets the hook emitter used for automatic and explicit
// hook emission. Without one, hooks are silently disabled.
func WithHookEmitter(em *hooks.Emitter) Option {
	return func(a *App) {
		a.emitter = em
	}
}

// WithModuleLoader sets the loader for custom endpoint scripts.
func WithModuleLoader(l ModuleLoader) Option {
	return func(a *App) {
		a.loader = l
	}
}

// WithEndpointRoutes sets the custom endpoint route table, in declaration
// order.
func WithEndpointRoutes(routes []config.Route) Option {
	return func(a *App) {
		a.routes = routes
	}
}

// WithModules registers built-in endpoint modules.
func WithModules(modules ...Module) Option {
	return func(a *App) {
		a.modules = append(a.modules, modules...)
	}
}

// WithEndpointState sets the process-wide endpoint-script state store.
// Defaults to an in-memory store.
func WithEndpointState(st statestore.Store[any]) Option {
	return func(a *App) {
		if st != nil {
			a.endpointState = st
		}
	}
}

// WithWorkspaceState sets the workspace-wide shared state store.
// Defaults to an in-memory store.
func WithWorkspaceState(st statestore.Store[any]) Option {
	return func(a *App) {
		if st != nil {
			a.workspaceState = st
		}
	}
}

// WithHealth enables health check endpoints.
func WithHealth(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithMiddleware appends global HTTP middleware, applied in order.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}
