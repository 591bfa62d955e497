package internal

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mkloubert/editgate/pkg/acl"
	"github.com/mkloubert/editgate/pkg/config"
	"github.com/mkloubert/editgate/pkg/health"
	"github.com/mkloubert/editgate/pkg/hooks"
	"github.com/mkloubert/editgate/pkg/logger"
	"github.com/mkloubert/editgate/pkg/statestore"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// DefaultPrefix is the path prefix all API traffic lives under.
const DefaultPrefix = "/api"

// App wires the dispatch pipeline into an HTTP server. It is immutable
// after creation; all configuration happens through options passed to New.
type App struct {
	router     chi.Router
	dispatcher *Dispatcher
	logger     *slog.Logger

	prefix    string
	realm     string
	hostName  string
	languages []string

	accounts  []*acl.Account
	guest     *acl.Account
	preparer  acl.Preparer
	validator Validator
	emitter   *hooks.Emitter

	loader  ModuleLoader
	routes  []config.Route
	modules []Module

	endpointState  statestore.Store[any]
	workspaceState statestore.Store[any]

	healthConfig *healthConfig
	middlewares  []func(http.Handler) http.Handler
}

// New assembles the application. It fails if a configured endpoint route
// carries an invalid pattern, so broken route tables surface at startup
// rather than per request.
func New(opts ...Option) (*App, error) {
	a := &App{
		router:         chi.NewRouter(),
		logger:         logger.NewNope(),
		prefix:         DefaultPrefix,
		realm:          config.DefaultRealm,
		endpointState:  statestore.NewMemory[any](),
		workspaceState: statestore.NewMemory[any](),
	}

	for _, opt := range opts {
		opt(a)
	}

	resolver, err := NewResolver(a.prefix, a.routes, a.loader, a.modules)
	if err != nil {
		return nil, err
	}

	a.dispatcher = &Dispatcher{
		resolver:       resolver,
		accounts:       acl.NewResolver(a.accounts, a.guest),
		preparer:       a.preparer,
		validator:      a.validator,
		emitter:        a.emitter,
		env:            newEnvBuilder(a.hostName, a.languages),
		logger:         a.logger,
		realm:          a.realm,
		endpointState:  a.endpointState,
		workspaceState: a.workspaceState,
	}

	a.setupRoutes()
	return a, nil
}

// Router returns the underlying chi.Router.
func (a *App) Router() chi.Router {
	return a.router
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	shutdownHooks := cfg.shutdownHooks
	if a.emitter != nil {
		// Drain in-flight hook handlers before the process exits.
		shutdownHooks = append(shutdownHooks, func(context.Context) error {
			return a.emitter.Close()
		})
	}

	return runServer(runtimeConfig{
		handler:         a.router,
		address:         addr,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		shutdownHooks:   shutdownHooks,
		baseCtx:         cfg.baseCtx,
		tlsConfig:       cfg.tlsConfig,
	})
}

// setupRoutes mounts middleware, health endpoints and the API dispatcher.
// Everything outside the API prefix and health paths is a bare 404.
func (a *App) setupRoutes() {
	for _, mw := range a.middlewares {
		a.router.Use(mw)
	}

	if a.healthConfig != nil {
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath, health.ReadinessHandler(a.healthConfig.checks))
	}

	a.router.Handle(a.prefix, a.dispatcher)
	a.router.Handle(a.prefix+"/*", a.dispatcher)

	a.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during the readiness probe.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}
