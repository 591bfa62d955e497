package editgate

import (
	"github.com/mkloubert/editgate/internal"
)

// Type aliases - public API
type (
	// App orchestrates the gateway lifecycle: routing, the dispatch
	// pipeline, and graceful shutdown.
	App = internal.App

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// Module is a built-in endpoint module.
	Module = internal.Module

	// Endpoint is an externally loaded handler unit.
	Endpoint = internal.Endpoint

	// ModuleLoader loads custom endpoints by script path.
	ModuleLoader = internal.ModuleLoader

	// Validator may veto a request before route resolution.
	Validator = internal.Validator

	// Args is what a handler invocation receives.
	Args = internal.Args

	// Response is the staged result of a handler.
	Response = internal.Response

	// HTTPError is a status-coded dispatch failure.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// Per-method module interfaces.
	Getter  = internal.Getter
	Poster  = internal.Poster
	Putter  = internal.Putter
	Patcher = internal.Patcher
	Deleter = internal.Deleter
)

// DefaultPrefix is the path prefix requests are dispatched under.
const DefaultPrefix = internal.DefaultPrefix

// AppName and Version identify the gateway.
const (
	AppName = internal.AppName
	Version = internal.Version
)

// New assembles the application from options.
var New = internal.New

// App options.
var (
	WithLogger         = internal.WithLogger
	WithPrefix         = internal.WithPrefix
	WithRealm          = internal.WithRealm
	WithHostName       = internal.WithHostName
	WithLanguages      = internal.WithLanguages
	WithAccounts       = internal.WithAccounts
	WithGuest          = internal.WithGuest
	WithPreparer       = internal.WithPreparer
	WithValidator      = internal.WithValidator
	WithHookEmitter    = internal.WithHookEmitter
	WithModuleLoader   = internal.WithModuleLoader
	WithEndpointRoutes = internal.WithEndpointRoutes
	WithModules        = internal.WithModules
	WithEndpointState  = internal.WithEndpointState
	WithWorkspaceState = internal.WithWorkspaceState
	WithHealth         = internal.WithHealth
	WithMiddleware     = internal.WithMiddleware
)

// Health options.
var (
	WithLivenessPath   = internal.WithLivenessPath
	WithReadinessPath  = internal.WithReadinessPath
	WithReadinessCheck = internal.WithReadinessCheck
)

// Run options.
var (
	Logger          = internal.Logger
	ShutdownTimeout = internal.ShutdownTimeout
	ShutdownHook    = internal.ShutdownHook
	WithContext     = internal.WithContext
	WithTLSConfig   = internal.WithTLSConfig
)

// NewScriptLoader adapts the embedded scripting host to ModuleLoader.
var NewScriptLoader = internal.NewScriptLoader

// LoadTLSConfig builds a tls.Config from the configuration surface.
var LoadTLSConfig = internal.LoadTLSConfig

// Error constructors for the dispatch taxonomy.
var (
	NewHTTPError        = internal.NewHTTPError
	ErrBadRequest       = internal.ErrBadRequest
	ErrUnauthorized     = internal.ErrUnauthorized
	ErrForbidden        = internal.ErrForbidden
	ErrNotFound         = internal.ErrNotFound
	ErrMethodNotAllowed = internal.ErrMethodNotAllowed
	ErrConflict         = internal.ErrConflict
	ErrGone             = internal.ErrGone
	ErrInternal         = internal.ErrInternal
	ErrNotImplemented   = internal.ErrNotImplemented
	AsHTTPError         = internal.AsHTTPError
	WithError           = internal.WithError
)

// SanitizeSegment normalizes an endpoint selector to its module name.
var SanitizeSegment = internal.SanitizeSegment
