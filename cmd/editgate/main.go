// Command editgate serves a workspace directory as a REST API.
//
// The configuration file controls accounts, custom endpoints, hooks,
// TLS, and the state store backend. Values in the file may reference
// environment variables with ${VAR} syntax.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/mkloubert/editgate"
	"github.com/mkloubert/editgate/middlewares"
	"github.com/mkloubert/editgate/modules"
	"github.com/mkloubert/editgate/pkg/config"
	"github.com/mkloubert/editgate/pkg/hooks"
	"github.com/mkloubert/editgate/pkg/host"
	"github.com/mkloubert/editgate/pkg/logger"
	"github.com/mkloubert/editgate/pkg/scripting"
)

func main() {
	configPath := flag.String("config", "editgate.yaml", "path to the configuration file")
	workspace := flag.String("workspace", ".", "workspace directory to serve")
	flag.Parse()

	if err := run(*configPath, *workspace); err != nil {
		fmt.Fprintln(os.Stderr, "editgate:", err)
		os.Exit(1)
	}
}

func run(configPath, workspace string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	root, err := filepath.Abs(workspace)
	if err != nil {
		return fmt.Errorf("resolve workspace %s: %w", workspace, err)
	}

	log := logger.NewWithSentry(logger.SentryConfig{
		DSN:         os.Getenv("SENTRY_DSN"),
		Environment: os.Getenv("SENTRY_ENVIRONMENT"),
		MinLevel:    slog.LevelWarn,
	}, "editgate", middlewares.RequestIDExtractor())

	ctx := context.Background()
	fsys := afero.NewOsFs()

	stores, err := newStores(ctx, cfg)
	if err != nil {
		return err
	}

	hostOpts := []scripting.HostOption{scripting.WithLogger(log)}
	if cfg.ScriptTimeout > 0 {
		hostOpts = append(hostOpts, scripting.WithTimeout(cfg.ScriptTimeout))
	}
	scriptHost := scripting.NewHost(fsys, root, hostOpts...)

	emitter := hooks.NewEmitter(
		hooks.WithLogger(log),
		hooks.WithGlobalState(stores.global),
	)
	for pattern, targets := range cfg.Hooks {
		for _, target := range targets {
			script, err := scriptHost.Load(target.Script)
			if err != nil {
				return fmt.Errorf("hook %s: %w", pattern, err)
			}
			err = emitter.Register(pattern, scripting.NewHookHandler(script),
				hooks.WithState(stores.forScript(target.Script)))
			if err != nil {
				return fmt.Errorf("hook %s: %w", pattern, err)
			}
		}
	}

	env := host.NewLocal(fsys, root,
		host.WithName("local"),
		host.WithLocalLogger(log),
	)

	opts := []editgate.Option{
		editgate.WithLogger(log),
		editgate.WithRealm(cfg.Realm),
		editgate.WithAccounts(cfg.Accounts),
		editgate.WithGuest(cfg.Guest.GuestAccount()),
		editgate.WithLanguages(cfg.Languages),
		editgate.WithModules(modules.All(env, cfg.ShowDotfiles)...),
		editgate.WithModuleLoader(editgate.NewScriptLoader(scriptHost)),
		editgate.WithEndpointRoutes(cfg.Endpoints),
		editgate.WithHookEmitter(emitter),
		editgate.WithEndpointState(stores.endpoint),
		editgate.WithWorkspaceState(stores.workspace),
		editgate.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(middlewares.WithRecoverLogger(log)),
			middlewares.Timeout(60*time.Second),
		),
		editgate.WithHealth(stores.healthOptions()...),
	}

	if cfg.Validator != "" {
		script, err := scriptHost.Load(cfg.Validator)
		if err != nil {
			return fmt.Errorf("validator: %w", err)
		}
		opts = append(opts, editgate.WithValidator(
			scripting.NewValidator(script, stores.forScript(cfg.Validator), stores.global)))
	}
	if cfg.Preparer != "" {
		script, err := scriptHost.Load(cfg.Preparer)
		if err != nil {
			return fmt.Errorf("preparer: %w", err)
		}
		opts = append(opts, editgate.WithPreparer(
			scripting.NewPreparer(script, stores.forScript(cfg.Preparer), stores.global)))
	}

	app, err := editgate.New(opts...)
	if err != nil {
		return err
	}

	runOpts := []editgate.RunOption{
		editgate.Logger(log),
		editgate.ShutdownTimeout(30 * time.Second),
	}
	if cfg.TLS != nil {
		tlsCfg, err := editgate.LoadTLSConfig(cfg.TLS)
		if err != nil {
			return err
		}
		runOpts = append(runOpts, editgate.WithTLSConfig(tlsCfg))
	}
	for _, hook := range stores.shutdown {
		runOpts = append(runOpts, editgate.ShutdownHook(hook))
	}

	log.Info("starting server",
		"port", cfg.Port,
		"workspace", root,
		"tls", cfg.TLS != nil,
	)

	return app.Run(fmt.Sprintf(":%d", cfg.Port), runOpts...)
}
