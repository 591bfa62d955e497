package modules

import (
	"github.com/mkloubert/editgate/internal"
	"github.com/mkloubert/editgate/pkg/host"
)

// All returns every built-in module wired to the given environment, ready
// to pass to the app. showDot globally overrides the per-account dot-file
// visibility rule.
func All(env host.Environment, showDot bool) []internal.Module {
	return []internal.Module{
		NewRoot(env),
		NewWorkspace(env, showDot),
		NewEditor(env, showDot),
		NewCommands(env),
		NewPopups(env),
		NewState(),
		NewDeploy(env),
	}
}
