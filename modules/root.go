package modules

import (
	"context"
	"strings"
	"time"

	"github.com/mkloubert/editgate/internal"
	"github.com/mkloubert/editgate/pkg/acl"
	"github.com/mkloubert/editgate/pkg/host"
)

// Root answers the synthetic root resource of the API prefix with basic
// server and identity metadata.
type Root struct {
	env host.Environment
}

// NewRoot creates the root module.
func NewRoot(env host.Environment) *Root {
	return &Root{env: env}
}

// Name implements internal.Module. The empty name selects this module for
// requests with no path segments after the prefix.
func (*Root) Name() string { return "" }

// Get reports server time and, for authenticated non-guest callers, a
// "me" block describing the identity.
func (m *Root) Get(_ context.Context, args *internal.Args) error {
	data := map[string]any{
		"time":      time.Now().UTC().Format(time.RFC3339),
		"workspace": m.env.WorkspaceRoot(),
	}

	if !args.Identity.IsGuest() {
		data["me"] = meBlock(args.Identity)
	}

	args.Response.Data = data
	return nil
}

// meBlock summarizes an identity: account name plus variables, with
// ungranted capability flags elided since they are just defaults.
func meBlock(identity *acl.Identity) map[string]any {
	vars := make(map[string]any)
	for name, value := range identity.Vars() {
		if strings.HasPrefix(name, acl.VarPrefix) {
			if granted, ok := value.(bool); ok && !granted {
				continue
			}
		}
		vars[name] = value
	}

	me := map[string]any{"vars": vars}
	if acc := identity.Account(); acc != nil && acc.Name != "" {
		me["name"] = acc.Name
	}
	return me
}
