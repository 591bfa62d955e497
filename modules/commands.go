package modules

import (
	"context"
	"errors"

	"github.com/mkloubert/editgate/internal"
	"github.com/mkloubert/editgate/pkg/acl"
	"github.com/mkloubert/editgate/pkg/host"
)

// Commands lists and executes environment commands.
type Commands struct {
	env host.Environment
}

// NewCommands creates the commands module.
func NewCommands(env host.Environment) *Commands {
	return &Commands{env: env}
}

// Name implements internal.Module.
func (*Commands) Name() string { return "commands" }

func (m *Commands) commander(args *internal.Args) (host.Commander, bool) {
	c, ok := m.env.(host.Commander)
	if !ok {
		args.SendGone()
	}
	return c, ok
}

// Get lists the commands the environment offers.
func (m *Commands) Get(ctx context.Context, args *internal.Args) error {
	c, ok := m.commander(args)
	if !ok {
		return nil
	}

	cmds, err := c.Commands(ctx)
	if err != nil {
		return err
	}

	args.Response.Data = map[string]any{"commands": cmds}
	return nil
}

// Post executes a named command. A malformed body or missing command name
// is a 400; an unknown command is a 404.
func (m *Commands) Post(ctx context.Context, args *internal.Args) error {
	c, ok := m.commander(args)
	if !ok {
		return nil
	}
	if !args.Identity.Can(acl.CapExecute) {
		args.SendForbidden()
		return nil
	}

	var body struct {
		Command string `json:"command"`
		Args    []any  `json:"args"`
	}
	if err := args.JSON(&body); err != nil || body.Command == "" {
		args.SendBadRequest("missing command name")
		return nil
	}

	result, err := c.Execute(ctx, body.Command, body.Args)
	if err != nil {
		if errors.Is(err, host.ErrUnknownCommand) {
			args.SendNotFound()
			return nil
		}
		return err
	}

	args.Response.Data = map[string]any{
		"command": body.Command,
		"result":  result,
	}
	return nil
}
