package modules

import (
	"context"

	"github.com/mkloubert/editgate/internal"
	"github.com/mkloubert/editgate/pkg/host"
)

// Popups shows messages in the host environment.
type Popups struct {
	env host.Environment
}

// NewPopups creates the popups module.
func NewPopups(env host.Environment) *Popups {
	return &Popups{env: env}
}

// Name implements internal.Module.
func (*Popups) Name() string { return "popups" }

// Post shows a message popup. The kind defaults to info.
func (m *Popups) Post(ctx context.Context, args *internal.Args) error {
	p, ok := m.env.(host.Popups)
	if !ok {
		args.SendGone()
		return nil
	}

	var body struct {
		Message string `json:"message"`
		Kind    string `json:"kind"`
	}
	if err := args.JSON(&body); err != nil || body.Message == "" {
		args.SendBadRequest("missing popup message")
		return nil
	}

	kind := host.MessageInfo
	switch host.MessageKind(body.Kind) {
	case host.MessageWarning:
		kind = host.MessageWarning
	case host.MessageError:
		kind = host.MessageError
	}

	if err := p.ShowMessage(ctx, kind, body.Message); err != nil {
		return err
	}

	args.Response.Data = map[string]any{"shown": true}
	return nil
}
