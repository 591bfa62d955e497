package modules

import (
	"context"
	"errors"

	"github.com/mkloubert/editgate/internal"
	"github.com/mkloubert/editgate/pkg/acl"
	"github.com/mkloubert/editgate/pkg/host"
	"github.com/mkloubert/editgate/pkg/visibility"
)

// Editor exposes the environment's active document. Environments without
// the editing capability answer 410 Gone.
type Editor struct {
	env     host.Environment
	showDot bool
}

// NewEditor creates the editor module.
func NewEditor(env host.Environment, showDot bool) *Editor {
	return &Editor{env: env, showDot: showDot}
}

// Name implements internal.Module.
func (*Editor) Name() string { return "editor" }

func (m *Editor) editor(args *internal.Args) (host.Editor, bool) {
	ed, ok := m.env.(host.Editor)
	if !ok {
		args.SendGone()
	}
	return ed, ok
}

// Get returns the active document's metadata.
func (m *Editor) Get(ctx context.Context, args *internal.Args) error {
	ed, ok := m.editor(args)
	if !ok {
		return nil
	}

	doc, err := ed.Active(ctx)
	if err != nil {
		if errors.Is(err, host.ErrNoDocument) {
			args.SendNotFound()
			return nil
		}
		return err
	}

	args.Response.Data = doc
	return nil
}

// Post opens a document. The target must be visible to the caller;
// hidden and absent files are indistinguishable.
func (m *Editor) Post(ctx context.Context, args *internal.Args) error {
	ed, ok := m.editor(args)
	if !ok {
		return nil
	}
	if !args.Identity.Can(acl.CapOpen) {
		args.SendForbidden()
		return nil
	}

	var body struct {
		Path string `json:"path"`
	}
	if err := args.JSON(&body); err != nil || body.Path == "" {
		args.SendBadRequest("missing document path")
		return nil
	}

	policy := visibility.New(m.env.FS(), m.env.WorkspaceRoot(), args.Identity.Account())
	visible, err := policy.IsFileVisible(ctx, body.Path, m.showDot)
	if err != nil {
		return err
	}
	if !visible {
		args.SendNotFound()
		return nil
	}

	doc, err := ed.Open(ctx, body.Path)
	if err != nil {
		args.SendNotFound()
		return nil
	}

	args.Response.Data = doc
	return nil
}

// Patch saves the request body into the active document.
func (m *Editor) Patch(ctx context.Context, args *internal.Args) error {
	ed, ok := m.editor(args)
	if !ok {
		return nil
	}
	if !args.Identity.Can(acl.CapWrite) {
		args.SendForbidden()
		return nil
	}

	content, err := args.Body()
	if err != nil {
		return err
	}

	if err := ed.Save(ctx, content); err != nil {
		if errors.Is(err, host.ErrNoDocument) {
			args.SendNotFound()
			return nil
		}
		return err
	}

	args.Response.Data = map[string]any{"saved": true}
	return nil
}

// Delete closes the active document.
func (m *Editor) Delete(ctx context.Context, args *internal.Args) error {
	ed, ok := m.editor(args)
	if !ok {
		return nil
	}
	if !args.Identity.Can(acl.CapClose) {
		args.SendForbidden()
		return nil
	}

	if err := ed.Close(ctx); err != nil {
		return err
	}

	args.Response.Data = map[string]any{"closed": true}
	return nil
}
