package modules

import (
	"context"
	"mime"
	"path"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/mkloubert/editgate/internal"
	"github.com/mkloubert/editgate/pkg/acl"
	"github.com/mkloubert/editgate/pkg/host"
	"github.com/mkloubert/editgate/pkg/visibility"
)

// Workspace exposes the environment's file tree, filtered per caller by
// the visibility policy. Hidden and absent paths are both answered with
// 404 so clients cannot probe for existence.
type Workspace struct {
	env     host.Environment
	showDot bool
}

// NewWorkspace creates the workspace module. showDot globally overrides
// the per-account dot-file rule.
func NewWorkspace(env host.Environment, showDot bool) *Workspace {
	return &Workspace{env: env, showDot: showDot}
}

// Name implements internal.Module.
func (*Workspace) Name() string { return "workspace" }

// Get lists a visible directory or returns a visible file's content.
// Reading file content requires the open capability.
func (m *Workspace) Get(ctx context.Context, args *internal.Args) error {
	policy := visibility.New(m.env.FS(), m.env.WorkspaceRoot(), args.Identity.Account())
	rel := path.Clean("/" + args.Path)[1:] // normalized, no leading slash
	abs := filepath.Join(m.env.WorkspaceRoot(), filepath.FromSlash(rel))

	info, err := m.env.FS().Stat(abs)
	if err != nil {
		args.SendNotFound()
		return nil
	}

	if info.IsDir() {
		return m.listDir(ctx, args, policy, rel, abs)
	}
	return m.readFile(ctx, args, policy, rel, abs)
}

func (m *Workspace) listDir(ctx context.Context, args *internal.Args, policy *visibility.Policy, rel, abs string) error {
	visible, err := policy.IsDirVisible(ctx, abs, m.showDot)
	if err != nil {
		return err
	}
	if !visible {
		args.SendNotFound()
		return nil
	}

	entries, err := afero.ReadDir(m.env.FS(), abs)
	if err != nil {
		return err
	}

	dirs := make([]map[string]any, 0)
	files := make([]map[string]any, 0)
	for _, entry := range entries {
		child := filepath.Join(abs, entry.Name())
		if entry.IsDir() {
			ok, err := policy.IsDirVisible(ctx, child, m.showDot)
			if err != nil {
				return err
			}
			if ok {
				dirs = append(dirs, map[string]any{"name": entry.Name()})
			}
			continue
		}

		ok, err := policy.IsFileVisible(ctx, child, m.showDot)
		if err != nil {
			return err
		}
		if ok {
			files = append(files, map[string]any{
				"name": entry.Name(),
				"size": entry.Size(),
			})
		}
	}

	args.Response.Data = map[string]any{
		"path":  rel,
		"dirs":  dirs,
		"files": files,
	}
	return nil
}

func (m *Workspace) readFile(ctx context.Context, args *internal.Args, policy *visibility.Policy, rel, abs string) error {
	visible, err := policy.IsFileVisible(ctx, abs, m.showDot)
	if err != nil {
		return err
	}
	if !visible {
		args.SendNotFound()
		return nil
	}

	if !args.Identity.Can(acl.CapOpen) {
		args.SendForbidden()
		return nil
	}

	content, err := afero.ReadFile(m.env.FS(), abs)
	if err != nil {
		return err
	}

	contentType := mime.TypeByExtension(filepath.Ext(rel))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	args.SetContent(content, contentType)
	return nil
}
