package host_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkloubert/editgate/pkg/host"
)

func newLocal(t *testing.T, opts ...host.LocalOption) (*host.Local, afero.Fs) {
	t.Helper()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/work/src", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/work/src/main.go", []byte("package main"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/work/readme.md", []byte("# hi"), 0o644))
	return host.NewLocal(fsys, "/work", opts...), fsys
}

func TestLocal_Editor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("open save close", func(t *testing.T) {
		t.Parallel()

		l, fsys := newLocal(t)

		_, err := l.Active(ctx)
		assert.ErrorIs(t, err, host.ErrNoDocument)

		doc, err := l.Open(ctx, "src/main.go")
		require.NoError(t, err)
		assert.Equal(t, "src/main.go", doc.Path)

		active, err := l.Active(ctx)
		require.NoError(t, err)
		assert.Equal(t, "src/main.go", active.Path)

		require.NoError(t, l.Save(ctx, []byte("package main // v2")))
		content, err := afero.ReadFile(fsys, "/work/src/main.go")
		require.NoError(t, err)
		assert.Equal(t, "package main // v2", string(content))

		require.NoError(t, l.Close(ctx))
		_, err = l.Active(ctx)
		assert.ErrorIs(t, err, host.ErrNoDocument)
	})

	t.Run("save without active document", func(t *testing.T) {
		t.Parallel()

		l, _ := newLocal(t)
		assert.ErrorIs(t, l.Save(ctx, []byte("x")), host.ErrNoDocument)
	})

	t.Run("open rejects directories and escapes", func(t *testing.T) {
		t.Parallel()

		l, _ := newLocal(t)

		_, err := l.Open(ctx, "src")
		assert.Error(t, err)

		_, err = l.Open(ctx, "../etc/passwd")
		assert.Error(t, err)
	})
}

func TestLocal_Commands(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	l, _ := newLocal(t,
		host.WithCommand("echo", "returns its arguments",
			func(_ context.Context, args []any) (any, error) { return args, nil }),
		host.WithCommand("version", "", nil), // nil fn is ignored
	)

	cmds, err := l.Commands(ctx)
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Equal(t, "echo", cmds[0].Name)

	res, err := l.Execute(ctx, "echo", []any{"a", 1})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", 1}, res)

	_, err = l.Execute(ctx, "nope", nil)
	assert.ErrorIs(t, err, host.ErrUnknownCommand)
}

func TestLocal_Deploy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("whole workspace", func(t *testing.T) {
		t.Parallel()

		l, fsys := newLocal(t, host.WithDeployTarget("prod", "/deploy"))

		require.NoError(t, l.Deploy(ctx, "prod", nil))

		content, err := afero.ReadFile(fsys, "/deploy/src/main.go")
		require.NoError(t, err)
		assert.Equal(t, "package main", string(content))

		_, err = fsys.Stat("/deploy/readme.md")
		assert.NoError(t, err)
	})

	t.Run("selected files", func(t *testing.T) {
		t.Parallel()

		l, fsys := newLocal(t, host.WithDeployTarget("prod", "/deploy"))

		require.NoError(t, l.Deploy(ctx, "prod", []string{"readme.md"}))

		_, err := fsys.Stat("/deploy/readme.md")
		assert.NoError(t, err)
		_, err = fsys.Stat("/deploy/src/main.go")
		assert.Error(t, err)
	})

	t.Run("unknown target", func(t *testing.T) {
		t.Parallel()

		l, _ := newLocal(t)
		assert.ErrorIs(t, l.Deploy(ctx, "prod", nil), host.ErrUnknownTarget)
	})
}
