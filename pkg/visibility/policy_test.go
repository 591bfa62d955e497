package visibility_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkloubert/editgate/pkg/acl"
	"github.com/mkloubert/editgate/pkg/visibility"
)

func newFs(t *testing.T) afero.Fs {
	t.Helper()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/work/src/sub", 0o755))
	require.NoError(t, fsys.MkdirAll("/work/.git/objects", 0o755))
	require.NoError(t, fsys.MkdirAll("/work/docs", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/work/src/main.go", []byte("package main"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/work/src/sub/util.go", []byte("package sub"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/work/src/.env", []byte("SECRET=1"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/work/.git/config", []byte("[core]"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/work/docs/readme.md", []byte("# hi"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/outside.txt", []byte("nope"), 0o644))
	return fsys
}

func TestPolicy_IsDirVisible(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("root is always visible", func(t *testing.T) {
		t.Parallel()

		pol := visibility.New(newFs(t), "/work", &acl.Account{})
		ok, err := pol.IsDirVisible(ctx, "/work", false)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("plain subdirectory", func(t *testing.T) {
		t.Parallel()

		pol := visibility.New(newFs(t), "/work", &acl.Account{})
		ok, err := pol.IsDirVisible(ctx, "src/sub", false)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("dot directory hidden by default", func(t *testing.T) {
		t.Parallel()

		pol := visibility.New(newFs(t), "/work", &acl.Account{})

		ok, err := pol.IsDirVisible(ctx, ".git", false)
		require.NoError(t, err)
		assert.False(t, ok)

		// Descendants of an invisible directory are invisible too.
		ok, err = pol.IsDirVisible(ctx, ".git/objects", false)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("dot directory with account opt-in", func(t *testing.T) {
		t.Parallel()

		pol := visibility.New(newFs(t), "/work", &acl.Account{WithDot: true})
		ok, err := pol.IsDirVisible(ctx, ".git/objects", false)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("dot directory with caller override", func(t *testing.T) {
		t.Parallel()

		pol := visibility.New(newFs(t), "/work", &acl.Account{})
		ok, err := pol.IsDirVisible(ctx, ".git", true)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("missing directory", func(t *testing.T) {
		t.Parallel()

		pol := visibility.New(newFs(t), "/work", &acl.Account{})
		ok, err := pol.IsDirVisible(ctx, "nope", false)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("outside the root", func(t *testing.T) {
		t.Parallel()

		pol := visibility.New(newFs(t), "/work", &acl.Account{})
		ok, err := pol.IsDirVisible(ctx, "../", false)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		canceled, cancel := context.WithCancel(context.Background())
		cancel()

		pol := visibility.New(newFs(t), "/work", &acl.Account{})
		_, err := pol.IsDirVisible(canceled, "src", false)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestPolicy_IsFileVisible(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("default include matches everything", func(t *testing.T) {
		t.Parallel()

		pol := visibility.New(newFs(t), "/work", &acl.Account{})
		ok, err := pol.IsFileVisible(ctx, "src/main.go", false)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("include patterns limit matches", func(t *testing.T) {
		t.Parallel()

		acc := &acl.Account{Files: []string{"**/*.md"}}
		pol := visibility.New(newFs(t), "/work", acc)

		ok, err := pol.IsFileVisible(ctx, "docs/readme.md", false)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = pol.IsFileVisible(ctx, "src/main.go", false)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("exclude wins over include", func(t *testing.T) {
		t.Parallel()

		acc := &acl.Account{
			Files:   []string{"**"},
			Exclude: []string{"src/sub/**"},
		}
		pol := visibility.New(newFs(t), "/work", acc)

		ok, err := pol.IsFileVisible(ctx, "src/sub/util.go", false)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = pol.IsFileVisible(ctx, "src/main.go", false)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("file in hidden dot directory", func(t *testing.T) {
		t.Parallel()

		pol := visibility.New(newFs(t), "/work", &acl.Account{})
		ok, err := pol.IsFileVisible(ctx, ".git/config", false)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("dot file is glob matchable", func(t *testing.T) {
		t.Parallel()

		pol := visibility.New(newFs(t), "/work", &acl.Account{})
		ok, err := pol.IsFileVisible(ctx, "src/.env", false)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("directories are not files", func(t *testing.T) {
		t.Parallel()

		pol := visibility.New(newFs(t), "/work", &acl.Account{})
		ok, err := pol.IsFileVisible(ctx, "src", false)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("escape via dot-dot stays invisible", func(t *testing.T) {
		t.Parallel()

		pol := visibility.New(newFs(t), "/work", &acl.Account{})
		ok, err := pol.IsFileVisible(ctx, "../outside.txt", false)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		pol := visibility.New(newFs(t), "/work", &acl.Account{})
		ok, err := pol.IsFileVisible(ctx, "src/gone.go", false)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("duplicate patterns are harmless", func(t *testing.T) {
		t.Parallel()

		acc := &acl.Account{Files: []string{"**/*.go", "**/*.go", " "}}
		pol := visibility.New(newFs(t), "/work", acc)

		ok, err := pol.IsFileVisible(ctx, "src/main.go", false)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
