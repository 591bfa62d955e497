package internal_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkloubert/editgate/internal"
	"github.com/mkloubert/editgate/pkg/config"
)

type fakeModule struct {
	name string
}

func (m *fakeModule) Name() string { return m.name }

func (m *fakeModule) Get(context.Context, *internal.Args) error { return nil }

type fakeEndpoint struct {
	methods map[string]bool
}

func (e *fakeEndpoint) Handles(method string) bool { return e.methods[method] }

func (e *fakeEndpoint) Invoke(context.Context, string, *internal.Args) error { return nil }

type fakeLoader struct {
	endpoints map[string]internal.Endpoint
	err       error
}

func (l *fakeLoader) Load(path string) (internal.Endpoint, error) {
	if l.err != nil {
		return nil, l.err
	}
	ep, ok := l.endpoints[path]
	if !ok {
		return nil, assert.AnError
	}
	return ep, nil
}

func boolPtr(b bool) *bool { return &b }

func statusOf(t *testing.T, err error) int {
	t.Helper()
	httpErr := internal.AsHTTPError(err)
	require.NotNil(t, httpErr)
	return httpErr.Code
}

func TestResolver_CustomRoutes(t *testing.T) {
	t.Parallel()

	t.Run("matching route wins over builtins", func(t *testing.T) {
		t.Parallel()

		loader := &fakeLoader{endpoints: map[string]internal.Endpoint{
			"hello.js": &fakeEndpoint{methods: map[string]bool{"get": true}},
		}}
		r, err := internal.NewResolver("/api",
			[]config.Route{{Pattern: "^/api/workspace", Script: "hello.js", Options: map[string]any{"x": 1}}},
			loader,
			[]internal.Module{&fakeModule{name: "workspace"}})
		require.NoError(t, err)

		res, err := r.Resolve(http.MethodGet, "/api/workspace/foo.txt")
		require.NoError(t, err)
		assert.Equal(t, "hello.js", res.Name)
		assert.Equal(t, "/api/workspace/foo.txt", res.Rest)
		assert.Equal(t, map[string]any{"x": 1}, res.Options)
	})

	t.Run("first matching route is authoritative", func(t *testing.T) {
		t.Parallel()

		loader := &fakeLoader{endpoints: map[string]internal.Endpoint{
			"first.js": &fakeEndpoint{methods: map[string]bool{"get": true}},
		}}
		r, err := internal.NewResolver("/api", []config.Route{
			{Pattern: "^/api/x", Script: "first.js"},
			{Pattern: "^/api/x", Script: "second.js"},
		}, loader, nil)
		require.NoError(t, err)

		res, err := r.Resolve(http.MethodGet, "/api/x")
		require.NoError(t, err)
		assert.Equal(t, "first.js", res.Name)
	})

	t.Run("empty pattern matches every path", func(t *testing.T) {
		t.Parallel()

		loader := &fakeLoader{endpoints: map[string]internal.Endpoint{
			"all.js": &fakeEndpoint{methods: map[string]bool{"get": true}},
		}}
		r, err := internal.NewResolver("/api",
			[]config.Route{{Script: "all.js"}},
			loader,
			[]internal.Module{&fakeModule{name: "workspace"}})
		require.NoError(t, err)

		res, err := r.Resolve(http.MethodGet, "/api/workspace")
		require.NoError(t, err)
		assert.Equal(t, "all.js", res.Name)
	})

	t.Run("load failure is 501, not a fall-through", func(t *testing.T) {
		t.Parallel()

		r, err := internal.NewResolver("/api",
			[]config.Route{{Pattern: "^/api/workspace", Script: "broken.js"}},
			&fakeLoader{err: assert.AnError},
			[]internal.Module{&fakeModule{name: "workspace"}})
		require.NoError(t, err)

		_, err = r.Resolve(http.MethodGet, "/api/workspace")
		assert.Equal(t, http.StatusNotImplemented, statusOf(t, err))
	})

	t.Run("missing method export is 501", func(t *testing.T) {
		t.Parallel()

		loader := &fakeLoader{endpoints: map[string]internal.Endpoint{
			"get-only.js": &fakeEndpoint{methods: map[string]bool{"get": true}},
		}}
		r, err := internal.NewResolver("/api",
			[]config.Route{{Pattern: "^/api/thing", Script: "get-only.js"}},
			loader, nil)
		require.NoError(t, err)

		_, err = r.Resolve(http.MethodPost, "/api/thing")
		assert.Equal(t, http.StatusNotImplemented, statusOf(t, err))
	})

	t.Run("inactive routes are skipped", func(t *testing.T) {
		t.Parallel()

		r, err := internal.NewResolver("/api",
			[]config.Route{{Pattern: "^/api/workspace", Script: "x.js", Active: boolPtr(false)}},
			&fakeLoader{err: assert.AnError},
			[]internal.Module{&fakeModule{name: "workspace"}})
		require.NoError(t, err)

		res, err := r.Resolve(http.MethodGet, "/api/workspace")
		require.NoError(t, err)
		assert.Equal(t, "workspace", res.Name)
	})

	t.Run("invalid pattern fails at startup", func(t *testing.T) {
		t.Parallel()

		_, err := internal.NewResolver("/api",
			[]config.Route{{Pattern: "([", Script: "x.js"}},
			nil, nil)
		assert.Error(t, err)
	})
}

func TestResolver_Builtins(t *testing.T) {
	t.Parallel()

	newResolver := func(t *testing.T) *internal.Resolver {
		t.Helper()
		r, err := internal.NewResolver("/api", nil, nil, []internal.Module{
			&fakeModule{name: ""},
			&fakeModule{name: "workspace"},
		})
		require.NoError(t, err)
		return r
	}

	t.Run("selector picks the module, rest carries the remainder", func(t *testing.T) {
		t.Parallel()

		res, err := newResolver(t).Resolve(http.MethodGet, "/api/workspace/src/main.go")
		require.NoError(t, err)
		assert.Equal(t, "workspace", res.Name)
		assert.Equal(t, "src/main.go", res.Rest)
		assert.Nil(t, res.Options)
	})

	t.Run("selector is sanitized before lookup", func(t *testing.T) {
		t.Parallel()

		res, err := newResolver(t).Resolve(http.MethodGet, "/api/Work-Space")
		require.NoError(t, err)
		assert.Equal(t, "workspace", res.Name)
	})

	t.Run("prefix alone resolves the root module", func(t *testing.T) {
		t.Parallel()

		res, err := newResolver(t).Resolve(http.MethodGet, "/api")
		require.NoError(t, err)
		assert.Equal(t, "root", res.Name)
		assert.Empty(t, res.Rest)
	})

	t.Run("unknown selector is 404", func(t *testing.T) {
		t.Parallel()

		_, err := newResolver(t).Resolve(http.MethodGet, "/api/nonsense")
		assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	})

	t.Run("unsupported method is 405", func(t *testing.T) {
		t.Parallel()

		_, err := newResolver(t).Resolve(http.MethodPost, "/api/workspace")
		assert.Equal(t, http.StatusMethodNotAllowed, statusOf(t, err))
	})
}
