package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkloubert/editgate/internal"
	"github.com/mkloubert/editgate/pkg/acl"
	"github.com/mkloubert/editgate/pkg/config"
	"github.com/mkloubert/editgate/pkg/scripting"
)

// newScriptApp builds an app whose custom routes are backed by in-memory
// scripts under /scripts.
func newScriptApp(t *testing.T, files map[string]string, routes []config.Route) *internal.App {
	t.Helper()

	fsys := afero.NewMemMapFs()
	for path, src := range files {
		require.NoError(t, afero.WriteFile(fsys, path, []byte(src), 0o644))
	}
	host := scripting.NewHost(fsys, "/scripts")

	app, err := internal.New(
		internal.WithGuest(&acl.Account{}),
		internal.WithModuleLoader(internal.NewScriptLoader(host)),
		internal.WithEndpointRoutes(routes))
	require.NoError(t, err)
	return app
}

func TestScriptEndpoint_StateIsolation(t *testing.T) {
	t.Parallel()

	app := newScriptApp(t, map[string]string{
		"/scripts/writer.js": `
			exports.get = function (args) {
				if (args.state.has("owner")) {
					return "again";
				}
				args.state.set("owner", "writer");
				return "first";
			};
		`,
		"/scripts/reader.js": `
			exports.get = function (args) {
				return { seen: args.state.has("owner"), value: args.state.get("owner") };
			};
		`,
	}, []config.Route{
		{Pattern: "^/api/write$", Script: "writer.js"},
		{Pattern: "^/api/read$", Script: "reader.js"},
	})

	// The writer sees its own keys across invocations.
	env := decodeEnvelope(t, do(app, httptest.NewRequest(http.MethodGet, "/api/write", nil)))
	assert.Equal(t, "first", env.Data)
	env = decodeEnvelope(t, do(app, httptest.NewRequest(http.MethodGet, "/api/write", nil)))
	assert.Equal(t, "again", env.Data)

	// Another script sharing the endpoint store never sees them.
	env = decodeEnvelope(t, do(app, httptest.NewRequest(http.MethodGet, "/api/read", nil)))
	assert.Equal(t, map[string]any{"seen": false, "value": nil}, env.Data)
}

func TestScriptEndpoint_SendShortcuts(t *testing.T) {
	t.Parallel()

	t.Run("sendError stages a 500 envelope", func(t *testing.T) {
		t.Parallel()

		app := newScriptApp(t, map[string]string{
			"/scripts/fail.js": `
				exports.get = function (args) {
					args.sendError("backing store gone");
				};
			`,
		}, []config.Route{{Pattern: "^/api/fail$", Script: "fail.js"}})

		rec := do(app, httptest.NewRequest(http.MethodGet, "/api/fail", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		env := decodeEnvelope(t, rec)
		assert.Equal(t, http.StatusInternalServerError, env.Code)
		assert.Equal(t, "backing store gone", env.Msg)
	})

	t.Run("disableCompression keeps the body identity-encoded", func(t *testing.T) {
		t.Parallel()

		app := newScriptApp(t, map[string]string{
			"/scripts/dump.js": `
				exports.get = function (args) {
					args.disableCompression();
					return "editing is fun ".repeat(200);
				};
			`,
		}, []config.Route{{Pattern: "^/api/dump$", Script: "dump.js"}})

		req := httptest.NewRequest(http.MethodGet, "/api/dump", nil)
		req.Header.Set("Accept-Encoding", "gzip, deflate")
		rec := do(app, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Content-Encoding"))
	})
}
