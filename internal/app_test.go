package internal_test

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkloubert/editgate/internal"
	"github.com/mkloubert/editgate/pkg/acl"
	"github.com/mkloubert/editgate/pkg/hooks"
)

// echoModule exercises the envelope, raw-content, suppression and panic
// paths depending on the sub-path it is asked for.
type echoModule struct{}

func (m *echoModule) Name() string { return "echo" }

func (m *echoModule) Get(_ context.Context, args *internal.Args) error {
	switch args.Path {
	case "raw":
		args.Response.Code = http.StatusOK
		args.SetContent([]byte("plain text"), "text/plain; charset=utf-8")
	case "quiet":
		args.Response.Data = "quiet"
		args.DoNotEmitHook()
	case "forbidden":
		args.SendForbidden()
	case "boom":
		panic("broken handler")
	case "big":
		args.Response.Data = strings.Repeat("editing is fun ", 200)
	case "big-plain":
		args.Response.Data = strings.Repeat("editing is fun ", 200)
		args.DisableCompression()
	case "fail":
		args.SendError("storage unavailable")
	default:
		args.Response.Data = map[string]any{"path": args.Path}
	}
	return nil
}

func (m *echoModule) Post(_ context.Context, args *internal.Args) error {
	body, err := args.Body()
	if err != nil {
		return err
	}
	args.Response.Data = string(body)
	return nil
}

type vetoValidator struct {
	status int
	allow  bool
}

func (v *vetoValidator) Validate(_ context.Context, req *acl.ValidationRequest) (bool, error) {
	if v.status != 0 {
		req.StatusCode = v.status
	}
	return v.allow, nil
}

func newTestApp(t *testing.T, opts ...internal.Option) *internal.App {
	t.Helper()
	opts = append([]internal.Option{internal.WithModules(&echoModule{})}, opts...)
	app, err := internal.New(opts...)
	require.NoError(t, err)
	return app
}

func do(app *internal.App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) internal.Envelope {
	t.Helper()
	var env internal.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestApp_Dispatch(t *testing.T) {
	t.Parallel()

	t.Run("guest request gets the JSON envelope", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, internal.WithGuest(&acl.Account{}))
		rec := do(app, httptest.NewRequest(http.MethodGet, "/api/echo/hello", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "editgate/0.1.0", rec.Header().Get("Server"))
		assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

		env := decodeEnvelope(t, rec)
		assert.Equal(t, http.StatusOK, env.Code)
		assert.Equal(t, "editgate", env.Env.App.Name)
		assert.NotEmpty(t, env.Env.Session)
		assert.Equal(t, map[string]any{"path": "hello"}, env.Data)
	})

	t.Run("session id is stable across requests", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, internal.WithGuest(&acl.Account{}))
		first := decodeEnvelope(t, do(app, httptest.NewRequest(http.MethodGet, "/api/echo", nil)))
		second := decodeEnvelope(t, do(app, httptest.NewRequest(http.MethodGet, "/api/echo", nil)))
		assert.Equal(t, first.Env.Session, second.Env.Session)
	})

	t.Run("language matches Accept-Language against the configured list", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t,
			internal.WithGuest(&acl.Account{}),
			internal.WithLanguages([]string{"en", "de"}))

		req := httptest.NewRequest(http.MethodGet, "/api/echo", nil)
		req.Header.Set("Accept-Language", "de-DE,de;q=0.9")
		env := decodeEnvelope(t, do(app, req))
		assert.True(t, strings.HasPrefix(env.Env.Lang, "de"), env.Env.Lang)

		// Nothing usable falls back to the first configured language.
		req = httptest.NewRequest(http.MethodGet, "/api/echo", nil)
		req.Header.Set("Accept-Language", "zz")
		env = decodeEnvelope(t, do(app, req))
		assert.Equal(t, "en", env.Env.Lang)
	})

	t.Run("raw content bypasses the envelope", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, internal.WithGuest(&acl.Account{}))
		rec := do(app, httptest.NewRequest(http.MethodGet, "/api/echo/raw", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, "plain text", rec.Body.String())
	})

	t.Run("gzip negotiation compresses large payloads", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, internal.WithGuest(&acl.Account{}))
		req := httptest.NewRequest(http.MethodGet, "/api/echo/big", nil)
		req.Header.Set("Accept-Encoding", "gzip, deflate")
		rec := do(app, req)

		require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

		zr, err := gzip.NewReader(rec.Body)
		require.NoError(t, err)
		raw, err := io.ReadAll(zr)
		require.NoError(t, err)

		var env internal.Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		assert.Equal(t, http.StatusOK, env.Code)
	})

	t.Run("handlers may opt out of compression", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, internal.WithGuest(&acl.Account{}))
		req := httptest.NewRequest(http.MethodGet, "/api/echo/big-plain", nil)
		req.Header.Set("Accept-Encoding", "gzip, deflate")
		rec := do(app, req)

		assert.Empty(t, rec.Header().Get("Content-Encoding"))

		env := decodeEnvelope(t, rec)
		assert.Equal(t, http.StatusOK, env.Code)
	})

	t.Run("handler-staged 500 keeps the envelope with its message", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, internal.WithGuest(&acl.Account{}))
		rec := do(app, httptest.NewRequest(http.MethodGet, "/api/echo/fail", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, http.StatusInternalServerError, env.Code)
		assert.Equal(t, "storage unavailable", env.Msg)
		assert.Nil(t, env.Data)
	})

	t.Run("uncompressible responses stay identity", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, internal.WithGuest(&acl.Account{}))
		req := httptest.NewRequest(http.MethodGet, "/api/echo/raw", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rec := do(app, req)

		assert.Empty(t, rec.Header().Get("Content-Encoding"))
		assert.Equal(t, "plain text", rec.Body.String())
	})

	t.Run("unknown module is a bodyless 404", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, internal.WithGuest(&acl.Account{}))
		rec := do(app, httptest.NewRequest(http.MethodGet, "/api/nonsense", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("unsupported method is a bodyless 405", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, internal.WithGuest(&acl.Account{}))
		rec := do(app, httptest.NewRequest(http.MethodDelete, "/api/echo", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("handler-staged 403 is bodyless", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, internal.WithGuest(&acl.Account{}))
		rec := do(app, httptest.NewRequest(http.MethodGet, "/api/echo/forbidden", nil))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("handler panic becomes a 500 with plain-text body", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, internal.WithGuest(&acl.Account{}))
		rec := do(app, httptest.NewRequest(http.MethodGet, "/api/echo/boom", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "broken handler")
	})

	t.Run("paths outside the prefix are a bare 404", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, internal.WithGuest(&acl.Account{}))
		rec := do(app, httptest.NewRequest(http.MethodGet, "/other", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestApp_Authentication(t *testing.T) {
	t.Parallel()

	accounts := []*acl.Account{{Name: "mk", Password: "secret", IsActive: true}}

	t.Run("missing credentials with accounts configured is 401", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, internal.WithAccounts(accounts), internal.WithRealm("vault"))
		rec := do(app, httptest.NewRequest(http.MethodGet, "/api/echo", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, `Basic realm="vault"`, rec.Header().Get("WWW-Authenticate"))
		assert.Empty(t, rec.Body.String())
	})

	t.Run("wrong password is 401", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, internal.WithAccounts(accounts))
		req := httptest.NewRequest(http.MethodGet, "/api/echo", nil)
		req.SetBasicAuth("mk", "wrong")
		rec := do(app, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid credentials pass through", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, internal.WithAccounts(accounts))
		req := httptest.NewRequest(http.MethodGet, "/api/echo", nil)
		req.SetBasicAuth("mk", "secret")
		rec := do(app, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("no guest and no accounts denies everything", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		rec := do(app, httptest.NewRequest(http.MethodGet, "/api/echo", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestApp_Validation(t *testing.T) {
	t.Parallel()

	t.Run("veto answers with the default 404", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t,
			internal.WithGuest(&acl.Account{}),
			internal.WithValidator(&vetoValidator{allow: false}))
		rec := do(app, httptest.NewRequest(http.MethodGet, "/api/echo", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("veto may pick its own status", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t,
			internal.WithGuest(&acl.Account{}),
			internal.WithValidator(&vetoValidator{allow: false, status: http.StatusTeapot}))
		rec := do(app, httptest.NewRequest(http.MethodGet, "/api/echo", nil))

		assert.Equal(t, http.StatusTeapot, rec.Code)
	})

	t.Run("approval lets the request through", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t,
			internal.WithGuest(&acl.Account{}),
			internal.WithValidator(&vetoValidator{allow: true}))
		rec := do(app, httptest.NewRequest(http.MethodGet, "/api/echo", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestApp_Preparer(t *testing.T) {
	t.Parallel()

	prepared := acl.PreparerFunc(func(_ context.Context, identity *acl.Identity) (*acl.Identity, error) {
		identity.Set("team", "editors")
		return identity, nil
	})

	var seen any
	spy := &spyModule{onGet: func(args *internal.Args) {
		seen, _ = args.Identity.Get("team")
	}}

	app, err := internal.New(
		internal.WithModules(spy),
		internal.WithGuest(&acl.Account{}),
		internal.WithPreparer(prepared))
	require.NoError(t, err)

	rec := do(app, httptest.NewRequest(http.MethodGet, "/api/spy", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "editors", seen)
}

type spyModule struct {
	onGet func(*internal.Args)
}

func (m *spyModule) Name() string { return "spy" }

func (m *spyModule) Get(_ context.Context, args *internal.Args) error {
	if m.onGet != nil {
		m.onGet(args)
	}
	return nil
}

func TestApp_HookEmission(t *testing.T) {
	t.Parallel()

	newRecordingEmitter := func(t *testing.T) (*hooks.Emitter, func() []string) {
		t.Helper()

		var mu sync.Mutex
		var names []string

		em := hooks.NewEmitter()
		t.Cleanup(func() { _ = em.Close() })
		require.NoError(t, em.Register(".*", hooks.HandlerFunc(
			func(_ context.Context, ev hooks.Event, _ hooks.States) error {
				mu.Lock()
				names = append(names, ev.Name)
				mu.Unlock()
				return nil
			})))

		return em, func() []string {
			em.Wait()
			mu.Lock()
			defer mu.Unlock()
			return append([]string(nil), names...)
		}
	}

	t.Run("completed requests emit a hook named after the endpoint", func(t *testing.T) {
		t.Parallel()

		em, collected := newRecordingEmitter(t)
		app := newTestApp(t,
			internal.WithGuest(&acl.Account{}),
			internal.WithHookEmitter(em))

		rec := do(app, httptest.NewRequest(http.MethodGet, "/api/echo/hello", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		assert.Equal(t, []string{"echo"}, collected())
	})

	t.Run("handlers may suppress the automatic hook", func(t *testing.T) {
		t.Parallel()

		em, collected := newRecordingEmitter(t)
		app := newTestApp(t,
			internal.WithGuest(&acl.Account{}),
			internal.WithHookEmitter(em))

		rec := do(app, httptest.NewRequest(http.MethodGet, "/api/echo/quiet", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		assert.Empty(t, collected())
	})

	t.Run("failed resolution emits nothing", func(t *testing.T) {
		t.Parallel()

		em, collected := newRecordingEmitter(t)
		app := newTestApp(t,
			internal.WithGuest(&acl.Account{}),
			internal.WithHookEmitter(em))

		rec := do(app, httptest.NewRequest(http.MethodGet, "/api/nonsense", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)

		assert.Empty(t, collected())
	})
}

func TestApp_Health(t *testing.T) {
	t.Parallel()

	app := newTestApp(t,
		internal.WithGuest(&acl.Account{}),
		internal.WithHealth())

	rec := do(app, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(app, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
