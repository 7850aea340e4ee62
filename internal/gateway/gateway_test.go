package gateway_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sweetshop/internal/gateway"
	"github.com/jhoicas/sweetshop/pkg/config"
	"github.com/jhoicas/sweetshop/pkg/logger"
)

// newGateway wires a gateway in front of a recording fake backend and a
// static dir with an index.html and one asset.
func newGateway(t *testing.T) (app *fiberApp, backend *backendRecorder) {
	t.Helper()

	backend = &backendRecorder{}
	backendSrv := httptest.NewServer(backend)
	t.Cleanup(backendSrv.Close)

	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<html>shell</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "app.js"), []byte("console.log('hi')"), 0o644))

	cfg := config.GatewayConfig{APITarget: backendSrv.URL, StaticDir: staticDir}
	return &fiberApp{gateway.New(cfg, "sweetshop-test", logger.Nop())}, backend
}

type backendRecorder struct {
	lastPath   string
	lastQuery  string
	lastMethod string
	lastAuth   string
	lastXFwd   string
}

func (b *backendRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.lastPath = r.URL.Path
	b.lastQuery = r.URL.RawQuery
	b.lastMethod = r.Method
	b.lastAuth = r.Header.Get("Authorization")
	b.lastXFwd = r.Header.Get("X-Forwarded-For")
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`[{"id":"s1"}]`))
}

// fiberApp adds a test helper around *fiber.App.
type fiberApp struct {
	app interface {
		Test(*http.Request, ...int) (*http.Response, error)
	}
}

func (f *fiberApp) get(t *testing.T, path string, header map[string]string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, string(body)
}

func TestHealthEndpoint(t *testing.T) {
	app, _ := newGateway(t)

	resp, body := app.get(t, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, "ok", out["status"])
}

func TestAPIRequestsAreProxied(t *testing.T) {
	app, backend := newGateway(t)

	resp, body := app.get(t, "/api/sweets/search?q=fudge&min_price=1", map[string]string{
		"Authorization": "Bearer t1",
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `[{"id":"s1"}]`, body)
	assert.Equal(t, "/api/sweets/search", backend.lastPath, "path must be preserved")
	assert.Equal(t, "q=fudge&min_price=1", backend.lastQuery, "query must be preserved")
	assert.Equal(t, "Bearer t1", backend.lastAuth, "auth header must pass through")
	assert.NotEmpty(t, backend.lastXFwd)
}

func TestStaticAssetIsServed(t *testing.T) {
	app, _ := newGateway(t)

	resp, body := app.get(t, "/app.js", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "console.log('hi')", body)
}

func TestUnknownRouteFallsBackToIndex(t *testing.T) {
	app, backend := newGateway(t)

	resp, body := app.get(t, "/login", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<html>shell</html>", body, "client-side routes get the SPA shell")
	assert.Empty(t, backend.lastPath, "non-API routes never reach the backend")
}

func TestBackendDownYieldsBadGateway(t *testing.T) {
	backendSrv := httptest.NewServer(http.NotFoundHandler())
	backendSrv.Close() // deliberately unreachable

	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("x"), 0o644))

	cfg := config.GatewayConfig{APITarget: backendSrv.URL, StaticDir: staticDir}
	app := &fiberApp{gateway.New(cfg, "sweetshop-test", logger.Nop())}

	resp, body := app.get(t, "/api/sweets", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, "backend unavailable")
}
