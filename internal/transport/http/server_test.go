package http

import (
	"bytes"
	"encoding/json"
	"io"
	"math/rand/v2"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/mockchat/internal/config"
	"github.com/vovakirdan/mockchat/internal/core"
	"github.com/vovakirdan/mockchat/internal/session"
)

type testEnv struct {
	bus    *core.Bus
	sess   *session.Session
	server *stdhttp.Server
}

// newTestEnv wires a bus on a mock clock, so no synthetic message arrives
// unless a test advances time.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	bus := core.NewBus(core.Options{
		Clock: clock.NewMock(),
		Rand:  rand.New(rand.NewPCG(1, 2)),
	})
	sess := session.New(bus, nil)
	t.Cleanup(func() {
		sess.Close()
		bus.Close()
	})

	cfg := config.Default()
	cfg.Addr = ":0"
	return &testEnv{bus: bus, sess: sess, server: NewServer(sess, bus, cfg, nil)}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	e.server.Handler.ServeHTTP(resp, req)
	return resp
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out), resp.Body.String())
	return out
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, stdhttp.MethodGet, "/health", "")
	require.Equal(t, stdhttp.StatusOK, resp.Code)
	require.Equal(t, "ok", resp.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, stdhttp.MethodGet, "/api/state", "")
	resp := env.do(t, stdhttp.MethodGet, "/metrics", "")

	require.Equal(t, stdhttp.StatusOK, resp.Code)
	body := resp.Body.String()
	require.True(t, strings.Contains(body, "mockchat_http_requests_total"), "metrics output misses request counter")
	require.Contains(t, body, `path="/api/state"`)
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, stdhttp.MethodGet, "/api/nope", "")
	require.Equal(t, stdhttp.StatusNotFound, resp.Code)
}
