package server

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitas-games/craftworks/internal/errors"
)

func TestServerWithoutRedis(t *testing.T) {
	srv, err := New(newTestConfig(t, testConfig), newTestCatalog(t), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown() })

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServerStatus(t *testing.T) {
	srv, err := New(newTestConfig(t, testConfig), newTestCatalog(t), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown() })

	sess := srv.Session()
	sess.Do(func() {
		sess.Inventory("bench_in").Add("hammer", 1, nil, false)
		sess.Inventory("bench_in").Add("wood", 2, nil, false)
		require.NoError(t, sess.Station("bench").Craft(0))
	})
	sess.Tick(100 * time.Millisecond)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var status SessionStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "running", status.State)
	assert.Equal(t, int64(1), status.ServerTick)
	assert.Equal(t, 2, status.Inventories)
	assert.Equal(t, 1, status.Stations)
	assert.Equal(t, 1, status.Craftings)
}

func TestServerStatusCompressed(t *testing.T) {
	srv, err := New(newTestConfig(t, testConfig), newTestCatalog(t), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown() })

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("Accept-Encoding", "br")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "br", rec.Header().Get("Content-Encoding"))

	var status SessionStatus
	require.NoError(t, json.NewDecoder(brotli.NewReader(rec.Body)).Decode(&status))
	assert.Equal(t, 1, status.Stations)
}

func TestServerRedisHealth(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := newTestConfig(t, testConfig)
	cfg.Redis.Address = mr.Addr()

	srv, err := New(cfg, newTestCatalog(t), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown() })

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	mr.SetError("ERR server unavailable")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
	mr.SetError("")
}

func TestServerShutdownSaves(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := newTestConfig(t, testConfig)
	cfg.Redis.Address = mr.Addr()
	cfg.Redis.KeyPrefix = "srv:"

	srv, err := New(cfg, newTestCatalog(t), nil)
	require.NoError(t, err)

	sess := srv.Session()
	sess.Do(func() {
		sess.Inventory("bench_in").Add("wood", 7, nil, false)
	})
	require.NoError(t, srv.Shutdown())
	assert.True(t, mr.Exists("srv:inventory:bench_in"))
	assert.True(t, mr.Exists("srv:station:bench"))

	// a second server picks the snapshot up
	again, err := New(cfg, newTestCatalog(t), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = again.Shutdown() })
	assert.Equal(t, 7, again.Session().Inventory("bench_in").AmountOfItem("wood"))
}

func TestServerStartAndShutdown(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	cfg := newTestConfig(t, "server: {host: 127.0.0.1, tick_rate: 100}\n"+testConfig)
	cfg.Server.Port = port

	srv, err := New(cfg, newTestCatalog(t), nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	assert.Eventually(t, func() bool {
		return srv.Session().Status().ServerTick > 0
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, srv.Shutdown())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}
}

func TestServerRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := newTestConfig(t, testConfig)
	cfg.Redis.Address = mr.Addr()
	mr.Close()

	_, err := New(cfg, newTestCatalog(t), nil)
	assert.Equal(t, errors.CodeUnavailable, errors.GetCode(err))
}
