package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapeboard/shapeboard/internal/config"
	"github.com/shapeboard/shapeboard/internal/session"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "board.wasm"), []byte("\x00asm"), 0o644))

	cfg := &config.Config{
		StaticDir:        dir,
		AllowedOrigins:   "http://localhost:3000",
		MaxExportSize:    512,
		MaxExportCircles: 100,
	}
	sessions := session.NewManager(session.Defaults{}, cfg.OriginHosts())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go sessions.Run(ctx)

	return newRouter(cfg, sessions)
}

func TestHealth(t *testing.T) {
	h := testRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","sessions":0}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestStaticWasm(t *testing.T) {
	h := testRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/board.wasm", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/wasm", rec.Header().Get("Content-Type"))
}

func TestExportRoute(t *testing.T) {
	h := testRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/export/png", strings.NewReader(`{"width":10,"height":10,"circles":[]}`))
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
}

func TestExportPreflight(t *testing.T) {
	h := testRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/export/png", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
