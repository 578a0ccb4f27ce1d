package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"

	"github.com/Query-farm/vgi-xmlrpc/wire"
)

// runConfig parses args the way the app does and returns the result of
// GetConfig.
func runConfig(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	var (
		cfg    *Config
		cfgErr error
	)
	app := NewApp()
	app.Action = func(ctx *cli.Context) error {
		cfg, cfgErr = GetConfig(ctx)
		return nil
	}
	require.NoError(t, app.Run(append([]string{"xmlrpcd"}, args...)))
	return cfg, cfgErr
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "xmlrpcd.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg, err := runConfig(t)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "/RPC2", cfg.Server.Path)
	assert.Equal(t, 8080, cfg.Server.ListenPort)
	assert.True(t, cfg.Server.Pages)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestTomlConfig(t *testing.T) {
	path := writeConfig(t, `
[server]
listen_address = "0.0.0.0"
listen_port = 9001
path = "/xmlrpc"
max_body_size = 1024
compression_level = 0
pages = false

[log]
level = "debug"
format = "json"

[cors]
enabled = true
allowed_origins = ["https://a.example", "https://b.example"]

[otel]
stdout = true
`)
	cfg, err := runConfig(t, "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.ListenAddress)
	assert.Equal(t, 9001, cfg.Server.ListenPort)
	assert.Equal(t, "/xmlrpc", cfg.Server.Path)
	assert.Equal(t, int64(1024), cfg.Server.MaxBodySize)
	assert.Equal(t, 0, cfg.Server.CompressionLevel)
	assert.False(t, cfg.Server.Pages)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.CORS.Enabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Otel.Stdout)

	// Keys the file leaves out keep their defaults.
	assert.Equal(t, "xmlrpcd", cfg.Server.Name)
}

func TestFlagsOverrideToml(t *testing.T) {
	path := writeConfig(t, `
[server]
listen_port = 9001
path = "/xmlrpc"
`)
	cfg, err := runConfig(t,
		"--config", path,
		"--port", "9100",
		"--no-pages",
		"--loglevel", "warn",
		"--cors-origins", "https://x.example,https://y.example",
	)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.ListenPort)
	assert.Equal(t, "/xmlrpc", cfg.Server.Path)
	assert.False(t, cfg.Server.Pages)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, []string{"https://x.example", "https://y.example"}, cfg.CORS.AllowedOrigins)
}

func TestConfigErrors(t *testing.T) {
	_, err := runConfig(t, "--config", filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = runConfig(t, "--config", writeConfig(t, "[server\nbroken"))
	assert.Error(t, err)

	for _, args := range [][]string{
		{"--port", "70000"},
		{"--path", "RPC2"},
		{"--max-body-size", "0"},
		{"--compression-level", "12"},
		{"--logformat", "xml"},
		{"--rate-limit", "-1"},
		{"--rate-limit", "5", "--rate-burst", "0"},
	} {
		_, err := runConfig(t, args...)
		assert.Error(t, err, "%v", args)
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(Log{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, logger.GetLevel())
	assert.IsType(t, &log.JSONFormatter{}, logger.Formatter)

	_, err = newLogger(Log{Level: "loud", Format: "text"})
	assert.Error(t, err)
}

func quietLogger() *log.Logger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestHandler_ServesFixtures(t *testing.T) {
	cfg := DefaultConfig()
	h := newHandler(cfg, quietLogger())

	req := httptest.NewRequest(http.MethodPost, "/RPC2", bytes.NewReader(
		wire.EncodeCall("bench.add", wire.Double(1), wire.Double(2))))
	req.Header.Set("Content-Type", "text/xml")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	resp, err := wire.ParseResponse(rec.Body.Bytes())
	require.NoError(t, err)
	assert.True(t, wire.ValueResponse(wire.Double(3)).Equal(*resp), "got %s", resp)

	req = httptest.NewRequest(http.MethodPost, "/RPC2", bytes.NewReader(
		wire.EncodeCall("validator1.simpleStructReturnTest", wire.Int(2))))
	req.Header.Set("Content-Type", "text/xml")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestHandler_RateLimit(t *testing.T) {
	cfg, err := runConfig(t, "--rate-limit", "0.001", "--rate-burst", "1")
	require.NoError(t, err)
	assert.Equal(t, 0.001, cfg.Server.RateLimit)
	h := newHandler(cfg, quietLogger())

	call := func() *wire.Response {
		req := httptest.NewRequest(http.MethodPost, "/RPC2", bytes.NewReader(wire.EncodeCall("bench.noop")))
		req.Header.Set("Content-Type", "text/xml")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		resp, err := wire.ParseResponse(rec.Body.Bytes())
		require.NoError(t, err)
		return resp
	}
	assert.False(t, call().IsFault())
	f, ok := call().Fault()
	require.True(t, ok)
	assert.Equal(t, 429, f.Code)
}

func TestHandler_CORS(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CORS.Enabled = true
	cfg.CORS.AllowedOrigins = []string{"https://app.example"}
	h := newHandler(cfg, quietLogger())

	req := httptest.NewRequest(http.MethodOptions, "/RPC2", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/RPC2", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
