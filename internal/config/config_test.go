package config

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tapvizier/vizier-go/pkg/vizier"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, vizier.DefaultTAPURL, cfg.TAPURL)
	assert.Equal(t, http.MethodGet, cfg.HTTPMethod)
	assert.Zero(t, cfg.Timeout, "no timeout by default")
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadReadsPrefixedEnv(t *testing.T) {
	t.Setenv("VIZIER_TAP_URL", "http://localhost:9000/tap/sync")
	t.Setenv("VIZIER_HTTP_METHOD", "post")
	t.Setenv("VIZIER_TIMEOUT_SECONDS", "30")
	t.Setenv("VIZIER_USER_AGENT", " vizier-go/test ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/tap/sync", cfg.TAPURL)
	assert.Equal(t, http.MethodPost, cfg.HTTPMethod)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "vizier-go/test", cfg.UserAgent)
	assert.Len(t, cfg.ClientOptions(), 3)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("VIZIER_HTTP_METHOD", "DELETE")
	_, err := Load()
	assert.Error(t, err, "unsupported method")

	t.Setenv("VIZIER_HTTP_METHOD", "GET")
	t.Setenv("VIZIER_TIMEOUT_SECONDS", "-1")
	_, err = Load()
	assert.Error(t, err, "negative timeout")
}

func TestLoadFileYAMLAndJSON(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "vizier.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("tap_url: http://mirror/tap/sync\nhttp_method: POST\ntimeout_seconds: 5\n"), 0o600))
	cfg, err := LoadFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "http://mirror/tap/sync", cfg.TAPURL)
	assert.Equal(t, http.MethodPost, cfg.HTTPMethod)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "vizier-go", cfg.AppName)

	jsonPath := filepath.Join(dir, "vizier.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"log_level":"DEBUG","user_agent":"ua"}`), 0o600))
	cfg, err = LoadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, vizier.DefaultTAPURL, cfg.TAPURL)
	assert.Equal(t, http.MethodGet, cfg.HTTPMethod)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "ua", cfg.UserAgent)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(" ")
	assert.Error(t, err, "empty path")

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "missing file")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o600))
	_, err = LoadFile(bad)
	assert.Error(t, err, "malformed json")
}

func TestNewClientUsesConfiguredEndpoint(t *testing.T) {
	cfg := &Config{TAPURL: "http://localhost/tap/sync", HTTPMethod: http.MethodGet}
	assert.Equal(t, cfg.TAPURL, cfg.NewClient().Endpoint())
}
