package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tapvizier/vizier-go/internal/config"
)

func TestNewWritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&config.Config{LogLevel: "debug"}, &buf)

	log.DebugObj("tap query completed", "query_result", map[string]any{"rows": 2})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry), buf.String())
	assert.Equal(t, "tap query completed", entry["msg"])
	assert.Equal(t, "debug", entry["level"])
	assert.Contains(t, entry, "ts")
	assert.Equal(t, map[string]any{"rows": float64(2)}, entry["query_result"])
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&config.Config{LogLevel: "warn"}, &buf)

	log.InfoObj("hidden", "k", 1)
	log.DebugObj("hidden", "k", 1)
	log.WarnObj("shown", "k", 1)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, buf.String())
	assert.Contains(t, lines[0], `"shown"`)
}

func TestPackageHelpersAreSafeBeforeInit(t *testing.T) {
	S = nil
	InfoObj("noop", "k", 1)
	ErrorObj("noop", "k", 1)
	assert.NoError(t, Close())
	assert.IsType(t, &NopLogger{}, FromSugared(nil))
}
