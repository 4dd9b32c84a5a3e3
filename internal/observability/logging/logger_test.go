package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesToFile(t *testing.T) {
	dir := t.TempDir()

	logger, closer, err := New(dir)
	require.NoError(t, err)
	defer func() { _ = closer.Close() }()

	logger.Info("hello", "k", "v")

	data, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), `"k":"v"`)
}

func TestNew_CreatesConfigDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "config")
	_, closer, err := New(dir)
	require.NoError(t, err)
	defer func() { _ = closer.Close() }()

	_, err = os.Stat(dir)
	assert.NoError(t, err)
}

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want string
	}{
		{"default", "", "INFO"},
		{"debug", "debug", "DEBUG"},
		{"warn", "warn", "WARN"},
		{"error", "error", "ERROR"},
		{"invalid", "bogus", "INFO"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.env != "" {
				t.Setenv("LOG_LEVEL", tt.env)
			}
			assert.Equal(t, tt.want, levelFromEnv().String())
		})
	}
}

func TestNewWriter_RespectsLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	var buf bytes.Buffer
	logger := NewWriter(&buf)
	logger.Debug("debug message")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug message", entry["msg"])
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf)
	logger = WithFields(logger, map[string]interface{}{"feed_id": 7, "action": "refresh"})
	logger.Info("tick")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, float64(7), entry["feed_id"])
	assert.Equal(t, "refresh", entry["action"])
}

func TestWithLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf)

	ctx := WithLogger(context.Background(), logger)
	got := FromContext(ctx)
	got.Info("via context")

	assert.Contains(t, buf.String(), "via context")
}

func TestFromContext_DefaultWhenAbsent(t *testing.T) {
	got := FromContext(context.Background())
	assert.NotNil(t, got)
}
