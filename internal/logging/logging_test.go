package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestNewWithoutPathIsNop(t *testing.T) {
	logger, err := New("debug", "", true)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.ErrorLevel))
}

func TestNewWritesJSONAtLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "asoos.log")

	logger, err := New("warn", path, false)
	require.NoError(t, err)
	logger.Info("dropped")
	logger.Warn("kept", zap.String("verb", "workflow"))
	_ = logger.Sync()

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Equal(t, "kept", lines[0]["msg"])
	assert.Equal(t, "workflow", lines[0]["verb"])
	assert.Equal(t, "warn", lines[0]["level"])
}

func TestVerboseForcesDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asoos.log")

	logger, err := New("error", path, true)
	require.NoError(t, err)
	logger.Debug("visible")
	_ = logger.Sync()

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Equal(t, "visible", lines[0]["msg"])
}

func TestInvalidLevel(t *testing.T) {
	_, err := New("loud", filepath.Join(t.TempDir(), "x.log"), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}
