package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(Config{Level: "debug", Format: "json"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Debug("dork added", DorkID(7), Category("Configuration"))
	Sync(logger)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "dork added", entry["msg"])
	assert.Equal(t, "darkdork", entry["service"])
	assert.Equal(t, float64(7), entry["dork_id"])
	assert.Equal(t, "Configuration", entry["category"])
	assert.Contains(t, entry, "ts")
}

func TestNewWithWriterFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(Config{Level: "warn"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Info("ignored")
	Sync(logger)
	assert.Empty(t, buf.String())
}

func TestFileSink(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "darkdork.log")
	var buf bytes.Buffer
	logger, err := NewWithWriter(Config{Format: "console", File: logFile, MaxSize: 1}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Info("search recorded", SearchID(3))
	Sync(logger)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"search_id":3`)
	assert.Contains(t, buf.String(), "search recorded")
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
}
