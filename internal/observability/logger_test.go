package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "info", "json")

	logger.Debug("hidden")
	logger.Info("prediction complete", "break_id", "brk-1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "prediction complete", entry["msg"])
	assert.Equal(t, "brk-1", entry["break_id"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "debug", "TEXT")

	logger.Debug("cache miss", "break_id", "brk-1")

	assert.Contains(t, buf.String(), "msg=\"cache miss\"")
	assert.Contains(t, buf.String(), "break_id=brk-1")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("info"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestNewMetricsForTesting_Unregistered(t *testing.T) {
	m := NewMetricsForTesting()
	m.Predictions.WithLabelValues("fun").Inc()
	m.ReadingCache.WithLabelValues("hit").Inc()
	assert.Len(t, m.collectors(), 14)
}
