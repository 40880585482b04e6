package logging

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(t *testing.T, level, format string) ApplicationLogger {
	t.Helper()
	logger, err := NewApplicationLogger(Config{Level: level, Format: format, Output: "buffer"})
	require.NoError(t, err)
	return logger
}

func lastEntry(t *testing.T, logger ApplicationLogger) LogEntry {
	t.Helper()
	output := getLoggerOutput(logger)
	require.NotEmpty(t, output)

	var entry LogEntry
	require.NoError(t, json.Unmarshal([]byte(output), &entry))
	return entry
}

// TestApplicationLogger_CreateStructuredLogger tests creation of structured logger.
func TestApplicationLogger_CreateStructuredLogger(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{name: "json format", config: Config{Level: "INFO", Format: "json", Output: "stdout"}},
		{name: "text format", config: Config{Level: "DEBUG", Format: "text", Output: "stderr"}},
		{name: "lowercase level", config: Config{Level: "warn", Format: "json", Output: "buffer"}},
		{name: "invalid level", config: Config{Level: "INVALID", Format: "json", Output: "stdout"}, wantErr: "invalid log level: INVALID"},
		{name: "invalid format", config: Config{Level: "INFO", Format: "xml", Output: "stdout"}, wantErr: "invalid log format: xml"},
		{name: "invalid output", config: Config{Level: "INFO", Format: "json", Output: "file"}, wantErr: "invalid log output: file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewApplicationLogger(tt.config)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				assert.Nil(t, logger)
				return
			}
			require.NoError(t, err)
			assert.Implements(t, (*ApplicationLogger)(nil), logger)
		})
	}
}

// TestApplicationLogger_LogLevels tests level filtering.
func TestApplicationLogger_LogLevels(t *testing.T) {
	logger := newBufferLogger(t, "WARN", "json")
	ctx := context.Background()

	logger.Debug(ctx, "debug message", nil)
	logger.Info(ctx, "info message", nil)
	assert.Empty(t, getLoggerLines(logger))

	logger.Warn(ctx, "warn message", nil)
	logger.Error(ctx, "error message", nil)

	lines := getLoggerLines(logger)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"level":"WARN"`)
	assert.Contains(t, lines[1], `"level":"ERROR"`)
}

// TestApplicationLogger_CorrelationID tests correlation ID propagation.
func TestApplicationLogger_CorrelationID(t *testing.T) {
	logger := newBufferLogger(t, "INFO", "json")

	ctx := WithCorrelationID(context.Background(), "run-123")
	logger.Info(ctx, "with id", nil)
	assert.Equal(t, "run-123", lastEntry(t, logger).CorrelationID)

	logger.Info(context.Background(), "without id", nil)
	generated := lastEntry(t, logger).CorrelationID
	assert.Len(t, generated, 36)

	ensured := EnsureCorrelationID(context.Background())
	assert.NotEmpty(t, GetCorrelationID(ensured))
	assert.Equal(t, ctx, EnsureCorrelationID(ctx))
}

// TestApplicationLogger_StructuredFields tests metadata fields.
func TestApplicationLogger_StructuredFields(t *testing.T) {
	logger := newBufferLogger(t, "INFO", "json")

	logger.Info(context.Background(), "rows cleaned", Fields{
		"rows":       42,
		"input_path": "data/raw.csv",
	})

	entry := lastEntry(t, logger)
	assert.Equal(t, "rows cleaned", entry.Message)
	assert.Equal(t, "default", entry.Component)
	assert.InDelta(t, 42, entry.Metadata["rows"], 0)
	assert.Equal(t, "data/raw.csv", entry.Metadata["input_path"])
}

// TestApplicationLogger_ComponentLogging tests component-scoped loggers.
func TestApplicationLogger_ComponentLogging(t *testing.T) {
	logger := newBufferLogger(t, "INFO", "json")
	extraction := logger.WithComponent("extraction-service")

	extraction.Info(context.Background(), "extraction started", nil)

	assert.Equal(t, "extraction-service", lastEntry(t, logger).Component)
}

// TestApplicationLogger_ErrorLogging tests error capture.
func TestApplicationLogger_ErrorLogging(t *testing.T) {
	logger := newBufferLogger(t, "INFO", "json")

	logger.ErrorWithError(context.Background(), errors.New("timestamp is required"), "row rejected", Fields{"line": 7})

	entry := lastEntry(t, logger)
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "timestamp is required", entry.Error)
	assert.InDelta(t, 7, entry.Metadata["line"], 0)

	logger.ErrorWithError(context.Background(), nil, "nil error", nil)
	assert.Empty(t, lastEntry(t, logger).Error)
}

// TestApplicationLogger_PerformanceLogging tests duration logging.
func TestApplicationLogger_PerformanceLogging(t *testing.T) {
	logger := newBufferLogger(t, "INFO", "json")
	fields := Fields{"requests": 3}

	logger.LogPerformance(context.Background(), "extract", 1500*time.Millisecond, fields)

	entry := lastEntry(t, logger)
	assert.Equal(t, "Performance metrics for extract", entry.Message)
	assert.Equal(t, "extract", entry.Operation)
	assert.Equal(t, "1.5s", entry.Duration)
	assert.NotContains(t, fields, "operation")
}

// TestApplicationLogger_TextFormat tests the human-readable format.
func TestApplicationLogger_TextFormat(t *testing.T) {
	logger := newBufferLogger(t, "INFO", "text")

	logger.WithComponent("cleaning-service").Info(context.Background(), "cleaned", Fields{"rows": 2, "discarded": 1})

	output := getLoggerOutput(logger)
	assert.Contains(t, output, "INFO cleaning-service: cleaned")
	assert.True(t, strings.HasSuffix(output, "discarded=1 rows=2"))
	assert.Contains(t, BufferedOutput(logger), "cleaned")
}
