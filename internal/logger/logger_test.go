package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) Entry {
	t.Helper()
	var entry Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Output:    &buf,
		MinLevel:  LevelDebug,
		WithStack: true,
	})

	assert.Equal(t, &buf, logger.output)
	assert.Equal(t, LevelDebug, logger.minLevel)
	assert.Equal(t, FormatJSON, logger.format)
	assert.True(t, logger.withStack)
}

func TestDefault(t *testing.T) {
	logger := Default()

	assert.Equal(t, LevelInfo, logger.minLevel)
	assert.False(t, logger.withStack)
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name  string
		log   func(l *Logger)
		level Level
	}{
		{"debug", func(l *Logger) { l.Debug("msg") }, LevelDebug},
		{"info", func(l *Logger) { l.Info("msg") }, LevelInfo},
		{"warn", func(l *Logger) { l.Warn("msg") }, LevelWarn},
		{"error", func(l *Logger) { l.Error("msg", errors.New("boom")) }, LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(New(Config{Output: &buf, MinLevel: LevelDebug}))

			entry := decode(t, &buf)
			assert.Equal(t, tt.level, entry.Level)
			assert.Equal(t, "msg", entry.Message)
		})
	}
}

func TestErrorWithStack(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, MinLevel: LevelDebug, WithStack: true})

	logger.Error("failed", errors.New("boom"))

	entry := decode(t, &buf)
	assert.Equal(t, "boom", entry.Error)
	assert.NotEmpty(t, entry.Stack)
}

func TestMinLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, MinLevel: LevelWarn})

	logger.Debug("hidden")
	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf})

	logger.WithFields(map[string]interface{}{
		"endpoint": "/movie/popular",
		"error":    errors.New("status 500"),
	}).Warn("request failed")

	entry := decode(t, &buf)
	assert.Equal(t, "/movie/popular", entry.Context["endpoint"])
	assert.Equal(t, "status 500", entry.Context["error"])
}

func TestContextValues(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf})

	ctx := ContextWithRequestID(context.Background(), "req-123")
	ctx = ContextWithSection(ctx, "trending")
	logger.WithFields(map[string]interface{}{"page": 2}).InfoContext(ctx, "grid loaded")

	entry := decode(t, &buf)
	assert.Equal(t, "req-123", entry.Context["request_id"])
	assert.Equal(t, "trending", entry.Context["section"])
	assert.EqualValues(t, 2, entry.Context["page"])
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, Format: FormatText})

	logger.WithFields(map[string]interface{}{"b": 2, "a": 1}).Error("cue dropped", errors.New("empty"))

	line := strings.TrimSpace(buf.String())
	assert.Contains(t, line, "ERROR cue dropped a=1 b=2")
	assert.True(t, strings.HasSuffix(line, `error="empty"`))
}

func TestNewWithLevelAndFormat(t *testing.T) {
	tests := []struct {
		level       string
		format      string
		wantLevel   Level
		wantFormat  Format
		expectStack bool
	}{
		{"debug", "json", LevelDebug, FormatJSON, true},
		{"info", "text", LevelInfo, FormatText, false},
		{"WARN", "", LevelWarn, FormatJSON, false},
		{"bogus", "yaml", LevelInfo, FormatJSON, false},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			l := NewWithLevelAndFormat(tt.level, tt.format)
			assert.Equal(t, tt.wantLevel, l.minLevel)
			assert.Equal(t, tt.wantFormat, l.format)
			assert.Equal(t, tt.expectStack, l.withStack)
		})
	}
}

func TestInitializeLoggersWithFormat(t *testing.T) {
	InitializeLoggersWithFormat("debug", "error", "text")
	defer InitializeLoggers("info", "info")

	assert.Equal(t, LevelDebug, AppLogger().minLevel)
	assert.Equal(t, FormatText, AppLogger().format)
	assert.Equal(t, LevelError, DatabaseLogger().minLevel)
}

func TestSetAppLogger(t *testing.T) {
	custom := New(Config{MinLevel: LevelError})
	SetAppLogger(custom)
	defer SetAppLogger(nil)

	assert.Same(t, custom, AppLogger())
}

func TestAppLogger_Singleton(t *testing.T) {
	SetAppLogger(nil)
	first := AppLogger()
	second := AppLogger()
	assert.Same(t, first, second)

	SetDatabaseLogger(nil)
	assert.Same(t, DatabaseLogger(), DatabaseLogger())
}
