package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Formats(t *testing.T) {
	var js, text bytes.Buffer
	New(Config{Level: slog.LevelInfo, Format: FormatJSON, Output: &js}).Info("created", "backup_id", "backup_1")
	New(Config{Level: slog.LevelInfo, Format: Format("yaml"), Output: &text}).Info("created", "backup_id", "backup_1")

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &parsed))
	assert.Equal(t, "created", parsed["msg"])
	assert.Equal(t, "backup_1", parsed["backup_id"])

	assert.Error(t, json.Unmarshal(text.Bytes(), &parsed), "unknown formats fall back to text")
	assert.Contains(t, text.String(), "created backup_id=backup_1")
}

func TestNew_LevelFiltering(t *testing.T) {
	tests := []struct {
		name   string
		min    slog.Level
		level  slog.Level
		logged bool
	}{
		{"info at info", slog.LevelInfo, slog.LevelInfo, true},
		{"debug at info", slog.LevelInfo, slog.LevelDebug, false},
		{"error at warn", slog.LevelWarn, slog.LevelError, true},
		{"info at warn", slog.LevelWarn, slog.LevelInfo, false},
		{"trace at trace", LevelTrace, LevelTrace, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, format := range []Format{FormatText, FormatJSON} {
				var buf bytes.Buffer
				logger := New(Config{Level: tt.min, Format: format, Output: &buf})
				logger.Log(t.Context(), tt.level, "msg")
				assert.Equal(t, tt.logged, buf.Len() > 0, "format %s", format)
			}
		})
	}
}

func TestNewDiscard(t *testing.T) {
	logger := NewDiscard()
	assert.False(t, logger.Enabled(t.Context(), slog.LevelError))
	logger.Error("dropped")
}

func TestDefault(t *testing.T) {
	logger := Default()
	assert.False(t, logger.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, logger.Enabled(t.Context(), slog.LevelWarn))
}

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		verbosity int
		want      slog.Level
	}{
		{-1, slog.LevelWarn},
		{0, slog.LevelWarn},
		{1, slog.LevelInfo},
		{2, slog.LevelDebug},
		{3, LevelTrace},
		{7, LevelTrace},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFromVerbosity(tt.verbosity), "verbosity %d", tt.verbosity)
	}
	assert.Less(t, LevelTrace, slog.LevelDebug)
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: FormatJSON, Output: &buf})

	ctx := NewContext(t.Context(), logger)
	FromContext(ctx).Info("from context")

	assert.Contains(t, buf.String(), "from context")
	assert.Same(t, slog.Default(), FromContext(t.Context()))
}

func TestForTest(t *testing.T) {
	logger := ForTest(t)
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(t.Context(), slog.LevelDebug))
	logger.Debug("visible with -v", "test", t.Name())

	n, err := tbWriter{tb: t}.Write([]byte("line\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestJSONHandler_Redacts(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewJSONHandler(&buf, slog.LevelInfo))

	logger.Info("hook payload", "api_key", "secret12345", "command", "curl -H ghp_abcdefgh", "files", 3, "password", 1234)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "****2345", parsed["api_key"])
	assert.Equal(t, "curl -H ****efgh", parsed["command"])
	assert.EqualValues(t, 3, parsed["files"])
	assert.Equal(t, "********", parsed["password"])
}
