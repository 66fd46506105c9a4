package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("disk full") }

func TestFanout(t *testing.T) {
	var text, js bytes.Buffer
	h := NewFanout(
		NewHandler(&text, &slog.HandlerOptions{Level: slog.LevelWarn}),
		NewJSONHandler(&js, slog.LevelInfo),
	)
	logger := slog.New(h).With("backup_id", "backup_20250101_000000_000001").WithGroup("g")

	logger.Info("created", "n", 1)

	assert.Zero(t, text.Len(), "text handler at warn skips info")
	assert.Contains(t, js.String(), `"backup_id":"backup_20250101_000000_000001"`)
	assert.Contains(t, js.String(), `"g":{"n":1}`)
	assert.True(t, h.Enabled(t.Context(), slog.LevelInfo))
	assert.False(t, h.Enabled(t.Context(), slog.LevelDebug))
}

func TestFanout_Single(t *testing.T) {
	inner := NewHandler(&bytes.Buffer{}, nil)
	assert.Same(t, inner, NewFanout(inner))
}

func TestFanout_JoinsErrors(t *testing.T) {
	var buf bytes.Buffer
	good := NewHandler(&buf, nil)
	h := NewFanout(failingHandler{good}, good)

	err := h.Handle(t.Context(), slog.NewRecord(time.Time{}, slog.LevelInfo, "still written", 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, buf.String(), "still written")
}
