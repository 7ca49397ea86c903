package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOTel_ReturnsUsableLogger(t *testing.T) {
	log := NewWithOTel(false)
	require.NotNil(t, log)
	assert.True(t, log.Enabled(context.Background(), slog.LevelInfo))
}

func TestStdoutHandler_LevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")

	handler := newStdoutHandler(&bytes.Buffer{})
	assert.False(t, handler.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelWarn))
}

func TestTurnContextHandler_InjectsTurnAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewTurnContextHandler(slog.NewJSONHandler(&buf, nil)))

	ctx := WithStage(WithTurnID(context.Background(), "turn-123"), "retrieve")
	log.InfoContext(ctx, "retrieval started")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "turn-123", record[string(TurnIDKey)])
	assert.Equal(t, "retrieve", record[string(StageKey)])
}

func TestTurnContextHandler_PlainContextAddsNothing(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewTurnContextHandler(slog.NewJSONHandler(&buf, nil)))

	log.InfoContext(context.Background(), "startup")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.NotContains(t, record, string(TurnIDKey))
	assert.NotContains(t, record, string(StageKey))
}
