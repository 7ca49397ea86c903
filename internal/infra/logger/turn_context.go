package logger

import (
	"context"
	"log/slog"
)

type ContextKey string

const (
	// Business context keys for chat observability.
	TurnIDKey ContextKey = "chat.turn.id"
	StageKey  ContextKey = "chat.turn.stage"
)

// WithTurnID adds the turn ID to the context for observability.
func WithTurnID(ctx context.Context, turnID string) context.Context {
	return context.WithValue(ctx, TurnIDKey, turnID)
}

// WithStage adds the pipeline stage to the context for observability.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, StageKey, stage)
}

// TurnContextHandler decorates records with turn-scoped context values so a
// whole turn's log lines can be correlated without threading explicit fields.
type TurnContextHandler struct {
	inner slog.Handler
}

func NewTurnContextHandler(inner slog.Handler) *TurnContextHandler {
	return &TurnContextHandler{inner: inner}
}

func (h *TurnContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *TurnContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if turnID, ok := ctx.Value(TurnIDKey).(string); ok {
		r.AddAttrs(slog.String(string(TurnIDKey), turnID))
	}
	if stage, ok := ctx.Value(StageKey).(string); ok {
		r.AddAttrs(slog.String(string(StageKey), stage))
	}
	return h.inner.Handle(ctx, r)
}

func (h *TurnContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TurnContextHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *TurnContextHandler) WithGroup(name string) slog.Handler {
	return &TurnContextHandler{inner: h.inner.WithGroup(name)}
}
