package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"chat-orchestrator/internal/domain"
	"chat-orchestrator/internal/infra/logger"
)

// Stream runs one turn incrementally. The returned channel carries delta
// events for each non-empty fragment the provider emits, at most one error
// event, and closes when the turn is over. Pulls block on the provider
// transport; no buffering happens beyond a small channel window.
func (u *chatTurnUsecase) Stream(ctx context.Context, input ChatInput) <-chan StreamEvent {
	events := make(chan StreamEvent, 4)

	go func() {
		defer close(events)

		if u.llm == nil {
			u.send(ctx, events, StreamEvent{Kind: StreamEventKindError, Payload: domain.ErrNotConfigured.Error()})
			return
		}

		ctx := logger.WithTurnID(ctx, uuid.NewString())

		prompt, _ := u.prepareTurn(ctx, input)

		chunkCh, errCh, err := u.llm.CompleteStream(logger.WithStage(ctx, "complete"), prompt)
		if err != nil {
			slog.ErrorContext(ctx, "streaming completion setup failed", slog.String("error", err.Error()))
			u.send(ctx, events, StreamEvent{Kind: StreamEventKindError, Payload: err.Error()})
			return
		}

		var builder strings.Builder
		for chunkCh != nil || errCh != nil {
			select {
			case <-ctx.Done():
				// Nobody is reading anymore; closing the channel is the only
				// signal that still matters.
				return
			case chunk, ok := <-chunkCh:
				if !ok {
					chunkCh = nil
					continue
				}
				if chunk.Text == "" {
					continue
				}
				builder.WriteString(chunk.Text)
				if !u.send(ctx, events, StreamEvent{Kind: StreamEventKindDelta, Payload: chunk.Text}) {
					return
				}
			case streamErr, ok := <-errCh:
				if !ok {
					errCh = nil
					continue
				}
				slog.ErrorContext(ctx, "streaming completion failed", slog.String("error", streamErr.Error()))
				u.send(ctx, events, StreamEvent{Kind: StreamEventKindError, Payload: fmt.Sprintf("stream failed: %v", streamErr)})
				return
			}
		}

		slog.InfoContext(ctx, "stream completed", slog.Int("response_length", builder.Len()))
		u.send(ctx, events, StreamEvent{Kind: StreamEventKindDone, Payload: builder.String()})
	}()

	return events
}

func (u *chatTurnUsecase) send(ctx context.Context, events chan<- StreamEvent, event StreamEvent) bool {
	select {
	case <-ctx.Done():
		return false
	case events <- event:
		return true
	}
}
