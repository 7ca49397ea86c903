package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"chat-orchestrator/internal/domain"
	"chat-orchestrator/internal/infra/logger"
)

// ChatTurnUsecase sequences one user turn: retrieve knowledge, compose the
// augmented prompt, then generate either a whole response or an event stream.
type ChatTurnUsecase interface {
	Execute(ctx context.Context, input ChatInput) (*ChatOutput, error)
	Stream(ctx context.Context, input ChatInput) <-chan StreamEvent
	// Ready reports whether the completion gateway is available. It lets the
	// transport reject a turn before committing to a streamed response.
	Ready() error
}

type chatTurnUsecase struct {
	retrieve RetrieveKnowledgeUsecase
	composer PromptComposer
	llm      domain.CompletionClient
}

// NewChatTurnUsecase wires together the components that drive one turn. The
// gateways are constructed once at startup and shared across turns; no state
// is held between calls.
func NewChatTurnUsecase(
	retrieve RetrieveKnowledgeUsecase,
	composer PromptComposer,
	llm domain.CompletionClient,
) ChatTurnUsecase {
	return &chatTurnUsecase{
		retrieve: retrieve,
		composer: composer,
		llm:      llm,
	}
}

func (u *chatTurnUsecase) Ready() error {
	if u.llm == nil {
		return domain.ErrNotConfigured
	}
	return nil
}

// Execute runs one whole-response turn. Exactly one retrieval call and one
// completion call happen, never retried. A retrieval outage degrades the turn
// rather than aborting it: the model sees an error description as context.
// Completion failures propagate to the caller.
func (u *chatTurnUsecase) Execute(ctx context.Context, input ChatInput) (*ChatOutput, error) {
	if u.llm == nil {
		return nil, domain.ErrNotConfigured
	}

	ctx = logger.WithTurnID(ctx, uuid.NewString())

	prompt, knowledge := u.prepareTurn(ctx, input)

	text, err := u.llm.Complete(logger.WithStage(ctx, "complete"), prompt)
	if err != nil {
		slog.ErrorContext(ctx, "completion failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}

	return &ChatOutput{
		Response: text,
		Sources: []Source{
			{Type: SourceTypeKnowledgeBase, Content: knowledge},
		},
	}, nil
}

// prepareTurn performs the retrieval and composition stages shared by the
// whole-response and streaming paths. Retrieval never fails the turn here:
// on error the knowledge slot carries a description of the outage instead.
func (u *chatTurnUsecase) prepareTurn(ctx context.Context, input ChatInput) (domain.ComposedPrompt, string) {
	retrieveCtx := logger.WithStage(ctx, "retrieve")
	knowledge, err := u.retrieve.Execute(retrieveCtx, input.Message)
	if err != nil {
		slog.WarnContext(retrieveCtx, "proceeding with degraded context", slog.String("error", err.Error()))
		knowledge = fmt.Sprintf("Error accessing knowledge base: %v", err)
	}

	return u.composer.Compose(input.History, input.Message, knowledge), knowledge
}
