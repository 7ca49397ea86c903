package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"chat-orchestrator/internal/domain"
)

// NoKnowledgeSentinel fills the knowledge slot when the corpus has nothing
// relevant, so downstream composition never embeds an empty block.
const NoKnowledgeSentinel = "No relevant information found in the knowledge base."

// RetrieveKnowledgeUsecase runs one retrieval query and flattens the hits
// into the text block that feeds prompt composition.
type RetrieveKnowledgeUsecase interface {
	Execute(ctx context.Context, query string) (string, error)
}

type retrieveKnowledgeUsecase struct {
	retriever domain.KnowledgeRetriever
}

// NewRetrieveKnowledgeUsecase wraps a knowledge retriever with result
// normalization.
func NewRetrieveKnowledgeUsecase(retriever domain.KnowledgeRetriever) RetrieveKnowledgeUsecase {
	return &retrieveKnowledgeUsecase{retriever: retriever}
}

// Execute issues exactly one retrieval call. Hits are joined in rank order,
// each prefixed with a 1-based ordinal label and separated by a blank line.
// Zero hits yield the sentinel string. Transport failures are returned as
// errors; the caller decides whether to degrade or abort.
func (u *retrieveKnowledgeUsecase) Execute(ctx context.Context, query string) (string, error) {
	if u.retriever == nil {
		return "", domain.ErrNotConfigured
	}

	docs, err := u.retriever.Retrieve(ctx, query)
	if err != nil {
		slog.ErrorContext(ctx, "knowledge base retrieval failed", slog.String("error", err.Error()))
		return "", fmt.Errorf("failed to retrieve from knowledge base: %w", err)
	}

	if len(docs) == 0 {
		return NoKnowledgeSentinel, nil
	}

	parts := make([]string, len(docs))
	for i, doc := range docs {
		parts[i] = fmt.Sprintf("Document %d: %s", i+1, doc.Text)
	}
	return strings.Join(parts, "\n\n"), nil
}
