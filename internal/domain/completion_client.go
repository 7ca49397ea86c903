package domain

import "context"

// CompletionClient defines the capability to send a composed prompt to the
// inference provider and receive generated text, whole or incrementally.
type CompletionClient interface {
	// Complete blocks until the provider returns the full response text.
	Complete(ctx context.Context, prompt ComposedPrompt) (string, error)
	// CompleteStream opens a streaming completion. Chunks arrive on the first
	// channel; a provider-side failure arrives once on the second, after which
	// both channels are closed. Channel closure signals end of stream.
	CompleteStream(ctx context.Context, prompt ComposedPrompt) (<-chan CompletionChunk, <-chan error, error)
	// Model returns the provider model identifier in use.
	Model() string
}
