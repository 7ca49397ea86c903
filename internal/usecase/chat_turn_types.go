package usecase

import "chat-orchestrator/internal/domain"

// ChatInput carries one inbound turn: the new message plus the fully formed
// conversation history supplied by the caller. The core never persists it.
type ChatInput struct {
	Message string
	History []domain.Turn
}

// Source describes one piece of supporting material attached to an answer.
type Source struct {
	Type    string
	Content string
}

// SourceTypeKnowledgeBase labels sources that came from the retrieval corpus.
const SourceTypeKnowledgeBase = "knowledge_base"

// ChatOutput is the whole-response result of one turn.
type ChatOutput struct {
	Response string
	Sources  []Source
}

// StreamEventKind tags the events emitted during a streamed turn.
type StreamEventKind string

const (
	// StreamEventKindDelta carries one non-empty increment of answer text.
	StreamEventKindDelta StreamEventKind = "delta"
	// StreamEventKindError carries a terminal failure message; nothing
	// follows it. Text already delivered stays delivered.
	StreamEventKindError StreamEventKind = "error"
	// StreamEventKindDone carries the accumulated answer after a clean
	// provider stream exhaustion. The events channel closes right after.
	StreamEventKindDone StreamEventKind = "done"
)

// StreamEvent is one normalized event in a streamed turn. The channel closing
// signals end of stream; there is no explicit end marker on the wire.
type StreamEvent struct {
	Kind    StreamEventKind
	Payload string
}
