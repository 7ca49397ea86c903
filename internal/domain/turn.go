package domain

// Role identifies which side of the conversation produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation. Turns are immutable once created;
// the ordered slice of turns is the conversation history, oldest first.
type Turn struct {
	Role    Role
	Content string
}

// ComposedPrompt is the provider-bound form of one turn: a static system
// instruction plus the full message list, where the trailing user turn has
// been rewritten to embed the retrieved knowledge and the original question.
type ComposedPrompt struct {
	System   string
	Messages []Turn
}

// Document is a single retrieval hit. Rank is implied by slice position and
// is provider-assigned; it is never re-sorted.
type Document struct {
	Text string
}

// CompletionChunk is one incremental fragment of a streamed completion.
type CompletionChunk struct {
	Text string
	Done bool
}
