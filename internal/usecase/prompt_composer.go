package usecase

import (
	"fmt"

	"chat-orchestrator/internal/domain"
)

// DefaultSystemInstruction is the assistant persona sent with every turn. It
// is static and never personalized per request.
const DefaultSystemInstruction = "You are a helpful AI assistant for Azercell Telecom. " +
	"You have access to company policies, procedures, and information. " +
	"Always provide accurate, helpful responses based on the available information. " +
	"Be professional and courteous."

const enhancedMessageTemplate = `### Knowledge Base Information:
%s

### User Question:
%s

Please provide a helpful response based on the knowledge base information above. If the information is not sufficient, use your general knowledge to provide a helpful response.`

// PromptComposer builds the provider-bound message list for one turn.
type PromptComposer interface {
	Compose(history []domain.Turn, message, knowledge string) domain.ComposedPrompt
}

type promptComposer struct {
	systemInstruction string
}

// NewPromptComposer creates a composer that attaches the given system
// instruction to every prompt it builds.
func NewPromptComposer(systemInstruction string) PromptComposer {
	return &promptComposer{systemInstruction: systemInstruction}
}

// Compose appends the new message as a trailing user turn, then rewrites that
// turn's content with the fixed template embedding the retrieved knowledge and
// the literal question. History entries pass through verbatim, in order. The
// transformation is pure; the caller's history slice is never mutated.
func (c *promptComposer) Compose(history []domain.Turn, message, knowledge string) domain.ComposedPrompt {
	messages := make([]domain.Turn, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, domain.Turn{
		Role:    domain.RoleUser,
		Content: fmt.Sprintf(enhancedMessageTemplate, knowledge, message),
	})

	return domain.ComposedPrompt{
		System:   c.systemInstruction,
		Messages: messages,
	}
}
