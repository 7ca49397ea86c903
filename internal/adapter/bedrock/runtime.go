package bedrock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"chat-orchestrator/internal/domain"
)

// Generation parameters are pinned; the provider API version in particular
// must match what the model family expects.
const (
	anthropicVersion   = "bedrock-2023-05-31"
	defaultMaxTokens   = 1024
	defaultTemperature = 0.5
)

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Temperature      float64            `json:"temperature"`
	Messages         []anthropicMessage `json:"messages"`
	System           string             `json:"system,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

type anthropicStreamChunk struct {
	Type  string `json:"type"`
	Delta struct {
		Text string `json:"text"`
	} `json:"delta"`
}

// runtimeAPI is the slice of the bedrock-runtime client this gateway uses.
type runtimeAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
	InvokeModelWithResponseStream(ctx context.Context, params *bedrockruntime.InvokeModelWithResponseStreamInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelWithResponseStreamOutput, error)
}

// RuntimeGateway sends composed prompts to the Bedrock runtime and maps the
// provider envelope to plain text, whole or as an incremental stream.
type RuntimeGateway struct {
	api     runtimeAPI
	modelID string
}

// NewRuntimeGateway constructs a gateway bound to a single model identifier.
func NewRuntimeGateway(api runtimeAPI, modelID string) *RuntimeGateway {
	return &RuntimeGateway{
		api:     api,
		modelID: modelID,
	}
}

// Complete blocks until the provider returns the full response, then extracts
// the first content block's text.
func (g *RuntimeGateway) Complete(ctx context.Context, prompt domain.ComposedPrompt) (string, error) {
	if g == nil || g.api == nil {
		return "", domain.ErrNotConfigured
	}

	body, err := requestBody(prompt)
	if err != nil {
		return "", err
	}

	out, err := g.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(g.modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke model: %w", err)
	}

	var decoded anthropicResponse
	if err := json.Unmarshal(out.Body, &decoded); err != nil {
		return "", fmt.Errorf("failed to decode model response: %w", err)
	}
	if len(decoded.Content) == 0 {
		return "", fmt.Errorf("model response contained no content blocks")
	}

	return decoded.Content[0].Text, nil
}

// CompleteStream opens one streaming completion. A pump goroutine re-frames
// the provider's event stream into chunk values; frames without a usable text
// delta are skipped. A provider-side failure is delivered once on the error
// channel. Both channels close when the stream is over.
func (g *RuntimeGateway) CompleteStream(ctx context.Context, prompt domain.ComposedPrompt) (<-chan domain.CompletionChunk, <-chan error, error) {
	if g == nil || g.api == nil {
		return nil, nil, domain.ErrNotConfigured
	}

	body, err := requestBody(prompt)
	if err != nil {
		return nil, nil, err
	}

	out, err := g.api.InvokeModelWithResponseStream(ctx, &bedrockruntime.InvokeModelWithResponseStreamInput{
		ModelId:     aws.String(g.modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open completion stream: %w", err)
	}

	stream := out.GetStream()
	chunks := make(chan domain.CompletionChunk, 1)
	errs := make(chan error, 1)

	go func() {
		defer stream.Close()
		pumpStream(ctx, stream.Events(), stream.Err, chunks, errs)
	}()

	return chunks, errs, nil
}

// Model returns the bound model identifier.
func (g *RuntimeGateway) Model() string {
	return g.modelID
}

func requestBody(prompt domain.ComposedPrompt) ([]byte, error) {
	messages := make([]anthropicMessage, len(prompt.Messages))
	for i, turn := range prompt.Messages {
		messages[i] = anthropicMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		}
	}

	body, err := json.Marshal(anthropicRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        defaultMaxTokens,
		Temperature:      defaultTemperature,
		Messages:         messages,
		System:           prompt.System,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completion request: %w", err)
	}
	return body, nil
}

// pumpStream drains the provider event channel into chunk values. It owns
// both outbound channels and closes them on return. streamErr reports the
// terminal state of the transport once the event channel is exhausted.
func pumpStream(
	ctx context.Context,
	events <-chan brtypes.ResponseStream,
	streamErr func() error,
	chunks chan<- domain.CompletionChunk,
	errs chan<- error,
) {
	defer close(errs)
	defer close(chunks)

	for event := range events {
		part, ok := event.(*brtypes.ResponseStreamMemberChunk)
		if !ok {
			// Metadata frames carry no delta.
			continue
		}

		var decoded anthropicStreamChunk
		if err := json.Unmarshal(part.Value.Bytes, &decoded); err != nil {
			continue
		}
		if decoded.Type == "message_stop" {
			select {
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			case chunks <- domain.CompletionChunk{Done: true}:
			}
			continue
		}
		if decoded.Delta.Text == "" {
			continue
		}

		select {
		case <-ctx.Done():
			errs <- ctx.Err()
			return
		case chunks <- domain.CompletionChunk{Text: decoded.Delta.Text}:
		}
	}

	if err := streamErr(); err != nil {
		errs <- fmt.Errorf("completion stream failed: %w", err)
	}
}

var _ domain.CompletionClient = (*RuntimeGateway)(nil)
