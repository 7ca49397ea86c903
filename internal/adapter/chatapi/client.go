// Package chatapi is the Go client for the chat-orchestrator HTTP API. It is
// what chatctl uses in place of the browser frontend.
package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chat-orchestrator/internal/infra/httpclient"
	"chat-orchestrator/internal/stream"
)

// Message mirrors one conversation turn on the wire.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Source mirrors one answer source on the wire.
type Source struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// HealthStatus is the /health and /status response shape.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// SearchResult is the /search response shape.
type SearchResult struct {
	Query   string `json:"query"`
	Results string `json:"results"`
}

// ChatReply is the /chat response shape.
type ChatReply struct {
	Response string   `json:"response"`
	Sources  []Source `json:"sources"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	// streamClient has no timeout: http.Client.Timeout bounds the whole
	// exchange including body reads, which would cut off a reply that
	// streams for longer than the unary deadline.
	streamClient *http.Client
}

// NewClient creates a client for the given backend base URL. The timeout
// applies to the unary endpoints only; streaming relies on context
// cancellation instead.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   httpclient.NewPooledClient(timeout),
		streamClient: httpclient.NewPooledClient(0),
	}
}

// Health probes service liveness.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.getJSON(ctx, "/health", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Search queries the knowledge base directly.
func (c *Client) Search(ctx context.Context, query string) (*SearchResult, error) {
	var result SearchResult
	if err := c.postJSON(ctx, "/search", map[string]string{"query": query}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Chat runs one whole-response turn.
func (c *Client) Chat(ctx context.Context, message string, history []Message) (*ChatReply, error) {
	body := map[string]any{
		"message":              message,
		"conversation_history": history,
	}
	var reply ChatReply
	if err := c.postJSON(ctx, "/chat", body, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// ChatStream runs one streamed turn, invoking onDelta for each text fragment
// as it arrives, and returns the accumulated response. An error frame from
// the server terminates the stream; text already delivered stays delivered.
func (c *Client) ChatStream(ctx context.Context, message string, history []Message, onDelta func(string)) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"message":              message,
		"conversation_history": history,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal stream request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/stream", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create stream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to open chat stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeError(resp)
	}

	var builder strings.Builder
	parser := stream.NewParser(resp.Body)
	for {
		frame, err := parser.Next()
		if errors.Is(err, io.EOF) {
			return builder.String(), nil
		}
		if err != nil {
			return builder.String(), fmt.Errorf("stream transport failed: %w", err)
		}
		if frame.Error != "" {
			return builder.String(), fmt.Errorf("stream failed: %s", frame.Error)
		}
		if frame.Text == "" {
			continue
		}
		builder.WriteString(frame.Text)
		if onDelta != nil {
			onDelta(frame.Text)
		}
	}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.doJSON(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var detail struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &detail); err == nil && detail.Error != "" {
		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, detail.Error)
	}
	return fmt.Errorf("backend returned %d: %s", resp.StatusCode, string(body))
}
