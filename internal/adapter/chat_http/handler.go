package chat_http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"chat-orchestrator/internal/domain"
	"chat-orchestrator/internal/usecase"
)

type Handler struct {
	chat     usecase.ChatTurnUsecase
	retrieve usecase.RetrieveKnowledgeUsecase
}

func NewHandler(chat usecase.ChatTurnUsecase, retrieve usecase.RetrieveKnowledgeUsecase) *Handler {
	return &Handler{
		chat:     chat,
		retrieve: retrieve,
	}
}

// Register mounts all routes on the given echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/status", h.Health)
	e.POST("/search", h.Search)
	e.POST("/chat", h.Chat)
	e.POST("/chat/stream", h.ChatStream)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Message             string        `json:"message"`
	ConversationHistory []chatMessage `json:"conversation_history"`
}

type chatSource struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type chatResponse struct {
	Response string       `json:"response"`
	Sources  []chatSource `json:"sources"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Query   string `json:"query"`
	Results string `json:"results"`
}

// streamFrame is the wire shape of one chat/stream event: exactly one of the
// two fields is set.
type streamFrame struct {
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// Health reports service liveness.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Search runs one knowledge-base query and returns the normalized text.
// Retrieval failures surface here as 500s, unlike the chat path which
// degrades instead.
func (h *Handler) Search(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if strings.TrimSpace(req.Query) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "query is required"})
	}

	results, err := h.retrieve.Execute(c.Request().Context(), req.Query)
	if err != nil {
		if errors.Is(err, domain.ErrNotConfigured) {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Knowledge base client not initialized"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, searchResponse{
		Query:   req.Query,
		Results: results,
	})
}

// Chat runs one whole-response turn.
func (h *Handler) Chat(c echo.Context) error {
	input, ok := bindChatRequest(c)
	if !ok {
		return nil
	}

	output, err := h.chat.Execute(c.Request().Context(), *input)
	if err != nil {
		if errors.Is(err, domain.ErrNotConfigured) {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Bedrock client not initialized"})
		}
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	sources := make([]chatSource, 0, len(output.Sources))
	for _, s := range output.Sources {
		sources = append(sources, chatSource{Type: s.Type, Content: s.Content})
	}

	return c.JSON(http.StatusOK, chatResponse{
		Response: output.Response,
		Sources:  sources,
	})
}

// ChatStream runs one turn as a chunked event stream. Each frame is a
// "data: {json}" line followed by a blank line; there is no end marker, the
// client treats stream closure as completion.
func (h *Handler) ChatStream(c echo.Context) error {
	input, ok := bindChatRequest(c)
	if !ok {
		return nil
	}

	if err := h.chat.Ready(); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Bedrock client not initialized"})
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream; charset=utf-8")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no") // disable proxy buffering
	c.Response().WriteHeader(http.StatusOK)

	events := h.chat.Stream(c.Request().Context(), *input)
	for event := range events {
		switch event.Kind {
		case usecase.StreamEventKindDelta:
			if err := writeFrame(c, streamFrame{Text: event.Payload}); err != nil {
				return err
			}
		case usecase.StreamEventKindError:
			if err := writeFrame(c, streamFrame{Error: event.Payload}); err != nil {
				return err
			}
			return nil
		case usecase.StreamEventKindDone:
			slog.InfoContext(c.Request().Context(), "chat stream delivered",
				slog.Int("response_length", len(event.Payload)))
		}
	}
	return nil
}

func writeFrame(c echo.Context, frame streamFrame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Response(), "data: %s\n\n", payload); err != nil {
		return err
	}
	c.Response().Flush()
	return nil
}

// bindChatRequest decodes and validates the shared chat request shape. On
// failure it writes the 400 response itself and reports ok=false.
func bindChatRequest(c echo.Context) (*usecase.ChatInput, bool) {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return nil, false
	}
	if strings.TrimSpace(req.Message) == "" {
		_ = c.JSON(http.StatusBadRequest, map[string]string{"error": "message is required"})
		return nil, false
	}

	history := make([]domain.Turn, 0, len(req.ConversationHistory))
	for _, msg := range req.ConversationHistory {
		history = append(history, domain.Turn{
			Role:    domain.Role(msg.Role),
			Content: msg.Content,
		})
	}

	return &usecase.ChatInput{
		Message: req.Message,
		History: history,
	}, true
}
