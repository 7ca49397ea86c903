package chat_http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-orchestrator/internal/adapter/chat_http"
	"chat-orchestrator/internal/domain"
	"chat-orchestrator/internal/stream"
	"chat-orchestrator/internal/usecase"
)

type stubRetrieveUsecase struct {
	text string
	err  error
}

func (s *stubRetrieveUsecase) Execute(ctx context.Context, query string) (string, error) {
	return s.text, s.err
}

type stubChatUsecase struct {
	output *usecase.ChatOutput
	err    error
	events []usecase.StreamEvent
	ready  error

	gotInput usecase.ChatInput
}

func (s *stubChatUsecase) Execute(ctx context.Context, input usecase.ChatInput) (*usecase.ChatOutput, error) {
	s.gotInput = input
	return s.output, s.err
}

func (s *stubChatUsecase) Stream(ctx context.Context, input usecase.ChatInput) <-chan usecase.StreamEvent {
	s.gotInput = input
	events := make(chan usecase.StreamEvent, len(s.events))
	for _, event := range s.events {
		events <- event
	}
	close(events)
	return events
}

func (s *stubChatUsecase) Ready() error { return s.ready }

func doRequest(t *testing.T, handler *chat_http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	handler.Register(e)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth_Shape(t *testing.T) {
	handler := chat_http.NewHandler(&stubChatUsecase{}, &stubRetrieveUsecase{})

	for _, path := range []string{"/health", "/status"} {
		rec := doRequest(t, handler, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body["status"])
		_, err := time.Parse(time.RFC3339, body["timestamp"])
		assert.NoError(t, err, "timestamp must be RFC3339")
	}
}

func TestSearch_OK(t *testing.T) {
	handler := chat_http.NewHandler(&stubChatUsecase{}, &stubRetrieveUsecase{text: "Document 1: info"})

	rec := doRequest(t, handler, http.MethodPost, "/search", `{"query":"tariffs"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "tariffs", body["query"])
	assert.Equal(t, "Document 1: info", body["results"])
}

func TestSearch_EmptyQuery(t *testing.T) {
	handler := chat_http.NewHandler(&stubChatUsecase{}, &stubRetrieveUsecase{})

	rec := doRequest(t, handler, http.MethodPost, "/search", `{"query":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch_RetrievalFailure(t *testing.T) {
	handler := chat_http.NewHandler(&stubChatUsecase{}, &stubRetrieveUsecase{err: errors.New("kb down")})

	rec := doRequest(t, handler, http.MethodPost, "/search", `{"query":"tariffs"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "kb down")
}

func TestSearch_NotConfigured(t *testing.T) {
	handler := chat_http.NewHandler(&stubChatUsecase{}, &stubRetrieveUsecase{err: domain.ErrNotConfigured})

	rec := doRequest(t, handler, http.MethodPost, "/search", `{"query":"tariffs"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Knowledge base client not initialized")
}

func TestChat_OK(t *testing.T) {
	chat := &stubChatUsecase{
		output: &usecase.ChatOutput{
			Response: "the answer",
			Sources: []usecase.Source{
				{Type: usecase.SourceTypeKnowledgeBase, Content: "Document 1: info"},
			},
		},
	}
	handler := chat_http.NewHandler(chat, &stubRetrieveUsecase{})

	rec := doRequest(t, handler, http.MethodPost, "/chat",
		`{"message":"hi","conversation_history":[{"role":"user","content":"earlier"},{"role":"assistant","content":"reply"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Response string `json:"response"`
		Sources  []struct {
			Type    string `json:"type"`
			Content string `json:"content"`
		} `json:"sources"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "the answer", body.Response)
	require.Len(t, body.Sources, 1)
	assert.Equal(t, "knowledge_base", body.Sources[0].Type)

	require.Len(t, chat.gotInput.History, 2)
	assert.Equal(t, domain.Turn{Role: domain.RoleUser, Content: "earlier"}, chat.gotInput.History[0])
	assert.Equal(t, domain.Turn{Role: domain.RoleAssistant, Content: "reply"}, chat.gotInput.History[1])
}

func TestChat_EmptyMessage(t *testing.T) {
	handler := chat_http.NewHandler(&stubChatUsecase{}, &stubRetrieveUsecase{})

	rec := doRequest(t, handler, http.MethodPost, "/chat", `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChat_CompletionFailure(t *testing.T) {
	handler := chat_http.NewHandler(&stubChatUsecase{err: errors.New("model unavailable")}, &stubRetrieveUsecase{})

	rec := doRequest(t, handler, http.MethodPost, "/chat", `{"message":"hi"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "model unavailable")
}

func TestChat_NotConfigured(t *testing.T) {
	handler := chat_http.NewHandler(&stubChatUsecase{err: domain.ErrNotConfigured}, &stubRetrieveUsecase{})

	rec := doRequest(t, handler, http.MethodPost, "/chat", `{"message":"hi"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Bedrock client not initialized")
}

func TestChatStream_FramesDeltasAndOmitsEndMarker(t *testing.T) {
	chat := &stubChatUsecase{
		events: []usecase.StreamEvent{
			{Kind: usecase.StreamEventKindDelta, Payload: "Hel"},
			{Kind: usecase.StreamEventKindDelta, Payload: "lo"},
			{Kind: usecase.StreamEventKindDone, Payload: "Hello"},
		},
	}
	handler := chat_http.NewHandler(chat, &stubRetrieveUsecase{})

	rec := doRequest(t, handler, http.MethodPost, "/chat/stream", `{"message":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/event-stream")

	assert.Equal(t, "data: {\"text\":\"Hel\"}\n\ndata: {\"text\":\"lo\"}\n\n", rec.Body.String())
}

func TestChatStream_ErrorFrameTerminates(t *testing.T) {
	chat := &stubChatUsecase{
		events: []usecase.StreamEvent{
			{Kind: usecase.StreamEventKindDelta, Payload: "partial"},
			{Kind: usecase.StreamEventKindError, Payload: "stream failed: reset"},
			{Kind: usecase.StreamEventKindDelta, Payload: "never sent"},
		},
	}
	handler := chat_http.NewHandler(chat, &stubRetrieveUsecase{})

	rec := doRequest(t, handler, http.MethodPost, "/chat/stream", `{"message":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	parser := stream.NewParser(rec.Body)
	first, err := parser.Next()
	require.NoError(t, err)
	assert.Equal(t, "partial", first.Text)

	second, err := parser.Next()
	require.NoError(t, err)
	assert.Equal(t, "stream failed: reset", second.Error)

	_, err = parser.Next()
	assert.Error(t, err, "nothing follows the error frame")
}

func TestChatStream_NotConfigured(t *testing.T) {
	handler := chat_http.NewHandler(&stubChatUsecase{ready: domain.ErrNotConfigured}, &stubRetrieveUsecase{})

	rec := doRequest(t, handler, http.MethodPost, "/chat/stream", `{"message":"hi"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Bedrock client not initialized")
}
