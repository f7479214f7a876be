package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/text-utility/services"
	"github.com/upb/text-utility/services/textgen"
	"github.com/upb/text-utility/utils"
	"go.uber.org/zap"
)

type mockTextGenService struct {
	mock.Mock
}

func (m *mockTextGenService) Ask(ctx context.Context, req *textgen.AskRequest) (*textgen.Answer, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*textgen.Answer), args.Error(1)
}

func (m *mockTextGenService) Models() []string {
	return m.Called().Get(0).([]string)
}

func (m *mockTextGenService) TaskTypes() []string {
	return m.Called().Get(0).([]string)
}

func TestAskHandler_HandleAsk(t *testing.T) {
	service := new(mockTextGenService)
	service.On("Ask", mock.Anything, mock.MatchedBy(func(req *textgen.AskRequest) bool {
		return req.Question == "What is Go?"
	})).Return(&textgen.Answer{
		RequestID:      "req-1",
		Answer:         "A programming language.",
		Model:          "gpt-4o-mini",
		TaskType:       "general",
		FinishReason:   "stop",
		Usage:          textgen.TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
		LatencySeconds: 0.5,
		CostUSD:        0.000005,
	}, nil)

	handler := NewAskHandler(service, zap.NewNop())

	body, _ := json.Marshal(map[string]string{"question": "What is Go?"})
	w := httptest.NewRecorder()
	handler.HandleAsk(w, httptest.NewRequest("POST", "/api/v1/ask", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)

	var answer textgen.Answer
	require.NoError(t, json.NewDecoder(w.Body).Decode(&answer))
	assert.Equal(t, "req-1", answer.RequestID)
	assert.Equal(t, "A programming language.", answer.Answer)
	assert.Equal(t, 15, answer.Usage.TotalTokens)

	service.AssertExpectations(t)
}

func TestAskHandler_HandleAsk_InvalidBody(t *testing.T) {
	handler := NewAskHandler(new(mockTextGenService), zap.NewNop())

	w := httptest.NewRecorder()
	handler.HandleAsk(w, httptest.NewRequest("POST", "/api/v1/ask", bytes.NewReader([]byte("{not json"))))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAskHandler_HandleAsk_MissingQuestion(t *testing.T) {
	handler := NewAskHandler(new(mockTextGenService), zap.NewNop())

	w := httptest.NewRecorder()
	handler.HandleAsk(w, httptest.NewRequest("POST", "/api/v1/ask", bytes.NewReader([]byte(`{}`))))

	require.Equal(t, http.StatusBadRequest, w.Code)

	var response utils.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Contains(t, response.Details, "Question")
}

func TestAskHandler_HandleAsk_ServiceError(t *testing.T) {
	service := new(mockTextGenService)
	service.On("Ask", mock.Anything, mock.Anything).
		Return(nil, services.WrapExternal("text-generation provider error", nil))

	handler := NewAskHandler(service, zap.NewNop())

	body, _ := json.Marshal(map[string]string{"question": "hi"})
	w := httptest.NewRecorder()
	handler.HandleAsk(w, httptest.NewRequest("POST", "/api/v1/ask", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestAskHandler_HandleModels(t *testing.T) {
	service := new(mockTextGenService)
	service.On("Models").Return([]string{"gpt-3.5-turbo", "gpt-4o", "gpt-4o-mini"})

	handler := NewAskHandler(service, zap.NewNop())

	w := httptest.NewRecorder()
	handler.HandleModels(w, httptest.NewRequest("GET", "/api/v1/models", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Models []string `json:"models"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, []string{"gpt-3.5-turbo", "gpt-4o", "gpt-4o-mini"}, response.Models)
}

func TestAskHandler_HandleTaskTypes(t *testing.T) {
	service := new(mockTextGenService)
	service.On("TaskTypes").Return([]string{"general", "technical"})

	handler := NewAskHandler(service, zap.NewNop())

	w := httptest.NewRecorder()
	handler.HandleTaskTypes(w, httptest.NewRequest("GET", "/api/v1/task-types", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		TaskTypes []string `json:"task_types"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, []string{"general", "technical"}, response.TaskTypes)
}
