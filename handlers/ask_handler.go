package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/upb/text-utility/services/textgen"
	"github.com/upb/text-utility/utils"
	"go.uber.org/zap"
)

// TextGenService defines the interface for text-generation operations
type TextGenService interface {
	Ask(ctx context.Context, req *textgen.AskRequest) (*textgen.Answer, error)
	Models() []string
	TaskTypes() []string
}

// AskHandler handles question-answering HTTP requests
type AskHandler struct {
	service TextGenService
	logger  *zap.Logger
}

// NewAskHandler creates a new AskHandler
func NewAskHandler(service TextGenService, logger *zap.Logger) *AskHandler {
	return &AskHandler{
		service: service,
		logger:  logger,
	}
}

// HandleAsk handles POST /api/v1/ask
func (h *AskHandler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	var req textgen.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to parse request body", zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		h.logger.Warn("request validation failed", zap.Error(err))
		HandleValidationError(w, err, h.logger)
		return
	}

	answer, err := h.service.Ask(r.Context(), &req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteJSON(w, http.StatusOK, answer)
}

// HandleModels handles GET /api/v1/models
func (h *AskHandler) HandleModels(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"models": h.service.Models(),
	})
}

// HandleTaskTypes handles GET /api/v1/task-types
func (h *AskHandler) HandleTaskTypes(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"task_types": h.service.TaskTypes(),
	})
}
