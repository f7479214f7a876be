package textgen

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/upb/text-utility/metrics"
	"github.com/upb/text-utility/observability"
	"github.com/upb/text-utility/prompts"
	"github.com/upb/text-utility/services"
	"github.com/upb/text-utility/services/providers"
	"go.uber.org/zap"
)

// Defaults are applied to ask requests that omit the optional fields.
type Defaults struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// AskRequest is a single question for the text utility.
type AskRequest struct {
	Question    string  `json:"question" validate:"required,min=1,max=4000"`
	Model       string  `json:"model,omitempty" validate:"omitempty,max=64"`
	TaskType    string  `json:"task_type,omitempty" validate:"omitempty,max=32"`
	Context     string  `json:"context,omitempty" validate:"omitempty,max=8000"`
	MaxTokens   int     `json:"max_tokens,omitempty" validate:"omitempty,min=1,max=4096"`
	Temperature float64 `json:"temperature,omitempty" validate:"omitempty,min=0,max=2"`
}

// TokenUsage reports the token accounting for one answer.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Answer is the response for one ask request.
type Answer struct {
	RequestID      string     `json:"request_id"`
	Answer         string     `json:"answer"`
	Model          string     `json:"model"`
	TaskType       string     `json:"task_type"`
	FinishReason   string     `json:"finish_reason"`
	Usage          TokenUsage `json:"usage"`
	LatencySeconds float64    `json:"latency_seconds"`
	CostUSD        float64    `json:"cost_usd"`
	Timestamp      time.Time  `json:"timestamp"`
}

// Service orchestrates a text-generation request: prompt assembly,
// provider invocation, and metering of the observed usage.
type Service struct {
	provider  providers.Provider
	prices    metrics.PriceTable
	tracker   *metrics.Tracker
	collector *observability.Collector
	defaults  Defaults
	logger    *zap.Logger
}

// NewService creates a new text-generation service
func NewService(
	provider providers.Provider,
	prices metrics.PriceTable,
	tracker *metrics.Tracker,
	collector *observability.Collector,
	defaults Defaults,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		provider:  provider,
		prices:    prices,
		tracker:   tracker,
		collector: collector,
		defaults:  defaults,
		logger:    logger,
	}
}

// Ask answers a question and records the request in the metrics tracker.
// Usage is metered only for requests the provider actually served;
// failed calls are counted in the Prometheus collector under the
// "error" status but never reach the tracker.
func (s *Service) Ask(ctx context.Context, req *AskRequest) (*Answer, error) {
	requestID := uuid.New().String()

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, services.ErrEmptyQuestion
	}

	model := req.Model
	if model == "" {
		model = s.defaults.Model
	}
	if _, ok := s.prices[model]; !ok {
		return nil, services.NewDomainError(services.ErrorTypeValidation, "invalid model specified", nil).
			WithDetail("model", model).
			WithDetail("supported", s.Models())
	}

	taskType := req.TaskType
	if taskType == "" {
		taskType = prompts.TaskTypeGeneral
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = s.defaults.MaxTokens
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = s.defaults.Temperature
	}

	conversation := prompts.BuildConversation(question, taskType, req.Context)
	chatReq := &providers.ChatRequest{
		Model:       model,
		Messages:    make([]providers.Message, len(conversation)),
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	for i, msg := range conversation {
		chatReq.Messages[i] = providers.Message{Role: msg.Role, Content: msg.Content}
	}

	s.logger.Info("dispatching completion",
		zap.String("request_id", requestID),
		zap.String("model", model),
		zap.String("task_type", taskType),
		zap.String("provider", s.provider.Name()))

	resp, err := s.provider.ChatCompletion(ctx, chatReq)
	if err != nil {
		s.collector.RecordRequest(model, "error", 0, 0, 0, 0)
		s.logger.Error("completion failed",
			zap.String("request_id", requestID),
			zap.String("model", model),
			zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, services.ErrProviderTimeout
		}
		return nil, services.WrapExternal("text-generation provider error", err)
	}

	// Metering keys on the validated requested model. Providers report
	// versioned snapshot ids (e.g. gpt-4o-mini-2024-07-18) that the
	// price table does not carry.
	latency := resp.Latency.Seconds()
	recordedAt := time.Now().UTC()
	measurement := metrics.Measurement{
		Model:          model,
		InputTokens:    resp.Usage.PromptTokens,
		OutputTokens:   resp.Usage.CompletionTokens,
		LatencySeconds: latency,
		FinishReason:   resp.FinishReason,
		Timestamp:      recordedAt,
	}
	s.tracker.Record(measurement)

	cost, _ := s.prices.Cost(model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	s.collector.RecordRequest(model, "success", resp.Latency,
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens, cost)

	s.logger.Info("completion served",
		zap.String("request_id", requestID),
		zap.String("model", model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Float64("cost_usd", cost),
		zap.Float64("latency_seconds", latency))

	return &Answer{
		RequestID:    requestID,
		Answer:       resp.Content,
		Model:        model,
		TaskType:     taskType,
		FinishReason: resp.FinishReason,
		Usage: TokenUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
		LatencySeconds: math.Round(latency*1e3) / 1e3,
		CostUSD:        math.Round(cost*1e6) / 1e6,
		Timestamp:      recordedAt,
	}, nil
}

// Models lists the models the service accepts, sorted for stable output.
func (s *Service) Models() []string {
	models := s.prices.Models()
	sort.Strings(models)
	return models
}

// TaskTypes lists the supported task types.
func (s *Service) TaskTypes() []string {
	return prompts.TaskTypes()
}
