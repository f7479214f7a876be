package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/upb/text-utility/services/providers"
)

func completionPayload(model string) map[string]interface{} {
	return map[string]interface{}{
		"id":      "chatcmpl-123",
		"object":  "chat.completion",
		"created": 1735689600,
		"model":   model,
		"choices": []map[string]interface{}{
			{
				"index": 0,
				"message": map[string]string{
					"role":    "assistant",
					"content": "Go is a programming language.",
				},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]int{
			"prompt_tokens":     42,
			"completion_tokens": 12,
			"total_tokens":      54,
		},
	}
}

func TestNewAdapter_Defaults(t *testing.T) {
	adapter := NewAdapter(providers.Config{APIKey: "test-key"})

	if adapter == nil {
		t.Fatal("NewAdapter() returned nil")
	}
	if adapter.Name() != "openai" {
		t.Errorf("Name() = %s, want openai", adapter.Name())
	}
	if adapter.config.BaseURL != defaultBaseURL {
		t.Errorf("BaseURL = %s, want %s", adapter.config.BaseURL, defaultBaseURL)
	}
	if adapter.config.Timeout == 0 {
		t.Error("Timeout not defaulted")
	}
}

func TestAdapter_ChatCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %s", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("model = %s", req.Model)
		}
		if len(req.Messages) != 2 {
			t.Errorf("messages = %d, want 2", len(req.Messages))
		}
		if req.MaxTokens == nil || *req.MaxTokens != 500 {
			t.Error("max_tokens not forwarded")
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionPayload(req.Model))
	}))
	defer server.Close()

	adapter := NewAdapter(providers.Config{APIKey: "test-key", BaseURL: server.URL})

	resp, err := adapter.ChatCompletion(context.Background(), &providers.ChatRequest{
		Model: "gpt-4o-mini",
		Messages: []providers.Message{
			{Role: "system", Content: "You are helpful."},
			{Role: "user", Content: "What is Go?"},
		},
		MaxTokens:   500,
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("ChatCompletion() error: %v", err)
	}

	if resp.Content != "Go is a programming language." {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.FinishReason != "stop" {
		t.Errorf("FinishReason = %s", resp.FinishReason)
	}
	if resp.Usage.PromptTokens != 42 || resp.Usage.CompletionTokens != 12 || resp.Usage.TotalTokens != 54 {
		t.Errorf("Usage = %+v", resp.Usage)
	}
	if resp.Latency <= 0 {
		t.Error("Latency not recorded")
	}
}

func TestAdapter_ChatCompletion_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Incorrect API key provided"}}`))
	}))
	defer server.Close()

	adapter := NewAdapter(providers.Config{APIKey: "bad-key", BaseURL: server.URL})

	_, err := adapter.ChatCompletion(context.Background(), &providers.ChatRequest{
		Model:    "gpt-4o-mini",
		Messages: []providers.Message{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected error")
	}

	var provErr *providers.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("error type = %T, want *ProviderError", err)
	}
	if provErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d", provErr.StatusCode)
	}
	if provErr.IsRetryable() {
		t.Error("401 must not be retryable")
	}
}

func TestAdapter_ChatCompletion_RetriesOn5xx(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"type":"server_error","message":"upstream broke"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionPayload("gpt-4o-mini"))
	}))
	defer server.Close()

	adapter := NewAdapter(providers.Config{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	})

	resp, err := adapter.ChatCompletion(context.Background(), &providers.ChatRequest{
		Model:    "gpt-4o-mini",
		Messages: []providers.Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("ChatCompletion() error: %v", err)
	}
	if resp.Content == "" {
		t.Error("empty content after retry")
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestAdapter_ChatCompletion_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"x","model":"gpt-4o-mini","choices":[],"usage":{}}`))
	}))
	defer server.Close()

	adapter := NewAdapter(providers.Config{APIKey: "k", BaseURL: server.URL})

	_, err := adapter.ChatCompletion(context.Background(), &providers.ChatRequest{
		Model:    "gpt-4o-mini",
		Messages: []providers.Message{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestAdapter_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	adapter := NewAdapter(providers.Config{APIKey: "k", BaseURL: server.URL})
	if !adapter.IsAvailable(context.Background()) {
		t.Error("IsAvailable() = false, want true")
	}

	server.Close()
	if adapter.IsAvailable(context.Background()) {
		t.Error("IsAvailable() = true after server shutdown")
	}
}
