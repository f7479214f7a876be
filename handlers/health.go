package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/upb/text-utility/app"
	"github.com/upb/text-utility/utils"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck returns a simple liveness handler
func HealthCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:    "ok",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// ReadinessCheck verifies the text-generation provider is reachable
func ReadinessCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{}
		status := http.StatusOK
		overall := "ready"

		if deps.Provider == nil {
			checks["provider"] = "not_configured"
			overall = "not_ready"
			status = http.StatusServiceUnavailable
		} else if !deps.Provider.IsAvailable(ctx) {
			checks["provider"] = "unavailable"
			overall = "not_ready"
			status = http.StatusServiceUnavailable
		} else {
			checks["provider"] = "available"
		}

		_ = utils.WriteJSON(w, status, HealthResponse{
			Status:    overall,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    checks,
		})
	}
}
