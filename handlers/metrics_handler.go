package handlers

import (
	"net/http"
	"time"

	"github.com/upb/text-utility/metrics"
	"github.com/upb/text-utility/reports"
	"github.com/upb/text-utility/utils"
	"go.uber.org/zap"
)

// MetricsHandler handles usage summary HTTP requests
type MetricsHandler struct {
	tracker *metrics.Tracker
	logger  *zap.Logger
}

// NewMetricsHandler creates a new MetricsHandler
func NewMetricsHandler(tracker *metrics.Tracker, logger *zap.Logger) *MetricsHandler {
	return &MetricsHandler{
		tracker: tracker,
		logger:  logger,
	}
}

// HandleSummary handles GET /api/v1/metrics/summary. The summary applies
// the same display rounding as generated reports.
func (h *MetricsHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	snap := h.tracker.Snapshot()
	report := reports.BuildReport(snap, time.Now().UTC())

	_ = utils.WriteJSON(w, http.StatusOK, report.Summary)
}

// HandleReset handles POST /api/v1/metrics/reset
func (h *MetricsHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.tracker.Reset()
	h.logger.Info("metrics tracker reset")

	_ = utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
