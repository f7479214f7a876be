package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/upb/text-utility/metrics"
	"github.com/upb/text-utility/reports"
	"github.com/upb/text-utility/services"
	"go.uber.org/zap"
)

// SnapshotSource yields the current metering aggregate.
type SnapshotSource interface {
	Snapshot() metrics.Snapshot
}

// ReportsHandler handles report generation HTTP requests
type ReportsHandler struct {
	source         SnapshotSource
	generator      *reports.Generator
	persistDefault bool
	logger         *zap.Logger
}

// NewReportsHandler creates a new ReportsHandler
func NewReportsHandler(source SnapshotSource, generator *reports.Generator, persistDefault bool, logger *zap.Logger) *ReportsHandler {
	return &ReportsHandler{
		source:         source,
		generator:      generator,
		persistDefault: persistDefault,
		logger:         logger,
	}
}

// HandleGenerate handles POST /api/v1/reports/generate.
//
// Query parameters:
//   - format: "json" (default) or "csv"
//   - persist: write the report through the configured sink
//
// The serialized document is always the response body. A failed sink
// write is reported via the X-Report-Persisted and X-Report-Error
// headers instead of an error status so the computed report is never
// lost.
func (h *ReportsHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	formatParam := r.URL.Query().Get("format")
	if formatParam == "" {
		formatParam = string(reports.FormatJSON)
	}
	format, err := reports.ParseFormat(formatParam)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	persist := h.persistDefault
	if persistParam := r.URL.Query().Get("persist"); persistParam != "" {
		persist, err = strconv.ParseBool(persistParam)
		if err != nil {
			HandleServiceError(w, services.NewDomainError(services.ErrorTypeValidation,
				"persist must be a boolean", nil).WithDetail("persist", persistParam), h.logger)
			return
		}
	}

	result, err := h.generator.Generate(r.Context(), h.source.Snapshot(), format, persist)
	if err != nil {
		if result == nil || !services.IsSinkWriteError(err) {
			HandleServiceError(w, err, h.logger)
			return
		}
		// The document was generated; only persistence failed.
		h.logger.Error("report generated but not persisted",
			zap.String("filename", result.Filename),
			zap.Error(err))
		w.Header().Set("X-Report-Persisted", "false")
		w.Header().Set("X-Report-Error", err.Error())
	}

	switch format {
	case reports.FormatCSV:
		w.Header().Set("Content-Type", "text/csv")
	default:
		w.Header().Set("Content-Type", "application/json")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	if result.Location != "" {
		w.Header().Set("X-Report-Location", result.Location)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}
