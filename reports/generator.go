package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/upb/text-utility/metrics"
	"github.com/upb/text-utility/services"
	"go.uber.org/zap"
)

// Format identifies a report serialization format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Extension returns the file extension for the format.
func (f Format) Extension() string {
	return string(f)
}

// ParseFormat validates a requested format string. Unrecognized values are
// rejected, never silently defaulted.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", services.NewDomainError(services.ErrorTypeUnsupportedFormat,
			fmt.Sprintf("unsupported report format %q", s), nil).
			WithDetail("format", s).
			WithDetail("supported", []string{string(FormatJSON), string(FormatCSV)})
	}
}

// Summary mirrors the snapshot totals with display rounding applied.
type Summary struct {
	TotalRequests         int64    `json:"total_requests"`
	TotalCostUSD          float64  `json:"total_cost_usd"`
	TotalTokens           int64    `json:"total_tokens"`
	TotalInputTokens      int64    `json:"total_input_tokens"`
	TotalOutputTokens     int64    `json:"total_output_tokens"`
	AverageLatencySeconds float64  `json:"average_latency_seconds"`
	AverageCostPerRequest float64  `json:"average_cost_per_request"`
	ModelsUsed            []string `json:"models_used"`
}

// ModelRow is one model's aggregate within a report.
type ModelRow struct {
	Requests     int64   `json:"requests"`
	CostUSD      float64 `json:"cost_usd"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
}

// BreakdownEntry pairs a model identifier with its aggregate row.
type BreakdownEntry struct {
	Model string
	Row   ModelRow
}

// Breakdown is the per-model section, ordered by descending cost with the
// model identifier as the ascending tie-break.
type Breakdown []BreakdownEntry

// MarshalJSON renders the breakdown as an object keyed by model identifier,
// preserving the cost ordering so the serialized form is reproducible.
func (b Breakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Model)
		if err != nil {
			return nil, err
		}
		row, err := json.Marshal(entry.Row)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(row)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Report is a point-in-time document built from a snapshot. Ephemeral:
// constructed, optionally persisted, then discarded by the caller.
type Report struct {
	Summary        Summary   `json:"summary"`
	ModelBreakdown Breakdown `json:"model_breakdown"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// Result carries a generated report, its serialized form and, when
// persistence was requested and succeeded, the sink location.
type Result struct {
	Report   *Report
	Format   Format
	Data     []byte
	Filename string
	Location string
}

// Generator renders snapshots into report documents. It holds no state
// between calls; each Generate is a pure function of its snapshot and
// format, plus the optional sink write.
type Generator struct {
	sink   Sink
	logger *zap.Logger
}

// NewGenerator creates a Generator persisting through the given sink.
// A nil sink disables persistence entirely.
func NewGenerator(sink Sink, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		sink:   sink,
		logger: logger,
	}
}

// Generate builds the report for the snapshot and serializes it in the
// requested format. With persist set, the document is also written to the
// sink; a sink failure is surfaced as a sink_write error while the result
// still carries the generated document, so a failed write never loses the
// computed report.
func (g *Generator) Generate(ctx context.Context, snap metrics.Snapshot, format Format, persist bool) (*Result, error) {
	now := time.Now().UTC()
	report := BuildReport(snap, now)

	data, err := Serialize(report, format)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Report:   report,
		Format:   format,
		Data:     data,
		Filename: fmt.Sprintf("report_%s.%s", now.Format("20060102_150405"), format.Extension()),
	}

	if !persist {
		return result, nil
	}
	if g.sink == nil {
		return result, services.WrapSinkWrite("no report sink configured", nil)
	}

	location, err := g.sink.Write(ctx, result.Filename, data)
	if err != nil {
		g.logger.Error("report sink write failed",
			zap.String("filename", result.Filename),
			zap.Error(err))
		return result, services.WrapSinkWrite("failed to persist report", err)
	}
	result.Location = location

	g.logger.Info("report persisted",
		zap.String("format", string(format)),
		zap.String("location", location))
	return result, nil
}

// BuildReport assembles the report document from a snapshot. Rounding
// happens here, at the reporting boundary only.
func BuildReport(snap metrics.Snapshot, generatedAt time.Time) *Report {
	breakdown := make(Breakdown, 0, len(snap.PerModel))
	for model, stats := range snap.PerModel {
		breakdown = append(breakdown, BreakdownEntry{
			Model: model,
			Row: ModelRow{
				Requests:     stats.Requests,
				CostUSD:      round6(stats.CostUSD),
				InputTokens:  stats.InputTokens,
				OutputTokens: stats.OutputTokens,
			},
		})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Row.CostUSD != breakdown[j].Row.CostUSD {
			return breakdown[i].Row.CostUSD > breakdown[j].Row.CostUSD
		}
		return breakdown[i].Model < breakdown[j].Model
	})

	modelsUsed := snap.ModelsUsed
	if modelsUsed == nil {
		modelsUsed = []string{}
	}

	var avgCost float64
	if snap.TotalRequests > 0 {
		avgCost = round6(snap.TotalCostUSD / float64(snap.TotalRequests))
	}

	return &Report{
		Summary: Summary{
			TotalRequests:         snap.TotalRequests,
			TotalCostUSD:          round6(snap.TotalCostUSD),
			TotalTokens:           snap.TotalTokens,
			TotalInputTokens:      snap.TotalInputTokens,
			TotalOutputTokens:     snap.TotalOutputTokens,
			AverageLatencySeconds: round3(snap.AverageLatencySeconds),
			AverageCostPerRequest: avgCost,
			ModelsUsed:            modelsUsed,
		},
		ModelBreakdown: breakdown,
		GeneratedAt:    generatedAt,
	}
}

// Serialize renders a report in the given format.
func Serialize(report *Report, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, services.WrapInternal("failed to serialize report", err)
		}
		return data, nil
	case FormatCSV:
		return serializeCSV(report)
	default:
		return nil, services.NewDomainError(services.ErrorTypeUnsupportedFormat,
			fmt.Sprintf("unsupported report format %q", format), nil).
			WithDetail("format", string(format))
	}
}

// serializeCSV renders one row per model in breakdown order plus a trailing
// TOTAL summary row. Fixed decimal precision keeps the output diffable;
// encoding/csv quotes model identifiers containing separators or quotes.
func serializeCSV(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := make([][]string, 0, len(report.ModelBreakdown)+2)
	records = append(records, []string{"model", "requests", "input_tokens", "output_tokens", "cost_usd"})
	for _, entry := range report.ModelBreakdown {
		records = append(records, []string{
			entry.Model,
			strconv.FormatInt(entry.Row.Requests, 10),
			strconv.FormatInt(entry.Row.InputTokens, 10),
			strconv.FormatInt(entry.Row.OutputTokens, 10),
			fmt.Sprintf("%.6f", entry.Row.CostUSD),
		})
	}
	records = append(records, []string{
		"TOTAL",
		strconv.FormatInt(report.Summary.TotalRequests, 10),
		strconv.FormatInt(report.Summary.TotalInputTokens, 10),
		strconv.FormatInt(report.Summary.TotalOutputTokens, 10),
		fmt.Sprintf("%.6f", report.Summary.TotalCostUSD),
	})

	if err := w.WriteAll(records); err != nil {
		return nil, services.WrapInternal("failed to serialize report", err)
	}
	return buf.Bytes(), nil
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func round3(v float64) float64 {
	return math.Round(v*1e3) / 1e3
}
