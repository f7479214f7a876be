package metrics

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Measurement is one completed request's observed usage. It is immutable
// once constructed; only its contribution to the running aggregate is kept.
type Measurement struct {
	Model          string
	InputTokens    int
	OutputTokens   int
	LatencySeconds float64
	FinishReason   string
	Timestamp      time.Time
}

// ModelStats is the per-model running sub-aggregate.
type ModelStats struct {
	Requests     int64   `json:"requests"`
	CostUSD      float64 `json:"cost_usd"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
}

// Snapshot is an immutable point-in-time copy of the aggregate plus
// derived values. Field names are part of the summary API contract.
type Snapshot struct {
	TotalRequests         int64                 `json:"total_requests"`
	TotalCostUSD          float64               `json:"total_cost_usd"`
	TotalTokens           int64                 `json:"total_tokens"`
	TotalInputTokens      int64                 `json:"total_input_tokens"`
	TotalOutputTokens     int64                 `json:"total_output_tokens"`
	AverageLatencySeconds float64               `json:"average_latency_seconds"`
	ModelsUsed            []string              `json:"models_used"`
	PerModel              map[string]ModelStats `json:"-"`
}

// Tracker maintains the authoritative running aggregate of all observed
// requests. It is safe for concurrent use: Record is the single write path
// and every field touched by one call becomes visible together.
type Tracker struct {
	prices PriceTable
	logger *zap.Logger

	mu                  sync.Mutex
	totalRequests       int64
	totalCostUSD        float64
	totalInputTokens    int64
	totalOutputTokens   int64
	totalLatencySeconds float64
	perModel            map[string]*ModelStats
	modelsSeen          []string // first-seen order
}

// NewTracker creates a Tracker pricing measurements against the given table.
func NewTracker(prices PriceTable, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		prices:   prices,
		logger:   logger,
		perModel: make(map[string]*ModelStats),
	}
}

// Record folds one measurement into the aggregate. A model missing from the
// price table contributes zero cost but its request, tokens and latency are
// still counted; metering must never drop a request over incomplete pricing
// configuration.
func (t *Tracker) Record(m Measurement) {
	cost, priced := t.prices.Cost(m.Model, m.InputTokens, m.OutputTokens)
	if !priced {
		t.logger.Warn("no pricing for model, recording with zero cost",
			zap.String("model", m.Model))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.totalRequests++
	t.totalCostUSD += cost
	t.totalInputTokens += int64(m.InputTokens)
	t.totalOutputTokens += int64(m.OutputTokens)
	t.totalLatencySeconds += m.LatencySeconds

	stats, ok := t.perModel[m.Model]
	if !ok {
		stats = &ModelStats{}
		t.perModel[m.Model] = stats
		t.modelsSeen = append(t.modelsSeen, m.Model)
	}
	stats.Requests++
	stats.CostUSD += cost
	stats.InputTokens += int64(m.InputTokens)
	stats.OutputTokens += int64(m.OutputTokens)
}

// Snapshot returns a consistent copy of the aggregate. It reflects every
// Record call that completed before it; a racing Record is either fully
// included or fully excluded, never partially.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := Snapshot{
		TotalRequests:     t.totalRequests,
		TotalCostUSD:      t.totalCostUSD,
		TotalTokens:       t.totalInputTokens + t.totalOutputTokens,
		TotalInputTokens:  t.totalInputTokens,
		TotalOutputTokens: t.totalOutputTokens,
		ModelsUsed:        append([]string(nil), t.modelsSeen...),
		PerModel:          make(map[string]ModelStats, len(t.perModel)),
	}
	if t.totalRequests > 0 {
		snap.AverageLatencySeconds = t.totalLatencySeconds / float64(t.totalRequests)
	}
	for model, stats := range t.perModel {
		snap.PerModel[model] = *stats
	}
	return snap
}

// Reset zeroes the aggregate. Administrative; not part of the request flow.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.totalRequests = 0
	t.totalCostUSD = 0
	t.totalInputTokens = 0
	t.totalOutputTokens = 0
	t.totalLatencySeconds = 0
	t.perModel = make(map[string]*ModelStats)
	t.modelsSeen = nil
}
