package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CollectorConfig controls the Prometheus collector.
type CollectorConfig struct {
	Enabled   bool
	Namespace string
	Subsystem string

	// RequestDurationBuckets overrides the default latency histogram
	// buckets when non-empty.
	RequestDurationBuckets []float64
}

// Collector exposes request-level Prometheus metrics for the text
// utility: request counts, token throughput, accumulated cost and
// request latency, all labeled by model.
//
// The collector uses a private registry so tests and embedded usage
// never collide with the global default registry.
type Collector struct {
	enabled  bool
	registry *prometheus.Registry

	requestsTotal  *prometheus.CounterVec
	inputTokens    *prometheus.CounterVec
	outputTokens   *prometheus.CounterVec
	costUSD        *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry. If registry is
// nil a fresh one is created.
func NewCollector(cfg CollectorConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "textutility"
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		// LLM completions routinely take seconds; default net/http
		// buckets top out too early.
		cfg.RequestDurationBuckets = []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0}
	}

	c := &Collector{
		enabled:  cfg.Enabled,
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "requests_total",
			Help:      "Total number of text-generation requests.",
		}, []string{"model", "status"}),
		inputTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "input_tokens_total",
			Help:      "Total prompt tokens consumed.",
		}, []string{"model"}),
		outputTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "output_tokens_total",
			Help:      "Total completion tokens produced.",
		}, []string{"model"}),
		costUSD: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "cost_usd_total",
			Help:      "Accumulated request cost in USD.",
		}, []string{"model"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "request_duration_seconds",
			Help:      "Provider round-trip latency in seconds.",
			Buckets:   cfg.RequestDurationBuckets,
		}, []string{"model"}),
	}

	registry.MustRegister(
		c.requestsTotal,
		c.inputTokens,
		c.outputTokens,
		c.costUSD,
		c.requestLatency,
	)

	return c
}

// RecordRequest records a completed request. Status is "success" or
// "error"; token and cost values are only meaningful for successes and
// should be zero otherwise.
func (c *Collector) RecordRequest(model, status string, latency time.Duration, inputTokens, outputTokens int, cost float64) {
	if !c.enabled {
		return
	}

	c.requestsTotal.WithLabelValues(model, status).Inc()
	if status != "success" {
		return
	}

	c.inputTokens.WithLabelValues(model).Add(float64(inputTokens))
	c.outputTokens.WithLabelValues(model).Add(float64(outputTokens))
	c.costUSD.WithLabelValues(model).Add(cost)
	c.requestLatency.WithLabelValues(model).Observe(latency.Seconds())
}

// Registry returns the underlying registry for scrape wiring.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns the scrape endpoint handler for this collector's
// registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
