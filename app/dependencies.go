package app

import (
	"github.com/upb/text-utility/config"
	"github.com/upb/text-utility/metrics"
	"github.com/upb/text-utility/observability"
	"github.com/upb/text-utility/reports"
	"github.com/upb/text-utility/services/providers"
	"github.com/upb/text-utility/services/providers/openai"
	"github.com/upb/text-utility/services/textgen"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger

	// Metering
	Prices    metrics.PriceTable
	Tracker   *metrics.Tracker
	Collector *observability.Collector

	// Text generation
	Provider providers.Provider
	TextGen  *textgen.Service

	// Reporting
	ReportSink reports.Sink
	Reports    *reports.Generator
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	prices, err := cfg.PriceTable()
	if err != nil {
		return nil, err
	}
	deps.Prices = prices
	deps.Tracker = metrics.NewTracker(prices, logger)
	deps.Collector = observability.NewCollector(observability.CollectorConfig{
		Enabled: cfg.Observability.MetricsEnabled,
	}, nil)
	logger.Info("metering initialized", zap.Strings("priced_models", prices.Models()))

	deps.Provider = openai.NewAdapter(providers.Config{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Timeout:    cfg.OpenAI.Timeout,
		MaxRetries: cfg.OpenAI.MaxRetries,
		RetryDelay: cfg.OpenAI.RetryDelay,
	})
	if cfg.OpenAI.APIKey == "" {
		logger.Warn("no OpenAI API key configured, completions will fail")
	}

	deps.TextGen = textgen.NewService(
		deps.Provider,
		prices,
		deps.Tracker,
		deps.Collector,
		textgen.Defaults{
			Model:       cfg.Defaults.Model,
			MaxTokens:   cfg.Defaults.MaxTokens,
			Temperature: cfg.Defaults.Temperature,
		},
		logger,
	)

	sink, err := reports.NewDirSink(cfg.Reports.OutputDir)
	if err != nil {
		return nil, err
	}
	deps.ReportSink = sink
	deps.Reports = reports.NewGenerator(sink, logger)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// Close releases resources held by the dependency graph.
func (d *Dependencies) Close() error {
	return d.Logger.Sync()
}
