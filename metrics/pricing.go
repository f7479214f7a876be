package metrics

import "fmt"

// ModelPrice holds per-1K-token USD rates for a single model.
type ModelPrice struct {
	InputPer1K  float64 `yaml:"input"`
	OutputPer1K float64 `yaml:"output"`
}

// PriceTable maps model identifiers to their per-1K-token rates.
// Loaded once at startup and treated as immutable afterwards.
type PriceTable map[string]ModelPrice

// DefaultPriceTable returns the built-in OpenAI price table.
// Rates are USD per 1K tokens and may be overridden via configuration.
func DefaultPriceTable() PriceTable {
	return PriceTable{
		"gpt-4o":        {InputPer1K: 0.0025, OutputPer1K: 0.01},
		"gpt-4o-mini":   {InputPer1K: 0.00015, OutputPer1K: 0.0006},
		"gpt-3.5-turbo": {InputPer1K: 0.0005, OutputPer1K: 0.0015},
	}
}

// Validate checks that no model carries a negative rate.
func (p PriceTable) Validate() error {
	for model, price := range p {
		if price.InputPer1K < 0 || price.OutputPer1K < 0 {
			return fmt.Errorf("model %s has a negative rate", model)
		}
	}
	return nil
}

// Models returns the identifiers of all priced models.
func (p PriceTable) Models() []string {
	models := make([]string, 0, len(p))
	for model := range p {
		models = append(models, model)
	}
	return models
}

// Cost computes the USD cost of a request at full precision.
// The boolean is false when the model is absent from the table, in which
// case the cost is 0; callers decide whether that is an error.
func (p PriceTable) Cost(model string, inputTokens, outputTokens int) (float64, bool) {
	price, ok := p[model]
	if !ok {
		return 0, false
	}
	cost := (float64(inputTokens)/1000)*price.InputPer1K + (float64(outputTokens)/1000)*price.OutputPer1K
	return cost, true
}
