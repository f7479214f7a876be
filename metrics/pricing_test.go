package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceTable_Cost(t *testing.T) {
	prices := DefaultPriceTable()

	tests := []struct {
		name   string
		model  string
		input  int
		output int
		want   float64
		priced bool
	}{
		{"gpt-4o", "gpt-4o", 1000, 500, 1.0*0.0025 + 0.5*0.01, true},
		{"gpt-4o-mini", "gpt-4o-mini", 1000, 500, 1.0*0.00015 + 0.5*0.0006, true},
		{"gpt-3.5-turbo", "gpt-3.5-turbo", 2000, 1000, 2.0*0.0005 + 1.0*0.0015, true},
		{"zero tokens", "gpt-4o", 0, 0, 0, true},
		{"unknown model", "unknown-model", 1000, 500, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, priced := prices.Cost(tt.model, tt.input, tt.output)
			assert.Equal(t, tt.priced, priced)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestPriceTable_Validate(t *testing.T) {
	require.NoError(t, DefaultPriceTable().Validate())

	bad := PriceTable{"broken": {InputPer1K: -0.001, OutputPer1K: 0.01}}
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestPriceTable_Models(t *testing.T) {
	prices := DefaultPriceTable()
	models := prices.Models()
	assert.Len(t, models, 3)
	assert.ElementsMatch(t, []string{"gpt-4o", "gpt-4o-mini", "gpt-3.5-turbo"}, models)
}
