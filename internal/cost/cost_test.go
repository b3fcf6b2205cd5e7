package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brads3290/ccviewer/internal/models"
)

func assistant(id, model string, u models.Usage) *models.AssistantEntry {
	return &models.AssistantEntry{Message: models.AssistantMessage{ID: id, Model: model, Usage: &u}}
}

func TestPricingFor(t *testing.T) {
	assert.Equal(t, opus4Pricing, PricingFor("claude-opus-4-1-20250805"))
	assert.Equal(t, opus45Pricing, PricingFor("claude-opus-4-5-20251101"))
	assert.Equal(t, sonnetPricing, PricingFor("claude-sonnet-4-20250514"))
	assert.Equal(t, haiku35Pricing, PricingFor("claude-3-5-haiku-20241022"))
	assert.Equal(t, haiku45Pricing, PricingFor("claude-haiku-4-5"))
	assert.Equal(t, sonnetPricing, PricingFor("<synthetic>"))
}

func TestCalculate(t *testing.T) {
	entries := []models.Entry{
		&models.UserEntry{},
		assistant("m1", "claude-sonnet-4", models.Usage{InputTokens: 1_000_000, OutputTokens: 100_000}),
		assistant("m1", "claude-sonnet-4", models.Usage{InputTokens: 1_000_000, OutputTokens: 100_000}),
		assistant("m2", "claude-opus-4", models.Usage{CacheCreationInputTokens: 200_000, CacheReadInputTokens: 1_000_000}),
		&models.AssistantEntry{},
	}

	c := Calculate(entries)

	assert.InDelta(t, 3.0, c.Breakdown.Input, 1e-9)
	assert.InDelta(t, 1.5, c.Breakdown.Output, 1e-9)
	assert.InDelta(t, 3.75, c.Breakdown.CacheWrite, 1e-9)
	assert.InDelta(t, 1.5, c.Breakdown.CacheRead, 1e-9)
	assert.InDelta(t, 9.75, c.TotalUSD, 1e-9)
	assert.Equal(t, int64(2_300_000), c.Breakdown.TotalTokens)
}

func TestCalculate_Empty(t *testing.T) {
	assert.Equal(t, models.Cost{}, Calculate(nil))
}
