// Package cost estimates the spend of a session from assistant token usage.
package cost

import (
	"strings"

	"github.com/brads3290/ccviewer/internal/models"
)

// Pricing is USD per million tokens.
type Pricing struct {
	Input      float64
	Output     float64
	CacheWrite float64
	CacheRead  float64
}

var (
	opus4Pricing   = Pricing{Input: 15, Output: 75, CacheWrite: 18.75, CacheRead: 1.5}
	opus45Pricing  = Pricing{Input: 5, Output: 25, CacheWrite: 6.25, CacheRead: 0.5}
	sonnetPricing  = Pricing{Input: 3, Output: 15, CacheWrite: 3.75, CacheRead: 0.3}
	haiku35Pricing = Pricing{Input: 0.8, Output: 4, CacheWrite: 1, CacheRead: 0.08}
	haiku45Pricing = Pricing{Input: 1, Output: 5, CacheWrite: 1.25, CacheRead: 0.1}
)

// PricingFor picks the price table for a model name. Unknown models are
// priced as Sonnet.
func PricingFor(model string) Pricing {
	m := strings.ToLower(model)
	switch {
	case strings.Contains(m, "opus-4-5"), strings.Contains(m, "opus-4.5"):
		return opus45Pricing
	case strings.Contains(m, "opus"):
		return opus4Pricing
	case strings.Contains(m, "haiku-4-5"), strings.Contains(m, "haiku-4.5"):
		return haiku45Pricing
	case strings.Contains(m, "haiku"):
		return haiku35Pricing
	}
	return sonnetPricing
}

const perMillion = 1_000_000

// Calculate sums the estimated cost of every assistant message in entries.
// Log lines that repeat the same message ID are counted once.
func Calculate(entries []models.Entry) models.Cost {
	var c models.Cost
	seen := map[string]bool{}
	for _, entry := range entries {
		a, ok := entry.(*models.AssistantEntry)
		if !ok || a.Message.Usage == nil {
			continue
		}
		if id := a.Message.ID; id != "" {
			if seen[id] {
				continue
			}
			seen[id] = true
		}

		u := a.Message.Usage
		p := PricingFor(a.Message.Model)
		c.Breakdown.Input += float64(u.InputTokens) * p.Input / perMillion
		c.Breakdown.Output += float64(u.OutputTokens) * p.Output / perMillion
		c.Breakdown.CacheWrite += float64(u.CacheCreationInputTokens) * p.CacheWrite / perMillion
		c.Breakdown.CacheRead += float64(u.CacheReadInputTokens) * p.CacheRead / perMillion
		c.Breakdown.TotalTokens += int64(u.InputTokens + u.OutputTokens + u.CacheCreationInputTokens + u.CacheReadInputTokens)
	}
	c.TotalUSD = c.Breakdown.Input + c.Breakdown.Output + c.Breakdown.CacheWrite + c.Breakdown.CacheRead
	return c
}
