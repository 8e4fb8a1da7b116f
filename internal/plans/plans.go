// internal/plans/plans.go
package plans

import (
	"github.com/BrandSignal-AI/brandsignal-workflows/internal/models"
)

// Frequency is how often a plan tier's brands are run.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

// PlanLimits is the limit configuration for one plan tier.
type PlanLimits struct {
	Brands          int
	QueriesPerBrand int
	Engines         []string
	Competitors     int
	Frequency       Frequency
	Export          bool
}

const unlimited = 999999

var planLimits = map[models.PlanTier]PlanLimits{
	models.PlanFree: {
		Brands:          1,
		QueriesPerBrand: 10,
		Engines:         []string{"openai", "anthropic"},
		Competitors:     2,
		Frequency:       FrequencyWeekly,
		Export:          false,
	},
	models.PlanPro: {
		Brands:          3,
		QueriesPerBrand: 100,
		Engines:         []string{"openai", "anthropic", "perplexity", "gemini"},
		Competitors:     10,
		Frequency:       FrequencyDaily,
		Export:          true,
	},
	models.PlanAgency: {
		Brands:          unlimited,
		QueriesPerBrand: 500,
		Engines:         []string{"openai", "anthropic", "perplexity", "gemini"},
		Competitors:     unlimited,
		Frequency:       FrequencyDaily,
		Export:          true,
	},
}

// Limits returns the limit configuration for a plan tier, falling back to
// the free tier when the tier is not recognised.
func Limits(tier models.PlanTier) PlanLimits {
	if limits, ok := planLimits[tier]; ok {
		return limits
	}
	return planLimits[models.PlanFree]
}

// AllowedEngines returns the engine identifiers available to a plan tier.
func AllowedEngines(tier models.PlanTier) []string {
	return Limits(tier).Engines
}

// CheckBrandLimit reports whether a user may create another brand.
func CheckBrandLimit(currentCount int, tier models.PlanTier) bool {
	return currentCount < Limits(tier).Brands
}

// CheckQueryLimit reports whether a user may add another query to a brand.
func CheckQueryLimit(currentCount int, tier models.PlanTier) bool {
	return currentCount < Limits(tier).QueriesPerBrand
}

// CheckCompetitorLimit reports whether a user may add another competitor to
// a brand.
func CheckCompetitorLimit(currentCount int, tier models.PlanTier) bool {
	return currentCount < Limits(tier).Competitors
}
