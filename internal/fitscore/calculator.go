// Package fitscore computes the 0-100 ICHRA suitability score: six
// independently computed category scores combined by fixed weights. Every
// category degrades to a documented neutral default when its input is
// missing, and the result records which categories were computed versus
// degraded so callers can tell "neutral because healthy" from "neutral
// because we had nothing to score".
package fitscore

import (
	"context"
	"fmt"
	"math"

	"github.com/glovehealth/ichra-engine/internal/census"
	"github.com/glovehealth/ichra-engine/internal/domain"
	"github.com/glovehealth/ichra-engine/internal/ratestore"
)

// Category names the six scored dimensions.
type Category string

const (
	CostAdvantage        Category = "cost_advantage"
	MarketReadiness      Category = "market_readiness"
	WorkforceFit         Category = "workforce_fit"
	GeographicComplexity Category = "geographic_complexity"
	EmployeeExperience   Category = "employee_experience"
	AdminReadiness       Category = "admin_readiness"
)

// Categories lists every category in display order.
var Categories = []Category{
	CostAdvantage, MarketReadiness, WorkforceFit,
	GeographicComplexity, EmployeeExperience, AdminReadiness,
}

// Weights maps each category to its share of the overall score.
type Weights map[Category]int

// DefaultWeights is the standard category weighting.
func DefaultWeights() Weights {
	return Weights{
		CostAdvantage:        25,
		MarketReadiness:      20,
		WorkforceFit:         20,
		GeographicComplexity: 15,
		EmployeeExperience:   10,
		AdminReadiness:       10,
	}
}

// Validate checks that all six categories are present and the weights sum to
// exactly 100.
func (w Weights) Validate() error {
	sum := 0
	for _, cat := range Categories {
		weight, ok := w[cat]
		if !ok {
			return fmt.Errorf("fit score weights missing category %s", cat)
		}
		if weight < 0 {
			return fmt.Errorf("fit score weight for %s is negative (%d)", cat, weight)
		}
		sum += weight
	}
	if sum != 100 {
		return fmt.Errorf("fit score weights sum to %d, must be exactly 100", sum)
	}
	return nil
}

// SubScore is one category's outcome. Degraded marks a neutral default
// substituted for a score the input could not support; Reason says what was
// missing.
type SubScore struct {
	Score    int    `json:"score"`
	Degraded bool   `json:"degraded"`
	Reason   string `json:"reason,omitempty"`
}

func computed(score int) SubScore {
	return SubScore{Score: score}
}

func degraded(score int, reason string) SubScore {
	return SubScore{Score: score, Degraded: true, Reason: reason}
}

// Result is a complete fit score: the weighted overall plus each category's
// sub-score.
type Result struct {
	Overall    int                   `json:"overall"`
	Categories map[Category]SubScore `json:"categories"`
}

// FinancialInputs carries the prior scenario outputs the cost-advantage
// category compares against. Nil fields mean the corresponding run was not
// performed.
type FinancialInputs struct {
	Scenario *domain.ScenarioResult
	Current  *domain.BaselineTotals
}

// Calculator scores a census. The rate store is optional; without it the
// market-readiness category degrades to its neutral default.
type Calculator struct {
	weights Weights
	store   ratestore.Store
}

// NewCalculator builds a calculator after validating the weights. Weight
// validation happens here, once, so every later Calculate call can trust the
// invariant.
func NewCalculator(weights Weights, store ratestore.Store) (*Calculator, error) {
	if weights == nil {
		weights = DefaultWeights()
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{weights: weights, store: store}, nil
}

// Calculate scores the census. Never returns an error for missing data; only
// a nil census is rejected.
func (calc *Calculator) Calculate(ctx context.Context, c *census.Census, fin *FinancialInputs) (*Result, error) {
	if c == nil {
		return nil, fmt.Errorf("fit score requires a census")
	}
	if fin == nil {
		fin = &FinancialInputs{}
	}

	result := &Result{Categories: make(map[Category]SubScore, len(Categories))}
	result.Categories[CostAdvantage] = calc.costAdvantage(fin)
	result.Categories[MarketReadiness] = calc.marketReadiness(ctx, c)
	result.Categories[WorkforceFit] = calc.workforceFit(c)
	result.Categories[GeographicComplexity] = calc.geographicComplexity(c)
	result.Categories[EmployeeExperience] = calc.employeeExperience(c)
	result.Categories[AdminReadiness] = calc.adminReadiness(c)

	weighted := 0.0
	for cat, sub := range result.Categories {
		weighted += float64(sub.Score) * float64(calc.weights[cat]) / 100.0
	}
	result.Overall = int(math.Round(weighted))
	return result, nil
}

func clamp(score, lo, hi int) int {
	if score < lo {
		return lo
	}
	if score > hi {
		return hi
	}
	return score
}
