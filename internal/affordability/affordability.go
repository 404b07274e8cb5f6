// Package affordability implements the IRS safe-harbor affordability check
// for ICHRA contributions. An arrangement is affordable when the employee's
// share of self-only lowest-cost Silver coverage stays at or below the
// published percentage of household income.
package affordability

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/glovehealth/ichra-engine/internal/census"
	"github.com/glovehealth/ichra-engine/internal/domain"
	"github.com/glovehealth/ichra-engine/internal/ratestore"
)

// ThresholdRate2026 is the IRS affordability safe-harbor percentage for plan
// year 2026: the employee's required contribution may not exceed 9.96% of
// household income.
var ThresholdRate2026 = decimal.NewFromFloat(0.0996)

var monthsPerYear = decimal.NewFromInt(12)

// EmployeeResult is one employee's affordability analysis. When
// HasIncomeData is false only EmployeeID, the location fields and
// LCSPPremium are meaningful.
type EmployeeResult struct {
	EmployeeID    string           `json:"employee_id"`
	State         string           `json:"state"`
	RatingArea    int              `json:"rating_area"`
	Age           int              `json:"age"`
	MonthlyIncome *decimal.Decimal `json:"monthly_income,omitempty"`

	// LCSPPremium is the self-only lowest-cost Silver premium at the
	// employee's location and age band.
	LCSPPremium decimal.Decimal `json:"lcsp_premium"`

	// MaxEEContribution is the most the employee may be asked to pay.
	MaxEEContribution decimal.Decimal `json:"max_ee_contribution"`

	// MinERContribution is the smallest employer contribution that keeps the
	// arrangement affordable: max(0, LCSP - MaxEEContribution).
	MinERContribution decimal.Decimal `json:"min_er_contribution"`

	CurrentERContribution decimal.Decimal `json:"current_er_contribution"`

	// Gap is the additional monthly employer contribution needed on top of
	// the current one.
	Gap decimal.Decimal `json:"gap"`

	IsAffordableAtCurrent bool `json:"is_affordable_at_current"`
	HasIncomeData         bool `json:"has_income_data"`
}

// EmployeeAffordability analyzes one employee against a known self-only LCSP
// premium. Employees without positive income data come back with
// HasIncomeData false and zeroed thresholds.
func EmployeeAffordability(rec *domain.EmployeeRecord, lcspPremium decimal.Decimal) EmployeeResult {
	age, _ := census.EmployeeAge(rec)
	result := EmployeeResult{
		EmployeeID:  rec.EmployeeID,
		State:       rec.State,
		RatingArea:  rec.RatingArea,
		Age:         age,
		LCSPPremium: lcspPremium,
	}

	if rec.MonthlyIncome == nil || !rec.MonthlyIncome.IsPositive() {
		return result
	}

	income := *rec.MonthlyIncome
	result.MonthlyIncome = &income
	result.HasIncomeData = true
	result.MaxEEContribution = income.Mul(ThresholdRate2026)

	minER := lcspPremium.Sub(result.MaxEEContribution)
	if minER.IsNegative() {
		minER = decimal.Zero
	}
	result.MinERContribution = minER

	result.CurrentERContribution = rec.CurrentERMonthly
	gap := minER.Sub(rec.CurrentERMonthly)
	if gap.IsNegative() {
		gap = decimal.Zero
	}
	result.Gap = gap
	result.IsAffordableAtCurrent = rec.CurrentERMonthly.GreaterThanOrEqual(minER)
	return result
}

// WorkforceSummary aggregates the per-employee results.
type WorkforceSummary struct {
	TotalEmployees         int             `json:"total_employees"`
	EmployeesAnalyzed      int             `json:"employees_analyzed"`
	AffordableAtCurrent    int             `json:"affordable_at_current"`
	NeedsIncrease          int             `json:"needs_increase"`
	TotalGapAnnual         decimal.Decimal `json:"total_gap_annual"`
	CurrentERSpendAnnual   decimal.Decimal `json:"current_er_spend_annual"`
	MinRequiredSpendAnnual decimal.Decimal `json:"min_required_spend_annual"`
}

// WorkforceResult is the complete workforce affordability analysis.
type WorkforceResult struct {
	Summary WorkforceSummary `json:"summary"`
	Details []EmployeeResult `json:"employee_details"`
	Errors  []string         `json:"errors,omitempty"`
}

// Analyzer runs the workforce analysis against a rate store.
type Analyzer struct {
	Store ratestore.Store
}

// NewAnalyzer builds a workforce analyzer.
func NewAnalyzer(store ratestore.Store) *Analyzer {
	return &Analyzer{Store: store}
}

// WorkforceAffordability analyzes every employee with income data. Self-only
// Silver LCSP premiums for all needed locations come back in ONE batched
// query; employees whose location has no Silver plan are recorded in Errors
// and excluded from the summary.
func (a *Analyzer) WorkforceAffordability(ctx context.Context, c *census.Census) (*WorkforceResult, error) {
	result := &WorkforceResult{
		Summary: WorkforceSummary{
			TotalEmployees:         len(c.Employees),
			TotalGapAnnual:         decimal.Zero,
			CurrentERSpendAnnual:   decimal.Zero,
			MinRequiredSpendAnnual: decimal.Zero,
		},
	}

	type analyzed struct {
		rec *domain.EmployeeRecord
		key domain.LocationKey
	}
	var candidates []analyzed
	seen := make(map[domain.LocationKey]bool)
	var keys []domain.LocationKey

	for i := range c.Employees {
		rec := &c.Employees[i]
		if rec.MonthlyIncome == nil || !rec.MonthlyIncome.IsPositive() || rec.State == "" {
			continue
		}
		key, ok := affordabilityKey(rec)
		if !ok {
			result.Errors = append(result.Errors,
				fmt.Sprintf("No age data for employee %s, skipping affordability", rec.EmployeeID))
			continue
		}
		candidates = append(candidates, analyzed{rec: rec, key: key})
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}

	if len(candidates) == 0 {
		return result, nil
	}

	lowest, err := a.Store.LowestRates(ctx, keys, domain.MetalSilver)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lowest Silver rates for affordability: %w", err)
	}

	for _, cand := range candidates {
		lr, ok := lowest[cand.key]
		if !ok {
			result.Errors = append(result.Errors,
				fmt.Sprintf("No Silver rate for %s %s, age %s", cand.key.State, cand.key.RatingAreaLabel, cand.key.AgeBand))
			continue
		}

		er := EmployeeAffordability(cand.rec, lr.Rate)
		result.Details = append(result.Details, er)

		result.Summary.EmployeesAnalyzed++
		if er.IsAffordableAtCurrent {
			result.Summary.AffordableAtCurrent++
		} else {
			result.Summary.NeedsIncrease++
		}
		result.Summary.TotalGapAnnual = result.Summary.TotalGapAnnual.Add(er.Gap.Mul(monthsPerYear))
		result.Summary.CurrentERSpendAnnual = result.Summary.CurrentERSpendAnnual.Add(er.CurrentERContribution.Mul(monthsPerYear))
		result.Summary.MinRequiredSpendAnnual = result.Summary.MinRequiredSpendAnnual.Add(er.MinERContribution.Mul(monthsPerYear))
	}

	return result, nil
}

// affordabilityKey derives the self-only rate lookup key: the employee's own
// age band, or the family-tier sentinel where states rate whole families.
func affordabilityKey(rec *domain.EmployeeRecord) (domain.LocationKey, bool) {
	area := rec.RatingArea
	if area <= 0 {
		area = 1
	}
	key := domain.LocationKey{
		State:           rec.State,
		RatingAreaLabel: domain.RatingAreaLabel(area),
	}
	if domain.FamilyTierStates[rec.State] {
		key.AgeBand = domain.FamilyTierLabel
		return key, true
	}
	age, ok := census.EmployeeAge(rec)
	if !ok {
		return key, false
	}
	key.AgeBand = domain.AgeBand(age)
	return key, true
}
