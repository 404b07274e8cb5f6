package calculation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/glovehealth/ichra-engine/internal/census"
	"github.com/glovehealth/ichra-engine/internal/domain"
)

// avDefaults are the nominal actuarial values per metal level, used when the
// rate table carries no AV for a plan.
var avDefaults = map[domain.MetalLevel]decimal.Decimal{
	domain.MetalBronze: decimal.NewFromInt(60),
	domain.MetalSilver: decimal.NewFromInt(70),
	domain.MetalGold:   decimal.NewFromInt(80),
}

// noPlanFoundLabel marks audit rows for employees whose location had no
// usable rate. The row stays in the detail report with a zero premium.
const noPlanFoundLabel = "No plan found"

// lcspPlanName labels the synthetic "plan" of a lowest-cost projection,
// where the underlying plan varies by location.
func lcspPlanName(metal domain.MetalLevel) string {
	return fmt.Sprintf("Lowest Cost %s (varies by location)", metal)
}

// locationKeyFor derives the rate lookup key for one employee: the
// family-tier sentinel in family-tier states, the employee's own age band
// everywhere else. ok=false means the employee's age cannot be resolved and
// no lookup is possible.
func locationKeyFor(rec *domain.EmployeeRecord) (domain.LocationKey, bool) {
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

// censusLocationKeys collects the distinct location keys a census needs, so
// the store can answer every employee's lookup in one batched query.
func censusLocationKeys(c *census.Census) []domain.LocationKey {
	seen := make(map[domain.LocationKey]bool)
	var keys []domain.LocationKey
	for i := range c.Employees {
		key, ok := locationKeyFor(&c.Employees[i])
		if !ok || key.State == "" {
			continue
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

// LCSPScenario projects the workforce premium if every employee bought the
// lowest-cost plan of one metal level available at their location. The store
// answers all locations in ONE batched query; family estimates extrapolate
// from the employee-only rate via the estimate tier multipliers.
func (e *Engine) LCSPScenario(ctx context.Context, c *census.Census, metal domain.MetalLevel) (*domain.ScenarioResult, error) {
	keys := censusLocationKeys(c)
	lowest, err := e.Store.LowestRates(ctx, keys, metal)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lowest %s rates: %w", metal, err)
	}
	return e.lowestCostResult(c, metal, lowest), nil
}

// MultiMetalScenario runs the lowest-cost projection across Bronze, Silver
// and Gold simultaneously, still with a single store round trip.
func (e *Engine) MultiMetalScenario(ctx context.Context, c *census.Census) (map[domain.MetalLevel]*domain.ScenarioResult, error) {
	keys := censusLocationKeys(c)
	byMetal, err := e.Store.LowestRatesAllMetals(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch multi-metal lowest rates: %w", err)
	}

	results := make(map[domain.MetalLevel]*domain.ScenarioResult, 3)
	for _, metal := range []domain.MetalLevel{domain.MetalBronze, domain.MetalSilver, domain.MetalGold} {
		perKey := make(map[domain.LocationKey]domain.LowestRate)
		for key, rates := range byMetal {
			if lr, ok := rates[metal]; ok {
				perKey[key] = lr
			}
		}
		results[metal] = e.lowestCostResult(c, metal, perKey)
	}
	return results, nil
}

// lowestCostResult builds one projection from pre-fetched lowest rates.
// Employees whose location has no rate, or whose age cannot be resolved,
// contribute zero plus an error string.
func (e *Engine) lowestCostResult(c *census.Census, metal domain.MetalLevel, lowest map[domain.LocationKey]domain.LowestRate) *domain.ScenarioResult {
	result := newScenarioResult(metal)
	planName := lcspPlanName(metal)

	avSeen := make(map[string]bool)
	avSum := decimal.Zero
	avCount := 0

	for i := range c.Employees {
		rec := &c.Employees[i]
		if rec.State == "" {
			continue
		}

		summary := result.ByState[rec.State]
		if summary == nil {
			summary = &domain.StateSummary{PlanName: planName, Monthly: decimal.Zero}
			result.ByState[rec.State] = summary
		}
		summary.Employees++
		result.EmployeesCovered++

		fs := rec.FamilyStatus()
		lives := domain.LivesForStatus(fs)
		summary.Lives += lives
		result.LivesCovered += lives
		result.ProjectedRenewal = result.ProjectedRenewal.Add(rec.RenewalPremium)

		age, _ := census.EmployeeAge(rec)
		detail := domain.EmployeeDetail{
			EmployeeID:       rec.EmployeeID,
			FirstName:        rec.FirstName,
			LastName:         rec.LastName,
			State:            rec.State,
			RatingArea:       rec.RatingArea,
			FamilyStatus:     fs,
			EmployeeAge:      age,
			CurrentEEMonthly: rec.CurrentEEMonthly,
			CurrentERMonthly: rec.CurrentERMonthly,
			GapMonthly:       rec.GapInsuranceMonthly,
			CurrentTotal:     rec.CurrentEEMonthly.Add(rec.CurrentERMonthly).Add(rec.GapInsuranceMonthly),
			ProjectedRenewal: rec.RenewalPremium,
		}

		key, ok := locationKeyFor(rec)
		if !ok {
			result.Errors = append(result.Errors,
				fmt.Sprintf("No age data for employee in %s, RA %s", rec.State, key.RatingAreaLabel))
			detail.PlanName = noPlanFoundLabel
			result.Details = append(result.Details, detail)
			continue
		}

		lr, found := lowest[key]
		if !found {
			result.Errors = append(result.Errors,
				fmt.Sprintf("No %s rate for %s %s, age %s", metal, key.State, key.RatingAreaLabel, key.AgeBand))
			detail.PlanName = noPlanFoundLabel
			result.Details = append(result.Details, detail)
			continue
		}

		multiplier := e.EstimateTiers.Multiplier(fs)
		premium := lr.Rate.Mul(multiplier)
		summary.Monthly = summary.Monthly.Add(premium)
		result.TotalMonthly = result.TotalMonthly.Add(premium)

		av := lr.ActuarialValue
		if lr.PlanID != "" && !avSeen[lr.PlanID] {
			avSeen[lr.PlanID] = true
			if av != nil {
				avSum = avSum.Add(*av)
			} else {
				avSum = avSum.Add(avDefaults[metal])
			}
			avCount++
		}

		detail.PlanID = lr.PlanID
		detail.PlanName = lr.PlanName
		detail.EmployeeRate = lr.Rate
		detail.TierMultiplier = multiplier
		detail.MonthlyPremium = premium
		detail.ActuarialValue = av
		result.Details = append(result.Details, detail)
	}

	result.TotalAnnual = result.TotalMonthly.Mul(monthsPerYear)
	if avCount > 0 {
		avg := avSum.Div(decimal.NewFromInt(int64(avCount))).Round(1)
		result.AverageAV = &avg
	}

	e.Logger.Debugf("lowest-cost %s projection: %d employees, %d locations, %d errors",
		metal, result.EmployeesCovered, len(lowest), len(result.Errors))
	return result
}
