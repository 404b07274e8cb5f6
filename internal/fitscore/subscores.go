package fitscore

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/glovehealth/ichra-engine/internal/census"
	"github.com/glovehealth/ichra-engine/internal/domain"
)

// Neutral defaults per category, returned when the category's input is
// absent.
const (
	defaultCostAdvantage      = 70
	defaultMarketReadiness    = 75
	defaultWorkforceFit       = 70
	defaultGeographic         = 80
	defaultEmployeeExperience = 70
	defaultAdminReadiness     = 60
)

// costAdvantage scores the projected ICHRA annual cost against the current
// employer-paid annual cost, on tiered savings thresholds.
func (calc *Calculator) costAdvantage(fin *FinancialInputs) SubScore {
	if fin.Current == nil || fin.Scenario == nil {
		return degraded(defaultCostAdvantage, "no financial comparison available")
	}

	currentAnnual := fin.Current.ERAnnual
	proposedAnnual := fin.Scenario.TotalAnnual
	if !currentAnnual.IsPositive() || !proposedAnnual.IsPositive() {
		return degraded(defaultCostAdvantage, "current or projected annual cost unavailable")
	}

	hundred := decimal.NewFromInt(100)
	savingsPct, _ := currentAnnual.Sub(proposedAnnual).Div(currentAnnual).Mul(hundred).Float64()

	switch {
	case savingsPct >= 20:
		return computed(100)
	case savingsPct >= 15:
		return computed(90)
	case savingsPct >= 10:
		return computed(80)
	case savingsPct >= 5:
		return computed(70)
	case savingsPct >= 0:
		return computed(50)
	case savingsPct >= -5:
		return computed(40)
	default:
		return computed(20)
	}
}

// marketReadiness scores marketplace plan availability on the minimum and
// average plan count across every distinct employee location.
func (calc *Calculator) marketReadiness(ctx context.Context, c *census.Census) SubScore {
	if calc.store == nil {
		return degraded(defaultMarketReadiness, "no rate store available")
	}

	type location struct {
		state string
		area  int
	}
	seen := make(map[location]bool)
	var locations []location
	for i := range c.Employees {
		rec := &c.Employees[i]
		if rec.State == "" || rec.RatingArea <= 0 {
			continue
		}
		loc := location{state: rec.State, area: rec.RatingArea}
		if !seen[loc] {
			seen[loc] = true
			locations = append(locations, loc)
		}
	}
	if len(locations) == 0 {
		return degraded(defaultMarketReadiness, "no resolvable employee locations")
	}

	minPlans, sum := -1, 0
	for _, loc := range locations {
		count, err := calc.store.PlanCountForArea(ctx, loc.state, domain.RatingAreaLabel(loc.area))
		if err != nil {
			count = 5
		}
		if minPlans < 0 || count < minPlans {
			minPlans = count
		}
		sum += count
	}
	avgPlans := float64(sum) / float64(len(locations))

	switch {
	case minPlans >= 15 && avgPlans >= 20:
		return computed(100)
	case minPlans >= 10 && avgPlans >= 15:
		return computed(90)
	case minPlans >= 7 && avgPlans >= 10:
		return computed(80)
	case minPlans >= 5 && avgPlans >= 7:
		return computed(70)
	case minPlans >= 3:
		return computed(60)
	default:
		return computed(40)
	}
}

// workforceFit scores the age distribution: younger workforces benefit more
// from individual-market pricing, 55-plus concentrations penalize.
func (calc *Calculator) workforceFit(c *census.Census) SubScore {
	var ages []int
	for i := range c.Employees {
		if age, ok := census.EmployeeAge(&c.Employees[i]); ok {
			ages = append(ages, age)
		}
	}
	if len(ages) == 0 {
		return degraded(defaultWorkforceFit, "no employee ages resolvable")
	}

	total := float64(len(ages))
	var under35, under45, over55 float64
	for _, age := range ages {
		if age < 35 {
			under35++
		}
		if age < 45 {
			under45++
		}
		if age >= 55 {
			over55++
		}
	}
	pctUnder35 := under35 / total * 100
	pctUnder45 := under45 / total * 100
	pctOver55 := over55 / total * 100

	score := 50
	switch {
	case pctUnder35 >= 40:
		score += 30
	case pctUnder35 >= 25:
		score += 20
	case pctUnder35 >= 15:
		score += 10
	}
	switch {
	case pctUnder45 >= 65:
		score += 20
	case pctUnder45 >= 50:
		score += 10
	}
	switch {
	case pctOver55 >= 30:
		score -= 20
	case pctOver55 >= 20:
		score -= 10
	}

	return computed(clamp(score, 20, 100))
}

// geographicComplexity scores administrative spread: fewer states is
// simpler, with a minor penalty for many distinct rating areas.
func (calc *Calculator) geographicComplexity(c *census.Census) SubScore {
	states := make(map[string]bool)
	areas := make(map[string]bool)
	for i := range c.Employees {
		rec := &c.Employees[i]
		if rec.State != "" {
			states[rec.State] = true
		}
		if rec.RatingArea > 0 {
			areas[rec.State+domain.RatingAreaLabel(rec.RatingArea)] = true
		}
	}
	if len(states) == 0 {
		return degraded(defaultGeographic, "no employee states present")
	}

	var score int
	switch n := len(states); {
	case n == 1:
		score = 100
	case n <= 3:
		score = 90
	case n <= 5:
		score = 75
	case n <= 10:
		score = 60
	case n <= 20:
		score = 45
	default:
		score = 30
	}

	switch n := len(areas); {
	case n > 10:
		score -= 10
	case n > 5:
		score -= 5
	}

	return computed(clamp(score, 20, 100))
}

// employeeExperience scores expected transition ease: employee-only rows
// enroll one person, and younger workforces navigate the marketplace more
// easily.
func (calc *Calculator) employeeExperience(c *census.Census) SubScore {
	total := len(c.Employees)
	if total == 0 {
		return degraded(defaultEmployeeExperience, "census is empty")
	}

	// FamilyStatus() defaults blank rows to employee-only; without any real
	// status data the tier mix is unknown, not 100% single coverage.
	withStatus := 0
	eeOnly := 0
	for i := range c.Employees {
		if c.Employees[i].FamilySt == "" {
			continue
		}
		withStatus++
		if c.Employees[i].FamilyStatus() == domain.FamilyStatusEmployee {
			eeOnly++
		}
	}
	if withStatus == 0 {
		return degraded(defaultEmployeeExperience, "census has no family status data")
	}
	pctEEOnly := float64(eeOnly) / float64(withStatus) * 100

	var score int
	switch {
	case pctEEOnly >= 70:
		score = 90
	case pctEEOnly >= 55:
		score = 80
	case pctEEOnly >= 40:
		score = 70
	case pctEEOnly >= 25:
		score = 60
	default:
		score = 50
	}

	var ageSum, ageCount int
	for i := range c.Employees {
		if age, ok := census.EmployeeAge(&c.Employees[i]); ok {
			ageSum += age
			ageCount++
		}
	}
	if ageCount > 0 {
		avgAge := float64(ageSum) / float64(ageCount)
		switch {
		case avgAge < 35:
			score += 10
		case avgAge < 40:
			score += 5
		case avgAge > 50:
			score -= 5
		}
	}

	return computed(clamp(score, 30, 100))
}

// adminReadiness scores census data quality: completeness of the required
// fields plus the presence of contribution and rating-area data, which
// indicate mature benefits administration.
func (calc *Calculator) adminReadiness(c *census.Census) SubScore {
	total := len(c.Employees)
	if total == 0 {
		return degraded(defaultAdminReadiness, "census is empty")
	}

	var withState, withStatus, withContribution, withArea int
	for i := range c.Employees {
		rec := &c.Employees[i]
		if rec.State != "" {
			withState++
		}
		if rec.FamilySt != "" {
			withStatus++
		}
		if rec.CurrentEEMonthly.IsPositive() || rec.CurrentERMonthly.IsPositive() {
			withContribution++
		}
		if rec.RatingArea > 0 {
			withArea++
		}
	}

	completeness := func(n int) float64 { return float64(n) / float64(total) }

	score := 60
	for _, frac := range []float64{completeness(withState), completeness(withStatus)} {
		switch {
		case frac >= 0.95:
			score += 8
		case frac >= 0.8:
			score += 5
		}
	}

	if withContribution > 0 {
		switch frac := completeness(withContribution); {
		case frac >= 0.9:
			score += 10
		case frac >= 0.5:
			score += 5
		}
		score += 5
	}

	switch frac := completeness(withArea); {
	case frac >= 0.95:
		score += 8
	case frac >= 0.8:
		score += 4
	}

	return computed(clamp(score, 30, 100))
}
