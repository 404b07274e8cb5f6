// Package calculation computes workforce premium totals for ICHRA plan
// scenarios: age-banded and family-tier marketplace rating, lowest-cost-plan
// projections, and the group-priced cooperative and Sedera alternatives.
package calculation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/glovehealth/ichra-engine/internal/census"
	"github.com/glovehealth/ichra-engine/internal/domain"
	"github.com/glovehealth/ichra-engine/internal/ratestore"
	"github.com/glovehealth/ichra-engine/internal/rating"
)

var monthsPerYear = decimal.NewFromInt(12)

// Engine computes premiums against a rate store. It holds no mutable state
// between calls; every calculation reads caller-supplied inputs and returns
// a fresh result, so a single Engine is safe for concurrent use as long as
// the store is.
type Engine struct {
	Store ratestore.Store

	// RatedTiers scales family-tier state premiums; EstimateTiers scales
	// employee-only lowest-cost rates into family estimates. Separate sets
	// on purpose: they approximate different things.
	RatedTiers    domain.TierMultipliers
	EstimateTiers domain.TierMultipliers

	Logger Logger
}

// NewEngine creates an engine with the default multiplier sets.
func NewEngine(store ratestore.Store) *Engine {
	return &Engine{
		Store:         store,
		RatedTiers:    domain.DefaultRatedTierMultipliers(),
		EstimateTiers: domain.DefaultEstimateTierMultipliers(),
		Logger:        noopLogger{},
	}
}

// NewEngineWithConfig creates an engine with caller-supplied multiplier
// sets.
func NewEngineWithConfig(store ratestore.Store, rated, estimate domain.TierMultipliers, logger Logger) *Engine {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Engine{Store: store, RatedTiers: rated, EstimateTiers: estimate, Logger: logger}
}

// rateKey indexes a pre-fetched rate batch for O(1) member lookups.
type rateKey struct {
	planID  string
	areaLbl string
	ageBand string
}

func indexRates(rows []domain.RateRow) map[rateKey]decimal.Decimal {
	idx := make(map[rateKey]decimal.Decimal, len(rows))
	for _, r := range rows {
		key := rateKey{planID: r.PlanID, areaLbl: r.RatingAreaLabel, ageBand: r.AgeBand}
		if _, ok := idx[key]; !ok {
			idx[key] = r.Rate
		}
	}
	return idx
}

// EmployeePremium computes the total monthly premium for one employee and
// their covered family under a specific plan, using a pre-fetched rate
// batch. Family-tier states price the whole composition off one rate row;
// everywhere else the premium is the sum of each rated member's age-band
// rate. Members with no matching rate row contribute zero; the caller is
// responsible for flagging zero-premium outcomes.
func (e *Engine) EmployeePremium(rec *domain.EmployeeRecord, planID string, ratingArea int, rates []domain.RateRow) decimal.Decimal {
	return e.employeePremium(rec, planID, ratingArea, indexRates(rates))
}

func (e *Engine) employeePremium(rec *domain.EmployeeRecord, planID string, ratingArea int, idx map[rateKey]decimal.Decimal) decimal.Decimal {
	if domain.FamilyTierStates[domain.PlanStateCode(planID)] {
		return e.familyTierPremium(rec, planID, ratingArea, idx)
	}

	areaLabel := domain.RatingAreaLabel(ratingArea)
	total := decimal.Zero
	for _, member := range rating.ResolveMembers(rec) {
		key := rateKey{planID: planID, areaLbl: areaLabel, ageBand: domain.AgeBand(member.Age)}
		if rate, ok := idx[key]; ok {
			total = total.Add(rate)
		}
	}
	return total
}

// familyTierPremium prices NY/VT compositions: one base rate row (the
// family-tier sentinel band) scaled by the rated tier multiplier for the
// family status. A missing row yields zero.
func (e *Engine) familyTierPremium(rec *domain.EmployeeRecord, planID string, ratingArea int, idx map[rateKey]decimal.Decimal) decimal.Decimal {
	key := rateKey{planID: planID, areaLbl: domain.RatingAreaLabel(ratingArea), ageBand: domain.FamilyTierLabel}
	base, ok := idx[key]
	if !ok {
		return decimal.Zero
	}
	return base.Mul(e.RatedTiers.Multiplier(rec.FamilyStatus()))
}

// ScenarioTotals prices the whole census under explicit per-state plan
// selections. All selected plans' rates are fetched in ONE batched round
// trip and sliced per employee; the store is never queried per census row.
// Missing rates degrade to zero premium plus an error string, so partial
// data still produces a usable result.
func (e *Engine) ScenarioTotals(ctx context.Context, c *census.Census, selections map[string]string) (*domain.ScenarioResult, error) {
	started := time.Now()

	planIDs := uniquePlanIDs(selections)
	rates, err := e.Store.FetchRates(ctx, planIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rates for scenario: %w", err)
	}
	names, err := e.Store.PlanNames(ctx, planIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch plan names: %w", err)
	}
	idx := indexRates(rates)

	result := newScenarioResult("")
	byState := c.ByState()

	for _, state := range sortedKeys(selections) {
		planID := selections[state]
		employees := byState[state]
		if len(employees) == 0 {
			continue
		}

		summary := &domain.StateSummary{PlanID: planID, PlanName: names[planID]}
		if summary.PlanName == "" {
			summary.PlanName = "Unknown"
		}
		summary.Monthly = decimal.Zero

		for _, rec := range employees {
			area := rec.RatingArea
			if area <= 0 {
				area = 1
			}

			premium := e.employeePremium(rec, planID, area, idx)
			if premium.IsZero() {
				result.Errors = append(result.Errors,
					fmt.Sprintf("No rate found for employee in %s, RA %d", state, area))
			}
			summary.Monthly = summary.Monthly.Add(premium)
			summary.Lives += len(rating.ResolveMembers(rec))
		}

		summary.Employees = len(employees)
		result.ByState[state] = summary
		result.TotalMonthly = result.TotalMonthly.Add(summary.Monthly)
		result.EmployeesCovered += summary.Employees
		result.LivesCovered += summary.Lives
	}

	result.TotalAnnual = result.TotalMonthly.Mul(monthsPerYear)
	e.Logger.Infof("scenario totals: %d plans, %d employees in %s",
		len(planIDs), result.EmployeesCovered, time.Since(started).Round(time.Millisecond))
	return result, nil
}

// LowestCostPlanSelections picks the cheapest plan of a metal level per
// census state, sampling each state's median employee age and probing its
// employees' rating areas in order (falling back to Rating Area 1).
func (e *Engine) LowestCostPlanSelections(ctx context.Context, c *census.Census, metal domain.MetalLevel) (map[string]string, error) {
	selections := make(map[string]string)
	for state, employees := range c.ByState() {
		ageBand := domain.AgeBand(medianEmployeeAge(employees))
		if domain.FamilyTierStates[state] {
			ageBand = domain.FamilyTierLabel
		}

		planID, err := e.Store.LowestCostPlanID(ctx, state, ratingAreasOf(employees), metal, ageBand)
		if err != nil {
			return nil, fmt.Errorf("failed to find lowest-cost %s plan for %s: %w", metal, state, err)
		}
		if planID != "" {
			selections[state] = planID
		}
	}
	return selections, nil
}

func newScenarioResult(metal domain.MetalLevel) *domain.ScenarioResult {
	return &domain.ScenarioResult{
		RunID:        uuid.NewString(),
		MetalLevel:   metal,
		TotalMonthly: decimal.Zero,
		TotalAnnual:  decimal.Zero,
		ByState:      make(map[string]*domain.StateSummary),
		Errors:       []string{},
	}
}

func uniquePlanIDs(selections map[string]string) []string {
	seen := make(map[string]bool, len(selections))
	var out []string
	for _, state := range sortedKeys(selections) {
		id := selections[state]
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func medianEmployeeAge(employees []*domain.EmployeeRecord) int {
	var ages []int
	for _, rec := range employees {
		if age, ok := census.EmployeeAge(rec); ok {
			ages = append(ages, age)
		}
	}
	if len(ages) == 0 {
		return 40
	}
	sort.Ints(ages)
	return ages[len(ages)/2]
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func ratingAreasOf(employees []*domain.EmployeeRecord) []int {
	seen := make(map[int]bool)
	var out []int
	for _, rec := range employees {
		if rec.RatingArea > 0 && !seen[rec.RatingArea] {
			seen[rec.RatingArea] = true
			out = append(out, rec.RatingArea)
		}
	}
	return out
}
