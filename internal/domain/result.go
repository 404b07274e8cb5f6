package domain

import (
	"github.com/shopspring/decimal"
)

// StateSummary is the per-state rollup inside a scenario result.
type StateSummary struct {
	Employees int             `json:"employees"`
	Lives     int             `json:"lives"`
	Monthly   decimal.Decimal `json:"monthly"`
	PlanID    string          `json:"plan_id,omitempty"`
	PlanName  string          `json:"plan_name,omitempty"`
}

// EmployeeDetail is the optional per-employee audit record a scenario can
// carry alongside its totals.
type EmployeeDetail struct {
	EmployeeID       string           `json:"employee_id"`
	FirstName        string           `json:"first_name,omitempty"`
	LastName         string           `json:"last_name,omitempty"`
	State            string           `json:"state"`
	RatingArea       int              `json:"rating_area"`
	FamilyStatus     FamilyStatus     `json:"family_status"`
	EmployeeAge      int              `json:"ee_age"`
	PlanID           string           `json:"plan_id,omitempty"`
	PlanName         string           `json:"plan_name,omitempty"`
	EmployeeRate     decimal.Decimal  `json:"ee_rate"`
	TierMultiplier   decimal.Decimal  `json:"tier_multiplier"`
	MonthlyPremium   decimal.Decimal  `json:"monthly_premium"`
	ActuarialValue   *decimal.Decimal `json:"actuarial_value,omitempty"`
	CurrentEEMonthly decimal.Decimal  `json:"current_ee_monthly"`
	CurrentERMonthly decimal.Decimal  `json:"current_er_monthly"`
	GapMonthly       decimal.Decimal  `json:"gap_insurance_monthly"`
	CurrentTotal     decimal.Decimal  `json:"current_total_monthly"`
	ProjectedRenewal decimal.Decimal  `json:"projected_renewal_premium"`
}

// ScenarioResult is a complete workforce premium calculation. Runs are
// identified by RunID for audit trails; results are built fresh per call and
// never mutated afterwards. Missing data contributes zero and is recorded in
// Errors, so a partial result remains usable.
type ScenarioResult struct {
	RunID            string                   `json:"run_id"`
	MetalLevel       MetalLevel               `json:"metal_level,omitempty"`
	TotalMonthly     decimal.Decimal          `json:"total_monthly"`
	TotalAnnual      decimal.Decimal          `json:"total_annual"`
	ProjectedRenewal decimal.Decimal          `json:"total_projected_renewal,omitempty"`
	EmployeesCovered int                      `json:"employees_covered"`
	LivesCovered     int                      `json:"lives_covered"`
	ByState          map[string]*StateSummary `json:"by_state"`
	Errors           []string                 `json:"errors"`
	Details          []EmployeeDetail         `json:"employee_details,omitempty"`
	AverageAV        *decimal.Decimal         `json:"average_av,omitempty"`
}

// BaselineTotals summarizes the current group plan from census-supplied
// contribution columns.
type BaselineTotals struct {
	EEMonthly         decimal.Decimal `json:"total_ee_monthly"`
	ERMonthly         decimal.Decimal `json:"total_er_monthly"`
	GapMonthly        decimal.Decimal `json:"total_gap_monthly"`
	PremiumMonthly    decimal.Decimal `json:"total_premium_monthly"`
	EEAnnual          decimal.Decimal `json:"total_ee_annual"`
	ERAnnual          decimal.Decimal `json:"total_er_annual"`
	GapAnnual         decimal.Decimal `json:"total_gap_annual"`
	PremiumAnnual     decimal.Decimal `json:"total_premium_annual"`
	EmployeesWithData int             `json:"employees_with_data"`
}

// RenewalTotals summarizes the projected next-year renewal from the
// census-supplied renewal premium column.
type RenewalTotals struct {
	Monthly           decimal.Decimal `json:"total_monthly"`
	Annual            decimal.Decimal `json:"total_annual"`
	GapMonthly        decimal.Decimal `json:"total_gap_monthly"`
	GapAnnual         decimal.Decimal `json:"total_gap_annual"`
	EmployeesWithData int             `json:"employees_with_data"`
	HasData           bool            `json:"has_data"`
}

// TierTotal accumulates group-priced premiums for one family status.
type TierTotal struct {
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// RateRange is the youngest-band to oldest-band rate spread for a family
// status in a group-priced table.
type RateRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// GroupPricingTotals is the workforce rollup for one group-priced product
// variant (a cooperative deductible level or a Sedera IUA level).
type GroupPricingTotals struct {
	Total      decimal.Decimal             `json:"total"`
	ByTier     map[FamilyStatus]*TierTotal `json:"by_tier"`
	RateRanges map[FamilyStatus]RateRange  `json:"rate_ranges"`
}

// NewGroupPricingTotals returns an empty rollup with all four tiers present.
func NewGroupPricingTotals() *GroupPricingTotals {
	g := &GroupPricingTotals{
		ByTier:     make(map[FamilyStatus]*TierTotal, 4),
		RateRanges: make(map[FamilyStatus]RateRange, 4),
	}
	for _, fs := range []FamilyStatus{FamilyStatusEmployee, FamilyStatusEmployeeSpouse, FamilyStatusEmployeeChild, FamilyStatusFamily} {
		g.ByTier[fs] = &TierTotal{}
	}
	return g
}
