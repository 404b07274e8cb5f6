package domain

import "github.com/shopspring/decimal"

// TierMultipliers scales a single base rate by family composition. Two
// independently configured sets exist and must not be unified: the rated set
// applies to actual family-tier state premiums, the estimate set to
// lowest-cost-plan projections that extrapolate from the employee-only rate.
type TierMultipliers map[FamilyStatus]decimal.Decimal

// Multiplier returns the factor for a status, defaulting to 1.0 for unknown
// or employee-only statuses.
func (tm TierMultipliers) Multiplier(fs FamilyStatus) decimal.Decimal {
	if m, ok := tm[fs]; ok {
		return m
	}
	return decimal.NewFromInt(1)
}

// DefaultRatedTierMultipliers approximate the composition factors carriers
// file in family-tier states (NY, VT). Empirical, not regulatory; override
// via configuration when a carrier's filed factors are known.
func DefaultRatedTierMultipliers() TierMultipliers {
	return TierMultipliers{
		FamilyStatusEmployee:       decimal.NewFromFloat(1.0),
		FamilyStatusEmployeeSpouse: decimal.NewFromFloat(2.0),
		FamilyStatusEmployeeChild:  decimal.NewFromFloat(1.7),
		FamilyStatusFamily:         decimal.NewFromFloat(2.85),
	}
}

// DefaultEstimateTierMultipliers scale an employee-only lowest-cost rate
// into a rough family premium for the LCSP and multi-metal projections.
func DefaultEstimateTierMultipliers() TierMultipliers {
	return TierMultipliers{
		FamilyStatusEmployee:       decimal.NewFromFloat(1.0),
		FamilyStatusEmployeeSpouse: decimal.NewFromFloat(1.5),
		FamilyStatusEmployeeChild:  decimal.NewFromFloat(1.3),
		FamilyStatusFamily:         decimal.NewFromFloat(1.8),
	}
}

// TierLives estimates covered lives per family status for projections that
// do not resolve individual dependents.
var TierLives = map[FamilyStatus]int{
	FamilyStatusEmployee:       1,
	FamilyStatusEmployeeSpouse: 2,
	FamilyStatusEmployeeChild:  2,
	FamilyStatusFamily:         3,
}

// LivesForStatus returns the estimated lives for a status, defaulting to 1.
func LivesForStatus(fs FamilyStatus) int {
	if n, ok := TierLives[fs]; ok {
		return n
	}
	return 1
}
