package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/glovehealth/ichra-engine/internal/census"
	"github.com/glovehealth/ichra-engine/internal/domain"
)

// CurrentTotals sums the census-supplied current group-plan contributions.
// An employee counts toward EmployeesWithData when either contribution
// column is positive; gap insurance is part of the total premium spend.
func CurrentTotals(c *census.Census) *domain.BaselineTotals {
	t := &domain.BaselineTotals{
		EEMonthly:  decimal.Zero,
		ERMonthly:  decimal.Zero,
		GapMonthly: decimal.Zero,
	}

	for i := range c.Employees {
		rec := &c.Employees[i]
		t.EEMonthly = t.EEMonthly.Add(rec.CurrentEEMonthly)
		t.ERMonthly = t.ERMonthly.Add(rec.CurrentERMonthly)
		t.GapMonthly = t.GapMonthly.Add(rec.GapInsuranceMonthly)
		if rec.CurrentEEMonthly.IsPositive() || rec.CurrentERMonthly.IsPositive() {
			t.EmployeesWithData++
		}
	}

	t.PremiumMonthly = t.EEMonthly.Add(t.ERMonthly).Add(t.GapMonthly)
	t.EEAnnual = t.EEMonthly.Mul(monthsPerYear)
	t.ERAnnual = t.ERMonthly.Mul(monthsPerYear)
	t.GapAnnual = t.GapMonthly.Mul(monthsPerYear)
	t.PremiumAnnual = t.PremiumMonthly.Mul(monthsPerYear)
	return t
}

// ProjectedRenewalTotals sums the census-supplied next-year renewal premium
// column, carrying gap insurance forward at its current cost. HasData is
// false when no row supplied a renewal figure, letting callers suppress the
// renewal comparison entirely.
func ProjectedRenewalTotals(c *census.Census) *domain.RenewalTotals {
	t := &domain.RenewalTotals{
		Monthly:    decimal.Zero,
		GapMonthly: decimal.Zero,
	}

	for i := range c.Employees {
		rec := &c.Employees[i]
		if rec.RenewalPremium.IsPositive() {
			t.Monthly = t.Monthly.Add(rec.RenewalPremium)
			t.EmployeesWithData++
		}
		t.GapMonthly = t.GapMonthly.Add(rec.GapInsuranceMonthly)
	}

	t.HasData = t.EmployeesWithData > 0
	if t.HasData {
		t.Monthly = t.Monthly.Add(t.GapMonthly)
	}
	t.Annual = t.Monthly.Mul(monthsPerYear)
	t.GapAnnual = t.GapMonthly.Mul(monthsPerYear)
	return t
}
