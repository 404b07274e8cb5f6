package affordability

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glovehealth/ichra-engine/internal/census"
	"github.com/glovehealth/ichra-engine/internal/domain"
	"github.com/glovehealth/ichra-engine/internal/ratestore"
)

func intPtr(n int) *int { return &n }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestEmployeeAffordabilityAlreadyAffordable(t *testing.T) {
	// $5000/mo income, $450 LCSP: max EE share is $498, so no employer
	// contribution is required at all.
	rec := &domain.EmployeeRecord{
		EmployeeID:       "E001",
		State:            "IL",
		Age:              intPtr(40),
		MonthlyIncome:    decPtr("5000"),
		CurrentERMonthly: decimal.NewFromInt(500),
	}
	result := EmployeeAffordability(rec, decimal.NewFromInt(450))

	require.True(t, result.HasIncomeData)
	assert.True(t, result.MaxEEContribution.Equal(decimal.RequireFromString("498")), "max EE = %s", result.MaxEEContribution)
	assert.True(t, result.MinERContribution.IsZero())
	assert.True(t, result.Gap.IsZero())
	assert.True(t, result.IsAffordableAtCurrent)
}

func TestEmployeeAffordabilityNeedsContribution(t *testing.T) {
	// $3000/mo income: max EE share $298.80, LCSP $600 needs $301.20 from
	// the employer; nothing is paid currently, so the whole amount is gap.
	rec := &domain.EmployeeRecord{
		EmployeeID:    "E002",
		State:         "IL",
		Age:           intPtr(55),
		MonthlyIncome: decPtr("3000"),
	}
	result := EmployeeAffordability(rec, decimal.NewFromInt(600))

	require.True(t, result.HasIncomeData)
	assert.True(t, result.MinERContribution.Equal(decimal.RequireFromString("301.2")), "min ER = %s", result.MinERContribution)
	assert.True(t, result.Gap.Equal(decimal.RequireFromString("301.2")))
	assert.False(t, result.IsAffordableAtCurrent)
}

func TestEmployeeAffordabilityNoIncome(t *testing.T) {
	rec := &domain.EmployeeRecord{EmployeeID: "E003", State: "IL", Age: intPtr(30)}
	result := EmployeeAffordability(rec, decimal.NewFromInt(400))
	assert.False(t, result.HasIncomeData)
	assert.True(t, result.MinERContribution.IsZero())
}

func TestWorkforceAffordability(t *testing.T) {
	area := domain.RatingAreaLabel(1)
	silverPlan := "12345IL0010001"
	plans := []domain.PlanInfo{{PlanID: silverPlan, Name: "Prairie Silver", Metal: domain.MetalSilver}}
	rates := []domain.RateRow{
		{PlanID: silverPlan, RatingAreaLabel: area, AgeBand: "40", Rate: decimal.NewFromInt(450)},
		{PlanID: silverPlan, RatingAreaLabel: area, AgeBand: "55", Rate: decimal.NewFromInt(600)},
	}
	store := ratestore.NewMemoryStore(plans, rates)
	analyzer := NewAnalyzer(store)

	c := &census.Census{Employees: []domain.EmployeeRecord{
		{EmployeeID: "E001", State: "IL", RatingArea: 1, Age: intPtr(40),
			MonthlyIncome: decPtr("5000"), CurrentERMonthly: decimal.NewFromInt(500)},
		{EmployeeID: "E002", State: "IL", RatingArea: 1, Age: intPtr(55),
			MonthlyIncome: decPtr("3000")},
		// No income data, not analyzed.
		{EmployeeID: "E003", State: "IL", RatingArea: 1, Age: intPtr(30)},
	}}

	result, err := analyzer.WorkforceAffordability(context.Background(), c)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Summary.TotalEmployees)
	assert.Equal(t, 2, result.Summary.EmployeesAnalyzed)
	assert.Equal(t, 1, result.Summary.AffordableAtCurrent)
	assert.Equal(t, 1, result.Summary.NeedsIncrease)
	assert.True(t, result.Summary.TotalGapAnnual.Equal(decimal.RequireFromString("3614.4")),
		"gap annual = %s", result.Summary.TotalGapAnnual)
	assert.Equal(t, 1, store.LowestRatesCalls, "analysis must batch its rate lookups")
	assert.Empty(t, result.Errors)
}

func TestWorkforceAffordabilityMissingLocation(t *testing.T) {
	store := ratestore.NewMemoryStore(nil, nil)
	analyzer := NewAnalyzer(store)

	c := &census.Census{Employees: []domain.EmployeeRecord{
		{EmployeeID: "E001", State: "MT", RatingArea: 2, Age: intPtr(40), MonthlyIncome: decPtr("4000")},
	}}

	result, err := analyzer.WorkforceAffordability(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Summary.EmployeesAnalyzed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "No Silver rate for MT")
}
