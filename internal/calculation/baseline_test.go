package calculation

import (
	"testing"

	"github.com/glovehealth/ichra-engine/internal/census"
	"github.com/glovehealth/ichra-engine/internal/domain"
)

func TestCurrentTotals(t *testing.T) {
	c := &census.Census{Employees: []domain.EmployeeRecord{
		{CurrentEEMonthly: money("150"), CurrentERMonthly: money("450"), GapInsuranceMonthly: money("25")},
		{CurrentEEMonthly: money("100"), CurrentERMonthly: money("400")},
		{}, // no contribution data
	}}

	totals := CurrentTotals(c)

	if !totals.EEMonthly.Equal(money("250")) {
		t.Errorf("EE monthly = %s, want 250", totals.EEMonthly)
	}
	if !totals.ERMonthly.Equal(money("850")) {
		t.Errorf("ER monthly = %s, want 850", totals.ERMonthly)
	}
	if !totals.PremiumMonthly.Equal(money("1125")) {
		t.Errorf("premium monthly = %s, want 1125 (incl gap)", totals.PremiumMonthly)
	}
	if !totals.PremiumAnnual.Equal(money("13500")) {
		t.Errorf("premium annual = %s, want 13500", totals.PremiumAnnual)
	}
	if totals.EmployeesWithData != 2 {
		t.Errorf("employees with data = %d, want 2", totals.EmployeesWithData)
	}
}

func TestProjectedRenewalTotals(t *testing.T) {
	c := &census.Census{Employees: []domain.EmployeeRecord{
		{RenewalPremium: money("720"), GapInsuranceMonthly: money("25")},
		{RenewalPremium: money("600")},
		{},
	}}

	totals := ProjectedRenewalTotals(c)

	if !totals.HasData {
		t.Fatal("expected HasData with renewal rows present")
	}
	if !totals.Monthly.Equal(money("1345")) {
		t.Errorf("monthly = %s, want 1345 (renewal + gap)", totals.Monthly)
	}
	if !totals.Annual.Equal(money("16140")) {
		t.Errorf("annual = %s, want 16140", totals.Annual)
	}
	if totals.EmployeesWithData != 2 {
		t.Errorf("employees with data = %d, want 2", totals.EmployeesWithData)
	}
}

func TestProjectedRenewalTotalsNoData(t *testing.T) {
	c := &census.Census{Employees: []domain.EmployeeRecord{{}, {}}}
	totals := ProjectedRenewalTotals(c)
	if totals.HasData {
		t.Error("HasData should be false without renewal rows")
	}
	if !totals.Monthly.IsZero() {
		t.Errorf("monthly = %s, want 0", totals.Monthly)
	}
}
