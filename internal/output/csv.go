package output

import (
	"bytes"
	"encoding/csv"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/glovehealth/ichra-engine/internal/domain"
)

var monthsPerYear = decimal.NewFromInt(12)

// ScenarioCSV renders the per-state summary of one scenario as CSV, one row
// per state plus a totals row.
func ScenarioCSV(result *domain.ScenarioResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{"State", "Employees", "Lives", "MonthlyPremium", "AnnualPremium", "PlanID", "PlanName"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, state := range sortedStates(result.ByState) {
		s := result.ByState[state]
		row := []string{
			state,
			strconv.Itoa(s.Employees),
			strconv.Itoa(s.Lives),
			s.Monthly.StringFixed(2),
			s.Monthly.Mul(monthsPerYear).StringFixed(2),
			s.PlanID,
			s.PlanName,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	totals := []string{
		"TOTAL",
		strconv.Itoa(result.EmployeesCovered),
		strconv.Itoa(result.LivesCovered),
		result.TotalMonthly.StringFixed(2),
		result.TotalAnnual.StringFixed(2),
		"", "",
	}
	if err := w.Write(totals); err != nil {
		return nil, err
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// DetailCSV renders the per-employee audit rows of a scenario as CSV.
func DetailCSV(result *domain.ScenarioResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{"EmployeeID", "LastName", "FirstName", "State", "RatingArea",
		"FamilyStatus", "Age", "PlanID", "PlanName", "BaseRate", "TierMultiplier", "MonthlyPremium"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	details := append([]domain.EmployeeDetail(nil), result.Details...)
	sort.SliceStable(details, func(i, j int) bool { return details[i].EmployeeID < details[j].EmployeeID })

	for _, d := range details {
		row := []string{
			d.EmployeeID,
			d.LastName,
			d.FirstName,
			d.State,
			strconv.Itoa(d.RatingArea),
			string(d.FamilyStatus),
			strconv.Itoa(d.EmployeeAge),
			d.PlanID,
			d.PlanName,
			d.EmployeeRate.StringFixed(2),
			d.TierMultiplier.StringFixed(2),
			d.MonthlyPremium.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
