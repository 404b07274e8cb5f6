// Package output renders calculation results for the CLI: a console
// summary, JSON for downstream tooling and CSV for spreadsheet review.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/glovehealth/ichra-engine/internal/affordability"
	"github.com/glovehealth/ichra-engine/internal/domain"
	"github.com/glovehealth/ichra-engine/internal/fitscore"
)

// ReportGenerator renders results in the supported formats.
type ReportGenerator struct {
	Out io.Writer
}

// NewReportGenerator creates a generator writing to the given stream.
func NewReportGenerator(out io.Writer) *ReportGenerator {
	return &ReportGenerator{Out: out}
}

// FormatCurrency renders a decimal as dollars with two places.
func FormatCurrency(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// WriteJSON encodes any result as indented JSON.
func (rg *ReportGenerator) WriteJSON(v interface{}) error {
	enc := json.NewEncoder(rg.Out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}
	return nil
}

// ScenarioConsole renders one scenario result as a console report.
func (rg *ReportGenerator) ScenarioConsole(title string, result *domain.ScenarioResult) {
	fmt.Fprintln(rg.Out, strings.Repeat("=", 70))
	fmt.Fprintln(rg.Out, title)
	fmt.Fprintln(rg.Out, strings.Repeat("=", 70))
	if result.MetalLevel != "" {
		fmt.Fprintf(rg.Out, "Metal level:        %s\n", result.MetalLevel)
	}
	fmt.Fprintf(rg.Out, "Run ID:             %s\n", result.RunID)
	fmt.Fprintf(rg.Out, "Employees covered:  %d\n", result.EmployeesCovered)
	fmt.Fprintf(rg.Out, "Lives covered:      %d\n", result.LivesCovered)
	fmt.Fprintf(rg.Out, "Total monthly:      %s\n", FormatCurrency(result.TotalMonthly))
	fmt.Fprintf(rg.Out, "Total annual:       %s\n", FormatCurrency(result.TotalAnnual))
	if result.AverageAV != nil {
		fmt.Fprintf(rg.Out, "Average AV:         %s%%\n", result.AverageAV.StringFixed(1))
	}
	fmt.Fprintln(rg.Out)

	fmt.Fprintln(rg.Out, "BY STATE")
	fmt.Fprintln(rg.Out, strings.Repeat("-", 70))
	for _, state := range sortedStates(result.ByState) {
		s := result.ByState[state]
		fmt.Fprintf(rg.Out, "  %s  %3d employees  %3d lives  %12s/mo  %s\n",
			state, s.Employees, s.Lives, FormatCurrency(s.Monthly), s.PlanName)
	}

	if len(result.Errors) > 0 {
		fmt.Fprintln(rg.Out)
		fmt.Fprintf(rg.Out, "WARNINGS (%d)\n", len(result.Errors))
		fmt.Fprintln(rg.Out, strings.Repeat("-", 70))
		for _, e := range result.Errors {
			fmt.Fprintf(rg.Out, "  - %s\n", e)
		}
	}
	fmt.Fprintln(rg.Out)
}

// BaselineConsole renders the current-plan and renewal baselines side by
// side. The renewal block is suppressed when the census carried no renewal
// column.
func (rg *ReportGenerator) BaselineConsole(current *domain.BaselineTotals, renewal *domain.RenewalTotals) {
	fmt.Fprintln(rg.Out, "CURRENT PLAN BASELINE")
	fmt.Fprintln(rg.Out, strings.Repeat("-", 70))
	fmt.Fprintf(rg.Out, "  Employee monthly:   %s\n", FormatCurrency(current.EEMonthly))
	fmt.Fprintf(rg.Out, "  Employer monthly:   %s\n", FormatCurrency(current.ERMonthly))
	if current.GapMonthly.IsPositive() {
		fmt.Fprintf(rg.Out, "  Gap insurance:      %s\n", FormatCurrency(current.GapMonthly))
	}
	fmt.Fprintf(rg.Out, "  Total monthly:      %s\n", FormatCurrency(current.PremiumMonthly))
	fmt.Fprintf(rg.Out, "  Total annual:       %s\n", FormatCurrency(current.PremiumAnnual))
	fmt.Fprintf(rg.Out, "  Employees w/ data:  %d\n", current.EmployeesWithData)
	fmt.Fprintln(rg.Out)

	if renewal != nil && renewal.HasData {
		fmt.Fprintln(rg.Out, "PROJECTED RENEWAL")
		fmt.Fprintln(rg.Out, strings.Repeat("-", 70))
		fmt.Fprintf(rg.Out, "  Total monthly:      %s\n", FormatCurrency(renewal.Monthly))
		fmt.Fprintf(rg.Out, "  Total annual:       %s\n", FormatCurrency(renewal.Annual))
		fmt.Fprintf(rg.Out, "  Employees w/ data:  %d\n", renewal.EmployeesWithData)
		fmt.Fprintln(rg.Out)
	}
}

// FitScoreConsole renders the fit score with its category breakdown.
func (rg *ReportGenerator) FitScoreConsole(result *fitscore.Result, weights fitscore.Weights) {
	fmt.Fprintln(rg.Out, strings.Repeat("=", 70))
	fmt.Fprintf(rg.Out, "ICHRA FIT SCORE: %d/100\n", result.Overall)
	fmt.Fprintln(rg.Out, strings.Repeat("=", 70))
	for _, cat := range fitscore.Categories {
		sub := result.Categories[cat]
		label := categoryLabel(cat)
		line := fmt.Sprintf("  %-24s %3d/100  (weight %d%%)", label, sub.Score, weights[cat])
		if sub.Degraded {
			line += fmt.Sprintf("  [default: %s]", sub.Reason)
		}
		fmt.Fprintln(rg.Out, line)
	}
	fmt.Fprintln(rg.Out)
}

// AffordabilityConsole renders the workforce affordability summary.
func (rg *ReportGenerator) AffordabilityConsole(result *affordability.WorkforceResult) {
	s := result.Summary
	fmt.Fprintln(rg.Out, strings.Repeat("=", 70))
	fmt.Fprintln(rg.Out, "IRS AFFORDABILITY ANALYSIS (2026 safe harbor, 9.96%)")
	fmt.Fprintln(rg.Out, strings.Repeat("=", 70))
	fmt.Fprintf(rg.Out, "  Total employees:          %d\n", s.TotalEmployees)
	fmt.Fprintf(rg.Out, "  Analyzed (income data):   %d\n", s.EmployeesAnalyzed)
	fmt.Fprintf(rg.Out, "  Affordable at current:    %d\n", s.AffordableAtCurrent)
	fmt.Fprintf(rg.Out, "  Need contribution raise:  %d\n", s.NeedsIncrease)
	fmt.Fprintf(rg.Out, "  Annual gap to close:      %s\n", FormatCurrency(s.TotalGapAnnual))
	fmt.Fprintf(rg.Out, "  Current ER spend/yr:      %s\n", FormatCurrency(s.CurrentERSpendAnnual))
	fmt.Fprintf(rg.Out, "  Minimum required/yr:      %s\n", FormatCurrency(s.MinRequiredSpendAnnual))
	if len(result.Errors) > 0 {
		fmt.Fprintln(rg.Out)
		for _, e := range result.Errors {
			fmt.Fprintf(rg.Out, "  - %s\n", e)
		}
	}
	fmt.Fprintln(rg.Out)
}

// tierOrder fixes the display order of family statuses in group-pricing
// reports.
var tierOrder = []domain.FamilyStatus{
	domain.FamilyStatusEmployee,
	domain.FamilyStatusEmployeeSpouse,
	domain.FamilyStatusEmployeeChild,
	domain.FamilyStatusFamily,
}

// GroupPricingConsole renders one group-priced product's rollup, one block
// per variant (cooperative deductible or Sedera IUA level).
func (rg *ReportGenerator) GroupPricingConsole(title, variantLabel string, variants []string, totals map[string]*domain.GroupPricingTotals, errs []string) {
	fmt.Fprintln(rg.Out, strings.Repeat("=", 70))
	fmt.Fprintln(rg.Out, title)
	fmt.Fprintln(rg.Out, strings.Repeat("=", 70))
	for _, v := range variants {
		g := totals[v]
		if g == nil {
			continue
		}
		fmt.Fprintf(rg.Out, "%s %s\n", variantLabel, v)
		fmt.Fprintln(rg.Out, strings.Repeat("-", 70))
		fmt.Fprintf(rg.Out, "  Group monthly total:  %s\n", FormatCurrency(g.Total))
		for _, fs := range tierOrder {
			tier := g.ByTier[fs]
			if tier == nil || tier.Count == 0 {
				continue
			}
			line := fmt.Sprintf("  %-3s %3d families  %12s/mo", fs, tier.Count, FormatCurrency(tier.Total))
			if r, ok := g.RateRanges[fs]; ok {
				line += fmt.Sprintf("  (rate %s to %s)", FormatCurrency(r.Min), FormatCurrency(r.Max))
			}
			fmt.Fprintln(rg.Out, line)
		}
		fmt.Fprintln(rg.Out)
	}
	if len(errs) > 0 {
		fmt.Fprintf(rg.Out, "WARNINGS (%d)\n", len(errs))
		fmt.Fprintln(rg.Out, strings.Repeat("-", 70))
		for _, e := range errs {
			fmt.Fprintf(rg.Out, "  - %s\n", e)
		}
		fmt.Fprintln(rg.Out)
	}
}

func categoryLabel(cat fitscore.Category) string {
	words := strings.Split(string(cat), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func sortedStates(m map[string]*domain.StateSummary) []string {
	states := make([]string, 0, len(m))
	for s := range m {
		states = append(states, s)
	}
	sort.Strings(states)
	return states
}
