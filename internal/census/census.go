package census

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/glovehealth/ichra-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// Census is a normalized employee roster plus the non-fatal problems found
// while ingesting it.
type Census struct {
	Employees []domain.EmployeeRecord
	Warnings  []string
}

// States returns the distinct states present, ordered by descending employee
// count (ties broken alphabetically for stable output).
func (c *Census) States() []string {
	counts := make(map[string]int)
	for i := range c.Employees {
		if s := c.Employees[i].State; s != "" {
			counts[s]++
		}
	}
	states := make([]string, 0, len(counts))
	for s := range counts {
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool {
		if counts[states[i]] != counts[states[j]] {
			return counts[states[i]] > counts[states[j]]
		}
		return states[i] < states[j]
	})
	return states
}

// ByState groups employee indexes per state.
func (c *Census) ByState() map[string][]*domain.EmployeeRecord {
	out := make(map[string][]*domain.EmployeeRecord)
	for i := range c.Employees {
		rec := &c.Employees[i]
		if rec.State == "" {
			continue
		}
		out[rec.State] = append(out[rec.State], rec)
	}
	return out
}

// TotalLives counts all covered lives across the roster (employees, spouses
// and every child with DOB data, uncapped).
func (c *Census) TotalLives() int {
	total := 0
	for i := range c.Employees {
		total += c.Employees[i].CoveredLives()
	}
	return total
}

// Column aliases per concept, checked in order; the first header present
// wins. Resolution happens once here so downstream code only ever sees the
// canonical record type.
var (
	aliasEmployeeID   = []string{"Employee Number", "employee_id", "emp_id"}
	aliasFirstName    = []string{"First Name", "first_name"}
	aliasLastName     = []string{"Last Name", "last_name"}
	aliasState        = []string{"Home State", "home_state", "state", "State", "state_code"}
	aliasZip          = []string{"Home Zip", "zip", "zip_code"}
	aliasRatingArea   = []string{"rating_area_id", "rating_area", "Rating Area"}
	aliasFamilyStatus = []string{"Family Status", "family_status"}
	aliasAge          = []string{"age", "ee_age", "Age", "EE Age"}
	aliasEmployeeDOB  = []string{"EE DOB", "ee_dob", "dob"}
	aliasSpouseDOB    = []string{"Spouse DOB", "spouse_dob"}
	aliasIncome       = []string{"Monthly Income", "monthly_income", "income"}
	aliasCurrentEE    = []string{"Current EE Monthly", "current_ee_monthly"}
	aliasCurrentER    = []string{"Current ER Monthly", "current_er_monthly"}
	aliasGap          = []string{"Gap Insurance", "gap_insurance_monthly"}
	aliasRenewal      = []string{"2026 Premium", "projected_2026_premium", "renewal_premium"}
)

func dependentAliases(slot int) []string {
	return []string{fmt.Sprintf("Dep %d DOB", slot), fmt.Sprintf("dep_%d_dob", slot)}
}

// TemplateColumns is the canonical census header, in upload-template order.
var TemplateColumns = []string{
	"Employee Number", "Last Name", "First Name", "Home Zip", "Home State",
	"Family Status", "EE DOB", "Spouse DOB", "Dep 2 DOB", "Dep 3 DOB",
	"Dep 4 DOB", "Dep 5 DOB", "Dep 6 DOB", "Monthly Income",
	"Current EE Monthly", "Current ER Monthly", "2026 Premium",
}

// header maps column name to index for one parsed CSV.
type header map[string]int

func (h header) lookup(aliases []string) (int, bool) {
	for _, a := range aliases {
		if idx, ok := h[a]; ok {
			return idx, true
		}
	}
	return -1, false
}

// LoadFile reads and normalizes a census CSV from disk.
func LoadFile(path string) (*Census, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open census file %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads a census CSV and resolves every column alias into canonical
// employee records. A census without any recognizable state column is
// rejected outright: nothing downstream can price an employee without a
// state.
func Load(r io.Reader) (*Census, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read census CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("census file is empty")
	}

	h := make(header, len(rows[0]))
	for i, name := range rows[0] {
		h[strings.TrimSpace(name)] = i
	}

	if _, ok := h.lookup(aliasState); !ok {
		return nil, fmt.Errorf("no state column found in census (expected one of %s)", strings.Join(aliasState, ", "))
	}

	c := &Census{Employees: make([]domain.EmployeeRecord, 0, len(rows)-1)}
	for n, row := range rows[1:] {
		rec, warnings := normalizeRow(h, row, n+2)
		c.Employees = append(c.Employees, rec)
		c.Warnings = append(c.Warnings, warnings...)
	}
	return c, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func field(h header, row []string, aliases []string) string {
	idx, ok := h.lookup(aliases)
	if !ok {
		return ""
	}
	return cell(row, idx)
}

// normalizeRow converts one raw CSV row into an EmployeeRecord. Missing
// optional data never fails the row; problems worth surfacing come back as
// warnings keyed by the CSV line number.
func normalizeRow(h header, row []string, line int) (domain.EmployeeRecord, []string) {
	var warnings []string

	rec := domain.EmployeeRecord{
		EmployeeID:  field(h, row, aliasEmployeeID),
		FirstName:   field(h, row, aliasFirstName),
		LastName:    field(h, row, aliasLastName),
		State:       strings.ToUpper(field(h, row, aliasState)),
		ZipCode:     field(h, row, aliasZip),
		EmployeeDOB: field(h, row, aliasEmployeeDOB),
		SpouseDOB:   field(h, row, aliasSpouseDOB),
	}

	if raw := field(h, row, aliasRatingArea); raw != "" {
		if area, ok := ParseRatingArea(raw); ok {
			rec.RatingArea = area
		} else {
			warnings = append(warnings, fmt.Sprintf("line %d: unparseable rating area %q", line, raw))
		}
	}

	status := domain.FamilyStatus(strings.ToUpper(field(h, row, aliasFamilyStatus)))
	if status != "" && !status.IsValid() {
		warnings = append(warnings, fmt.Sprintf("line %d: unknown family status %q, treating as EE", line, status))
		status = domain.FamilyStatusEmployee
	}
	rec.FamilySt = status

	if raw := field(h, row, aliasAge); raw != "" {
		if n, err := decimal.NewFromString(raw); err == nil {
			age := int(n.IntPart())
			rec.Age = &age
		} else {
			warnings = append(warnings, fmt.Sprintf("line %d: unparseable age %q", line, raw))
		}
	}

	rec.ChildDOBs = make([]string, domain.MaxDependentSlots)
	for slot := 2; slot <= domain.MaxDependentSlots+1; slot++ {
		rec.ChildDOBs[slot-2] = field(h, row, dependentAliases(slot))
	}

	if raw := field(h, row, aliasIncome); raw != "" {
		income := ParseCurrency(raw)
		if income.IsPositive() {
			rec.MonthlyIncome = &income
		}
	}
	rec.CurrentEEMonthly = ParseCurrency(field(h, row, aliasCurrentEE))
	rec.CurrentERMonthly = ParseCurrency(field(h, row, aliasCurrentER))
	rec.GapInsuranceMonthly = ParseCurrency(field(h, row, aliasGap))
	rec.RenewalPremium = ParseCurrency(field(h, row, aliasRenewal))

	return rec, warnings
}

// WriteTemplate emits an empty census upload template with the canonical
// header row.
func WriteTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TemplateColumns); err != nil {
		return fmt.Errorf("failed to write census template: %w", err)
	}
	cw.Flush()
	return cw.Error()
}
