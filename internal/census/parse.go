package census

import (
	"strings"
	"time"

	"github.com/glovehealth/ichra-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// dobLayouts are tried in order; parsing stops at the first success.
var dobLayouts = []string{"01/02/06", "01/02/2006", "2006-01-02"}

// ParseDOBAge parses a date-of-birth string and returns the age at the
// fixed rating reference date. Two-digit years that resolve beyond the
// reference year are rebased 100 years earlier, so "4/12/05" against a 2026
// reference means 2005 while "4/12/45" means 1945. Returns ok=false when no
// layout matches.
func ParseDOBAge(dob string, ref time.Time) (int, bool) {
	s := strings.TrimSpace(dob)
	if s == "" {
		return 0, false
	}

	for _, layout := range dobLayouts {
		parsed, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if parsed.Year() > ref.Year() {
			parsed = parsed.AddDate(-100, 0, 0)
		}
		days := int(ref.Sub(parsed).Hours() / 24)
		age := days / 365
		if age < 0 {
			age = 0
		}
		return age, true
	}
	return 0, false
}

// ParseCurrency converts a census currency cell to a decimal amount. Dollar
// signs, thousands separators and surrounding quotes are stripped before
// parsing. Missing or unparseable values yield zero; this never fails, so
// dirty census exports degrade totals instead of aborting them.
func ParseCurrency(val string) decimal.Decimal {
	s := strings.TrimSpace(val)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// ParseRatingArea accepts either a bare integer or the rate-table label form
// ("Rating Area 7"). Returns ok=false when neither parses.
func ParseRatingArea(val string) (int, bool) {
	s := strings.TrimSpace(val)
	if s == "" {
		return 0, false
	}
	s = strings.TrimPrefix(s, "Rating Area ")
	n, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return int(n.IntPart()), true
}

// EmployeeAge resolves a record's age, preferring the explicit age column
// and falling back to DOB parsing. Returns ok=false when neither resolves;
// callers omit the member and record the gap upstream.
func EmployeeAge(rec *domain.EmployeeRecord) (int, bool) {
	if rec.Age != nil {
		return *rec.Age, true
	}
	return ParseDOBAge(rec.EmployeeDOB, domain.RatingReferenceDate)
}
