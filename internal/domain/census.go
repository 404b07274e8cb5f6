package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FamilyStatus identifies the coverage composition of an employee's household.
type FamilyStatus string

const (
	FamilyStatusEmployee       FamilyStatus = "EE" // employee only
	FamilyStatusEmployeeSpouse FamilyStatus = "ES" // employee + spouse
	FamilyStatusEmployeeChild  FamilyStatus = "EC" // employee + children
	FamilyStatusFamily         FamilyStatus = "F"  // employee + spouse + children
)

// FamilyStatusLabels maps status codes to display names.
var FamilyStatusLabels = map[FamilyStatus]string{
	FamilyStatusEmployee:       "Employee Only",
	FamilyStatusEmployeeChild:  "Employee + Children",
	FamilyStatusEmployeeSpouse: "Employee + Spouse",
	FamilyStatusFamily:         "Family (Employee + Spouse + Children)",
}

// IsValid reports whether the status is one of the four recognized codes.
func (fs FamilyStatus) IsValid() bool {
	switch fs {
	case FamilyStatusEmployee, FamilyStatusEmployeeSpouse, FamilyStatusEmployeeChild, FamilyStatusFamily:
		return true
	}
	return false
}

// IncludesSpouse reports whether a spouse is covered under this status.
func (fs FamilyStatus) IncludesSpouse() bool {
	return fs == FamilyStatusEmployeeSpouse || fs == FamilyStatusFamily
}

// IncludesChildren reports whether children are covered under this status.
func (fs FamilyStatus) IncludesChildren() bool {
	return fs == FamilyStatusEmployeeChild || fs == FamilyStatusFamily
}

// MaxDependentSlots is the number of child DOB columns a census row may carry
// (Dep 2 DOB through Dep 6 DOB).
const MaxDependentSlots = 5

// RatingReferenceDate is the fixed date ages are computed against. Rates are
// effective for the 2026 plan year, so every DOB resolves to an age as of
// January 1, 2026.
var RatingReferenceDate = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

// EmployeeRecord is one normalized census row. Census ingestion resolves the
// raw column aliases once, so downstream code never re-checks naming variants.
type EmployeeRecord struct {
	EmployeeID  string       `yaml:"employee_id" json:"employee_id"`
	FirstName   string       `yaml:"first_name,omitempty" json:"first_name,omitempty"`
	LastName    string       `yaml:"last_name,omitempty" json:"last_name,omitempty"`
	State       string       `yaml:"state" json:"state"`
	ZipCode     string       `yaml:"zip_code,omitempty" json:"zip_code,omitempty"`
	RatingArea  int          `yaml:"rating_area_id" json:"rating_area_id"`
	FamilySt    FamilyStatus `yaml:"family_status" json:"family_status"`
	Age         *int         `yaml:"age,omitempty" json:"age,omitempty"`
	EmployeeDOB string       `yaml:"ee_dob,omitempty" json:"ee_dob,omitempty"`
	SpouseDOB   string       `yaml:"spouse_dob,omitempty" json:"spouse_dob,omitempty"`
	// ChildDOBs holds the Dep 2..Dep 6 DOB strings in slot order. Empty
	// strings mark unused slots.
	ChildDOBs []string `yaml:"child_dobs,omitempty" json:"child_dobs,omitempty"`

	MonthlyIncome       *decimal.Decimal `yaml:"monthly_income,omitempty" json:"monthly_income,omitempty"`
	CurrentEEMonthly    decimal.Decimal  `yaml:"current_ee_monthly" json:"current_ee_monthly"`
	CurrentERMonthly    decimal.Decimal  `yaml:"current_er_monthly" json:"current_er_monthly"`
	GapInsuranceMonthly decimal.Decimal  `yaml:"gap_insurance_monthly" json:"gap_insurance_monthly"`
	RenewalPremium      decimal.Decimal  `yaml:"renewal_premium" json:"renewal_premium"`
}

// FamilyStatus returns the record's status, defaulting to employee-only when
// the census left it blank or unrecognized.
func (e *EmployeeRecord) FamilyStatus() FamilyStatus {
	if e.FamilySt.IsValid() {
		return e.FamilySt
	}
	return FamilyStatusEmployee
}

// CoveredLives counts every person the census row covers: the employee, the
// spouse when the status includes one, and all children with DOB data. This
// is deliberately broader than the rated-member list, which caps children
// under the ACA 3-child rule.
func (e *EmployeeRecord) CoveredLives() int {
	lives := 1
	fs := e.FamilyStatus()
	if fs.IncludesSpouse() {
		lives++
	}
	if fs.IncludesChildren() {
		for _, dob := range e.ChildDOBs {
			if dob != "" {
				lives++
			}
		}
	}
	return lives
}

// MemberRole identifies which household member a rated member represents.
type MemberRole string

const (
	RoleEmployee MemberRole = "EE"
	RoleSpouse   MemberRole = "SP"
)

// ChildRole returns the role label for the child occupying dependent slot
// n (2-6), matching the census column numbering.
func ChildRole(slot int) MemberRole {
	return MemberRole(fmt.Sprintf("D%d", slot))
}

// RatedMember is one (role, age) pair that contributes to an age-banded
// premium.
type RatedMember struct {
	Role MemberRole `json:"role"`
	Age  int        `json:"age"`
}
