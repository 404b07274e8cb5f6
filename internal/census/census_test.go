package census

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glovehealth/ichra-engine/internal/domain"
)

func TestLoadResolvesAliases(t *testing.T) {
	csvData := strings.Join([]string{
		"Employee Number,First Name,Last Name,Home State,Home Zip,Family Status,EE DOB,Spouse DOB,Dep 2 DOB,Monthly Income,Current EE Monthly,Current ER Monthly,2026 Premium",
		`E001,Ann,Ruiz,il,60601,F,06/15/90,04/20/92,2015-08-01,"$5,000.00",$150.00,$450.00,$720.00`,
		"E002,Bo,Chan,TX,75001,EE,1985-02-10,,,,,,",
	}, "\n")

	c, err := Load(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, c.Employees, 2)
	assert.Empty(t, c.Warnings)

	ann := c.Employees[0]
	assert.Equal(t, "E001", ann.EmployeeID)
	assert.Equal(t, "IL", ann.State)
	assert.Equal(t, domain.FamilyStatusFamily, ann.FamilySt)
	assert.Equal(t, "06/15/90", ann.EmployeeDOB)
	assert.Equal(t, "2015-08-01", ann.ChildDOBs[0])
	require.NotNil(t, ann.MonthlyIncome)
	assert.True(t, ann.MonthlyIncome.Equal(decimalFromString(t, "5000")))
	assert.True(t, ann.CurrentERMonthly.Equal(decimalFromString(t, "450")))
	assert.True(t, ann.RenewalPremium.Equal(decimalFromString(t, "720")))

	bo := c.Employees[1]
	assert.Equal(t, "TX", bo.State)
	assert.Equal(t, domain.FamilyStatusEmployee, bo.FamilyStatus())
	assert.Nil(t, bo.MonthlyIncome)
}

func TestLoadSnakeCaseAliases(t *testing.T) {
	csvData := strings.Join([]string{
		"employee_id,state,rating_area_id,family_status,age,current_er_monthly",
		"E010,CA,Rating Area 4,ES,41,600",
	}, "\n")

	c, err := Load(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, c.Employees, 1)

	rec := c.Employees[0]
	assert.Equal(t, "CA", rec.State)
	assert.Equal(t, 4, rec.RatingArea)
	assert.Equal(t, domain.FamilyStatusEmployeeSpouse, rec.FamilySt)
	require.NotNil(t, rec.Age)
	assert.Equal(t, 41, *rec.Age)
}

func TestLoadRejectsMissingStateColumn(t *testing.T) {
	csvData := "Employee Number,Family Status\nE001,EE"
	_, err := Load(strings.NewReader(csvData))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no state column found")
}

func TestLoadWarningsForBadValues(t *testing.T) {
	csvData := strings.Join([]string{
		"state,family_status,rating_area_id,age",
		"IL,XYZ,area seven,old",
	}, "\n")

	c, err := Load(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, c.Employees, 1)
	assert.Len(t, c.Warnings, 3)
	// Unknown family status falls back to employee-only.
	assert.Equal(t, domain.FamilyStatusEmployee, c.Employees[0].FamilySt)
}

func TestStatesOrderedByCount(t *testing.T) {
	c := &Census{Employees: []domain.EmployeeRecord{
		{State: "TX"}, {State: "IL"}, {State: "IL"}, {State: "IL"}, {State: "CA"}, {State: "CA"},
	}}
	assert.Equal(t, []string{"IL", "CA", "TX"}, c.States())
}

func TestTotalLivesCountsAllDependents(t *testing.T) {
	c := &Census{Employees: []domain.EmployeeRecord{
		{State: "IL", FamilySt: domain.FamilyStatusFamily,
			ChildDOBs: []string{"2010-01-01", "2012-01-01", "2014-01-01", "2016-01-01", ""}},
		{State: "IL", FamilySt: domain.FamilyStatusEmployee},
	}}
	// 1 employee + spouse + 4 children, plus 1 employee-only.
	assert.Equal(t, 7, c.TotalLives())
}

func TestWriteTemplate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf))
	header := strings.TrimSpace(buf.String())
	assert.Equal(t, strings.Join(TemplateColumns, ","), header)
}

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(s)
}
