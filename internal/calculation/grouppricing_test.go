package calculation

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

var coopBands = []string{"18-29", "30-39", "40-49", "50-59", "60-64"}

var allStatuses = []domain.FamilyStatus{
	domain.FamilyStatusEmployee, domain.FamilyStatusEmployeeSpouse,
	domain.FamilyStatusEmployeeChild, domain.FamilyStatusFamily,
}

// coopTable builds a full cooperative grid where the 1k rate is
// 200 + 100*bandIndex + 50*statusIndex and the 2.5k rate is $40 less.
func coopTable() []domain.CooperativeRateRow {
	var rows []domain.CooperativeRateRow
	for bi, band := range coopBands {
		for si, fs := range allStatuses {
			rate := decimal.NewFromInt(int64(200 + bi*100 + si*50))
			rows = append(rows, domain.CooperativeRateRow{
				AgeBand:        band,
				FamilyStatus:   fs,
				Deductible1K:   rate,
				Deductible2_5K: rate.Sub(decimal.NewFromInt(40)),
			})
		}
	}
	return rows
}

// sederaTable builds a full Sedera grid where the monthly rate is
// 150 + 100*bandIndex + 50*statusIndex + iuaIndex.
func sederaTable() []domain.SederaRateRow {
	bands := []string{"18-29", "30-39", "40-49", "50-59", "60+"}
	var rows []domain.SederaRateRow
	for ii, iua := range domain.SederaIUALevels {
		for bi, band := range bands {
			for si, fs := range allStatuses {
				rows = append(rows, domain.SederaRateRow{
					Plan:         "Select+",
					IUA:          iua,
					AgeBand:      band,
					FamilyStatus: fs,
					MonthlyRate:  decimal.NewFromInt(int64(150 + bi*100 + si*50 + ii)),
				})
			}
		}
	}
	return rows
}

func groupPricingCensus() *census.Census {
	spouse58 := domain.RatingReferenceDate.AddDate(-58, -6, 0).Format("2006-01-02")
	return &census.Census{Employees: []domain.EmployeeRecord{
		// EE aged 28 -> band 18-29.
		{EmployeeID: "E001", State: "IL", FamilySt: domain.FamilyStatusEmployee, Age: intPtr(28)},
		// ES where the spouse is the eldest member -> band 50-59.
		{EmployeeID: "E002", State: "IL", FamilySt: domain.FamilyStatusEmployeeSpouse, Age: intPtr(45), SpouseDOB: spouse58},
		// No resolvable age, skipped with an error.
		{EmployeeID: "E003", State: "IL", FamilySt: domain.FamilyStatusEmployee},
	}}
}

func TestCooperativeTotals(t *testing.T) {
	store := ratestore.NewMemoryStore(nil, nil)
	store.SetCooperativeRates(coopTable())
	engine := NewEngine(store)

	totals, errs, err := engine.CooperativeTotals(context.Background(), groupPricingCensus())
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "E003")

	oneK := totals["1k"]
	require.NotNil(t, oneK)
	// E001: band 18-29, EE -> 200. E002: band 50-59 (eldest is the spouse), ES -> 550.
	assert.True(t, oneK.Total.Equal(decimal.NewFromInt(750)), "1k total = %s", oneK.Total)
	assert.Equal(t, 1, oneK.ByTier[domain.FamilyStatusEmployee].Count)
	assert.True(t, oneK.ByTier[domain.FamilyStatusEmployeeSpouse].Total.Equal(decimal.NewFromInt(550)))

	twoFiveK := totals["2.5k"]
	require.NotNil(t, twoFiveK)
	// Same members at the 2.5k column, $40 less per rate.
	assert.True(t, twoFiveK.Total.Equal(decimal.NewFromInt(670)), "2.5k total = %s", twoFiveK.Total)

	// Rate range spans the youngest to oldest band for each status.
	r := oneK.RateRanges[domain.FamilyStatusFamily]
	assert.True(t, r.Min.Equal(decimal.NewFromInt(350)))
	assert.True(t, r.Max.Equal(decimal.NewFromInt(750)))
}

func TestSederaTotals(t *testing.T) {
	store := ratestore.NewMemoryStore(nil, nil)
	store.SetSederaRates(sederaTable())
	engine := NewEngine(store)

	totals, errs, err := engine.SederaTotals(context.Background(), groupPricingCensus())
	require.NoError(t, err)
	require.Len(t, errs, 1)

	for ii, iua := range domain.SederaIUALevels {
		g := totals[iua]
		require.NotNil(t, g, "missing totals for IUA %s", iua)
		// E001: 150 + ii. E002: 150+300+50+ii = 500+ii.
		want := decimal.NewFromInt(int64(650 + 2*ii))
		assert.True(t, g.Total.Equal(want), "IUA %s total = %s, want %s", iua, g.Total, want)
	}

	r := totals["500"].RateRanges[domain.FamilyStatusEmployee]
	assert.True(t, r.Min.Equal(decimal.NewFromInt(150)))
	assert.True(t, r.Max.Equal(decimal.NewFromInt(550)))
}

func TestSederaTopBandIsOpenEnded(t *testing.T) {
	store := ratestore.NewMemoryStore(nil, nil)
	store.SetSederaRates(sederaTable())
	engine := NewEngine(store)

	c := &census.Census{Employees: []domain.EmployeeRecord{
		{EmployeeID: "E070", State: "IL", FamilySt: domain.FamilyStatusEmployee, Age: intPtr(70)},
	}}

	totals, errs, err := engine.SederaTotals(context.Background(), c)
	require.NoError(t, err)
	assert.Empty(t, errs)
	// Age 70 lands in 60+ (550 + iua index 0 at IUA 500).
	assert.True(t, totals["500"].Total.Equal(decimal.NewFromInt(550)))
}
