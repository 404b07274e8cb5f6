package calculation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/glovehealth/ichra-engine/internal/census"
	"github.com/glovehealth/ichra-engine/internal/domain"
	"github.com/glovehealth/ichra-engine/internal/rating"
)

// Group-priced products (the HAS cooperative and Sedera) charge one family
// rate keyed by the eldest covered member's coarse age band and the family
// status. No 3-child cap applies: every dependent's age competes for eldest.

type coopKey struct {
	ageBand string
	status  domain.FamilyStatus
}

// CooperativeTotals prices the census against the HAS cooperative table,
// once per deductible level. The table is fetched in a single call; rows
// missing for an employee's band produce an error string rather than
// failing the rollup.
func (e *Engine) CooperativeTotals(ctx context.Context, c *census.Census) (map[string]*domain.GroupPricingTotals, []string, error) {
	rows, err := e.Store.CooperativeRates(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch cooperative rates: %w", err)
	}

	idx := make(map[coopKey]domain.CooperativeRateRow, len(rows))
	for _, row := range rows {
		idx[coopKey{ageBand: row.AgeBand, status: row.FamilyStatus}] = row
	}

	coopRate := func(row domain.CooperativeRateRow, deductible string) decimal.Decimal {
		if deductible == "1k" {
			return row.Deductible1K
		}
		return row.Deductible2_5K
	}

	totals := make(map[string]*domain.GroupPricingTotals, len(domain.CooperativeDeductibles))
	for _, d := range domain.CooperativeDeductibles {
		g := domain.NewGroupPricingTotals()
		g.Total = decimal.Zero
		for fs := range g.ByTier {
			g.ByTier[fs].Total = decimal.Zero
			youngest, okY := idx[coopKey{ageBand: "18-29", status: fs}]
			oldest, okO := idx[coopKey{ageBand: "60-64", status: fs}]
			if okY && okO {
				g.RateRanges[fs] = domain.RateRange{Min: coopRate(youngest, d), Max: coopRate(oldest, d)}
			}
		}
		totals[d] = g
	}

	var errs []string
	for i := range c.Employees {
		rec := &c.Employees[i]
		eldest, ok := rating.EldestMemberAge(rec)
		if !ok {
			errs = append(errs, fmt.Sprintf("No age data for employee %s, skipping cooperative pricing", rec.EmployeeID))
			continue
		}

		fs := rec.FamilyStatus()
		row, found := idx[coopKey{ageBand: domain.CooperativeAgeBand(eldest), status: fs}]
		if !found {
			errs = append(errs, fmt.Sprintf("No cooperative rate for band %s, tier %s", domain.CooperativeAgeBand(eldest), fs))
			continue
		}

		for _, d := range domain.CooperativeDeductibles {
			rate := coopRate(row, d)
			g := totals[d]
			g.Total = g.Total.Add(rate)
			tier := g.ByTier[fs]
			tier.Total = tier.Total.Add(rate)
			tier.Count++
		}
	}

	return totals, errs, nil
}

type sederaKey struct {
	iua     string
	ageBand string
	status  domain.FamilyStatus
}

// SederaTotals prices the census against the Sedera health-share table, once
// per IUA level.
func (e *Engine) SederaTotals(ctx context.Context, c *census.Census) (map[string]*domain.GroupPricingTotals, []string, error) {
	rows, err := e.Store.SederaRates(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch Sedera rates: %w", err)
	}

	idx := make(map[sederaKey]decimal.Decimal, len(rows))
	for _, row := range rows {
		idx[sederaKey{iua: row.IUA, ageBand: row.AgeBand, status: row.FamilyStatus}] = row.MonthlyRate
	}

	totals := make(map[string]*domain.GroupPricingTotals, len(domain.SederaIUALevels))
	for _, iua := range domain.SederaIUALevels {
		g := domain.NewGroupPricingTotals()
		g.Total = decimal.Zero
		for fs := range g.ByTier {
			g.ByTier[fs].Total = decimal.Zero
			min, okY := idx[sederaKey{iua: iua, ageBand: "18-29", status: fs}]
			max, okO := idx[sederaKey{iua: iua, ageBand: "60+", status: fs}]
			if okY && okO {
				g.RateRanges[fs] = domain.RateRange{Min: min, Max: max}
			}
		}
		totals[iua] = g
	}

	var errs []string
	for i := range c.Employees {
		rec := &c.Employees[i]
		eldest, ok := rating.EldestMemberAge(rec)
		if !ok {
			errs = append(errs, fmt.Sprintf("No age data for employee %s, skipping Sedera pricing", rec.EmployeeID))
			continue
		}

		fs := rec.FamilyStatus()
		band := domain.SederaAgeBand(eldest)
		for _, iua := range domain.SederaIUALevels {
			rate, found := idx[sederaKey{iua: iua, ageBand: band, status: fs}]
			if !found {
				errs = append(errs, fmt.Sprintf("No Sedera rate for IUA %s, band %s, tier %s", iua, band, fs))
				continue
			}
			g := totals[iua]
			g.Total = g.Total.Add(rate)
			tier := g.ByTier[fs]
			tier.Total = tier.Total.Add(rate)
			tier.Count++
		}
	}

	return totals, errs, nil
}
