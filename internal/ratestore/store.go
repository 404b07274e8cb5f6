// Package ratestore abstracts retrieval of marketplace plan and rate rows.
// The calculation engine only ever issues batched reads through the Store
// interface; connection management and schema details stay behind it.
package ratestore

import (
	"context"

	"github.com/glovehealth/ichra-engine/internal/domain"
)

// Store is the read-only gateway to the plan/rate reference data. Every
// method tolerates locations with no available plans by returning empty
// results, never an error; errors signal the store itself failing, which
// callers must treat as fatal since no meaningful result exists without
// rate data.
type Store interface {
	// FetchRates returns every individual-market rate row for the given
	// plans, across all rating areas and age bands, in one round trip.
	FetchRates(ctx context.Context, planIDs []string) ([]domain.RateRow, error)

	// PlanNames resolves marketing names for the given plan IDs.
	PlanNames(ctx context.Context, planIDs []string) (map[string]string, error)

	// AvailablePlans lists individual-market plans offered in a state at the
	// given metal levels.
	AvailablePlans(ctx context.Context, state string, metals []domain.MetalLevel) ([]domain.PlanInfo, error)

	// PlanCountForArea counts individual-market plans available in one
	// (state, rating-area label) location.
	PlanCountForArea(ctx context.Context, state, ratingAreaLabel string) (int, error)

	// LowestRates returns the cheapest rate at one metal level for each
	// requested location key, in one round trip. Keys with no match are
	// simply absent from the result.
	LowestRates(ctx context.Context, keys []domain.LocationKey, metal domain.MetalLevel) (map[domain.LocationKey]domain.LowestRate, error)

	// LowestRatesAllMetals is LowestRates across Bronze (including Expanded
	// Bronze), Silver and Gold simultaneously, still one round trip.
	LowestRatesAllMetals(ctx context.Context, keys []domain.LocationKey) (map[domain.LocationKey]map[domain.MetalLevel]domain.LowestRate, error)

	// LowestCostPlanID finds the cheapest plan of a metal level for a state,
	// probing the given rating areas in order and using the supplied age
	// band as the sample rate row. Returns "" when no plan exists.
	LowestCostPlanID(ctx context.Context, state string, ratingAreas []int, metal domain.MetalLevel, ageBand string) (string, error)

	// CooperativeRates returns the full HAS cooperative rate table.
	CooperativeRates(ctx context.Context) ([]domain.CooperativeRateRow, error)

	// SederaRates returns the full Sedera rate table.
	SederaRates(ctx context.Context) ([]domain.SederaRateRow, error)
}
