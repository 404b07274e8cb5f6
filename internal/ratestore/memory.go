package ratestore

import (
	"context"
	"strings"
	"sync"

	"github.com/glovehealth/ichra-engine/internal/domain"
)

// MemoryStore is an in-memory Store backed by caller-supplied tables. It
// serves tests and offline runs from an exported rate snapshot, and it
// counts calls so batching invariants can be asserted.
type MemoryStore struct {
	mu        sync.Mutex
	rates     []domain.RateRow
	plans     []domain.PlanInfo
	coopRates []domain.CooperativeRateRow
	sedera    []domain.SederaRateRow

	// FetchRatesCalls and LowestRatesCalls count round trips; the scenario
	// calculators promise exactly one per run regardless of census size.
	FetchRatesCalls  int
	LowestRatesCalls int
}

// NewMemoryStore builds a store over the given plan and rate tables.
func NewMemoryStore(plans []domain.PlanInfo, rates []domain.RateRow) *MemoryStore {
	return &MemoryStore{plans: plans, rates: rates}
}

// SetCooperativeRates installs the HAS cooperative table.
func (m *MemoryStore) SetCooperativeRates(rows []domain.CooperativeRateRow) { m.coopRates = rows }

// SetSederaRates installs the Sedera table.
func (m *MemoryStore) SetSederaRates(rows []domain.SederaRateRow) { m.sedera = rows }

func (m *MemoryStore) FetchRates(_ context.Context, planIDs []string) ([]domain.RateRow, error) {
	m.mu.Lock()
	m.FetchRatesCalls++
	m.mu.Unlock()

	want := make(map[string]bool, len(planIDs))
	for _, id := range planIDs {
		want[id] = true
	}
	var out []domain.RateRow
	for _, row := range m.rates {
		if want[row.PlanID] {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *MemoryStore) PlanNames(_ context.Context, planIDs []string) (map[string]string, error) {
	want := make(map[string]bool, len(planIDs))
	for _, id := range planIDs {
		want[id] = true
	}
	names := make(map[string]string)
	for _, p := range m.plans {
		if want[p.PlanID] {
			names[p.PlanID] = p.Name
		}
	}
	return names, nil
}

func (m *MemoryStore) AvailablePlans(_ context.Context, state string, metals []domain.MetalLevel) ([]domain.PlanInfo, error) {
	want := make(map[domain.MetalLevel]bool, len(metals))
	for _, metal := range metals {
		for _, lvl := range metal.QueryLevels() {
			want[lvl] = true
		}
	}
	var out []domain.PlanInfo
	for _, p := range m.plans {
		if domain.PlanStateCode(p.PlanID) == strings.ToUpper(state) && (len(want) == 0 || want[p.Metal]) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MemoryStore) PlanCountForArea(_ context.Context, state, ratingAreaLabel string) (int, error) {
	counted := make(map[string]bool)
	for _, row := range m.rates {
		if row.RatingAreaLabel != ratingAreaLabel || domain.PlanStateCode(row.PlanID) != strings.ToUpper(state) {
			continue
		}
		counted[row.PlanID] = true
	}
	return len(counted), nil
}

func (m *MemoryStore) LowestRates(_ context.Context, keys []domain.LocationKey, metal domain.MetalLevel) (map[domain.LocationKey]domain.LowestRate, error) {
	m.mu.Lock()
	m.LowestRatesCalls++
	m.mu.Unlock()

	byMetal, err := m.lowestByKey(keys)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.LocationKey]domain.LowestRate)
	for key, rates := range byMetal {
		if lr, ok := rates[metal.Canonical()]; ok {
			out[key] = lr
		}
	}
	return out, nil
}

func (m *MemoryStore) LowestRatesAllMetals(_ context.Context, keys []domain.LocationKey) (map[domain.LocationKey]map[domain.MetalLevel]domain.LowestRate, error) {
	m.mu.Lock()
	m.LowestRatesCalls++
	m.mu.Unlock()
	return m.lowestByKey(keys)
}

func (m *MemoryStore) lowestByKey(keys []domain.LocationKey) (map[domain.LocationKey]map[domain.MetalLevel]domain.LowestRate, error) {
	want := make(map[domain.LocationKey]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}

	metals := make(map[string]domain.PlanInfo, len(m.plans))
	for _, p := range m.plans {
		metals[p.PlanID] = p
	}

	out := make(map[domain.LocationKey]map[domain.MetalLevel]domain.LowestRate)
	for _, row := range m.rates {
		key := domain.LocationKey{
			State:           domain.PlanStateCode(row.PlanID),
			RatingAreaLabel: row.RatingAreaLabel,
			AgeBand:         row.AgeBand,
		}
		if !want[key] {
			continue
		}
		plan, ok := metals[row.PlanID]
		if !ok {
			continue
		}
		canonical := plan.Metal.Canonical()
		if out[key] == nil {
			out[key] = make(map[domain.MetalLevel]domain.LowestRate)
		}
		existing, seen := out[key][canonical]
		if !seen || row.Rate.LessThan(existing.Rate) {
			out[key][canonical] = domain.LowestRate{PlanID: row.PlanID, PlanName: plan.Name, Rate: row.Rate}
		}
	}
	return out, nil
}

func (m *MemoryStore) LowestCostPlanID(_ context.Context, state string, ratingAreas []int, metal domain.MetalLevel, ageBand string) (string, error) {
	areas := ratingAreas
	if len(areas) == 0 {
		areas = []int{1}
	}
	for _, area := range areas {
		key := domain.LocationKey{State: strings.ToUpper(state), RatingAreaLabel: domain.RatingAreaLabel(area), AgeBand: ageBand}
		byMetal, err := m.lowestByKey([]domain.LocationKey{key})
		if err != nil {
			return "", err
		}
		if lr, ok := byMetal[key][metal.Canonical()]; ok {
			return lr.PlanID, nil
		}
	}
	return "", nil
}

func (m *MemoryStore) CooperativeRates(context.Context) ([]domain.CooperativeRateRow, error) {
	return m.coopRates, nil
}

func (m *MemoryStore) SederaRates(context.Context) ([]domain.SederaRateRow, error) {
	return m.sedera, nil
}

var _ Store = (*MemoryStore)(nil)
