package ratestore

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/glovehealth/ichra-engine/internal/domain"
)

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func memoryFixture() *MemoryStore {
	plans := []domain.PlanInfo{
		{PlanID: "11111IL0010001", Name: "Silver Saver", Metal: domain.MetalSilver},
		{PlanID: "22222IL0010002", Name: "Bronze Basic", Metal: domain.MetalBronze},
		{PlanID: "33333IL0010003", Name: "Bronze Expanded", Metal: domain.MetalExpandedBronze},
		{PlanID: "44444TX0020001", Name: "Texas Silver", Metal: domain.MetalSilver},
	}
	rates := []domain.RateRow{
		{PlanID: "11111IL0010001", RatingAreaLabel: "Rating Area 1", AgeBand: "40", Rate: money("400")},
		{PlanID: "22222IL0010002", RatingAreaLabel: "Rating Area 1", AgeBand: "40", Rate: money("310")},
		{PlanID: "33333IL0010003", RatingAreaLabel: "Rating Area 1", AgeBand: "40", Rate: money("295")},
		{PlanID: "44444TX0020001", RatingAreaLabel: "Rating Area 2", AgeBand: "40", Rate: money("380")},
	}
	return NewMemoryStore(plans, rates)
}

func TestPlanCountForArea(t *testing.T) {
	store := memoryFixture()
	ctx := context.Background()

	count, err := store.PlanCountForArea(ctx, "IL", "Rating Area 1")
	if err != nil {
		t.Fatalf("PlanCountForArea: %v", err)
	}
	if count != 3 {
		t.Errorf("IL Rating Area 1 plan count = %d, want 3", count)
	}

	count, err = store.PlanCountForArea(ctx, "tx", "Rating Area 2")
	if err != nil {
		t.Fatalf("PlanCountForArea: %v", err)
	}
	if count != 1 {
		t.Errorf("TX Rating Area 2 plan count = %d, want 1", count)
	}
}

func TestLowestRatesFoldsExpandedBronze(t *testing.T) {
	store := memoryFixture()
	key := domain.LocationKey{State: "IL", RatingAreaLabel: "Rating Area 1", AgeBand: "40"}

	lowest, err := store.LowestRates(context.Background(), []domain.LocationKey{key}, domain.MetalBronze)
	if err != nil {
		t.Fatalf("LowestRates: %v", err)
	}
	lr, ok := lowest[key]
	if !ok {
		t.Fatal("no Bronze rate returned for IL key")
	}
	// The Expanded Bronze plan undercuts standard Bronze and counts as Bronze.
	if lr.PlanID != "33333IL0010003" {
		t.Errorf("lowest Bronze plan = %s, want 33333IL0010003", lr.PlanID)
	}
	if !lr.Rate.Equal(money("295")) {
		t.Errorf("lowest Bronze rate = %s, want 295", lr.Rate)
	}
}

func TestLowestRatesAllMetals(t *testing.T) {
	store := memoryFixture()
	key := domain.LocationKey{State: "IL", RatingAreaLabel: "Rating Area 1", AgeBand: "40"}

	byMetal, err := store.LowestRatesAllMetals(context.Background(), []domain.LocationKey{key})
	if err != nil {
		t.Fatalf("LowestRatesAllMetals: %v", err)
	}
	if got := byMetal[key][domain.MetalSilver].PlanID; got != "11111IL0010001" {
		t.Errorf("Silver plan = %s, want 11111IL0010001", got)
	}
	if got := byMetal[key][domain.MetalBronze].PlanID; got != "33333IL0010003" {
		t.Errorf("Bronze plan = %s, want 33333IL0010003", got)
	}
	if _, ok := byMetal[key][domain.MetalGold]; ok {
		t.Error("unexpected Gold rate with no Gold plans loaded")
	}
}

func TestLowestCostPlanIDProbesAreas(t *testing.T) {
	store := memoryFixture()
	ctx := context.Background()

	// Area 5 has no rates; the probe falls through to area 1.
	planID, err := store.LowestCostPlanID(ctx, "IL", []int{5, 1}, domain.MetalSilver, "40")
	if err != nil {
		t.Fatalf("LowestCostPlanID: %v", err)
	}
	if planID != "11111IL0010001" {
		t.Errorf("plan id = %s, want 11111IL0010001", planID)
	}

	planID, err = store.LowestCostPlanID(ctx, "MT", nil, domain.MetalSilver, "40")
	if err != nil {
		t.Fatalf("LowestCostPlanID: %v", err)
	}
	if planID != "" {
		t.Errorf("plan id for state with no rates = %q, want empty", planID)
	}
}

func TestFetchRatesFiltersAndCounts(t *testing.T) {
	store := memoryFixture()
	ctx := context.Background()

	rows, err := store.FetchRates(ctx, []string{"11111IL0010001", "44444TX0020001"})
	if err != nil {
		t.Fatalf("FetchRates: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("got %d rows, want 2", len(rows))
	}
	if store.FetchRatesCalls != 1 {
		t.Errorf("FetchRatesCalls = %d, want 1", store.FetchRatesCalls)
	}
}
