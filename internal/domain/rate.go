package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Age band sentinels used by the RBIS rate tables. Ages 15-63 are stored as
// single-year bands ("15".."63").
const (
	AgeBandChild  = "0-14"
	AgeBandSenior = "64 and over"

	// FamilyTierLabel is the age-column sentinel marking a family-tier rate
	// row in states that do not rate by member age.
	FamilyTierLabel = "Family-Tier Rates"
)

// FamilyTierStates are the states whose individual market prices a whole
// family composition as one unit instead of summing per-member age rates.
var FamilyTierStates = map[string]bool{
	"NY": true,
	"VT": true,
}

// MetalLevel is an ACA marketplace coverage tier.
type MetalLevel string

const (
	MetalBronze         MetalLevel = "Bronze"
	MetalExpandedBronze MetalLevel = "Expanded Bronze"
	MetalSilver         MetalLevel = "Silver"
	MetalGold           MetalLevel = "Gold"
	MetalPlatinum       MetalLevel = "Platinum"
)

// QueryLevels expands a requested metal level to the levels the rate table
// stores. Bronze queries include Expanded Bronze rows.
func (m MetalLevel) QueryLevels() []MetalLevel {
	if m == MetalBronze {
		return []MetalLevel{MetalBronze, MetalExpandedBronze}
	}
	return []MetalLevel{m}
}

// Canonical folds Expanded Bronze into Bronze for result grouping.
func (m MetalLevel) Canonical() MetalLevel {
	if m == MetalExpandedBronze {
		return MetalBronze
	}
	return m
}

// AgeBand converts an integer age to the rate-table band label.
func AgeBand(age int) string {
	switch {
	case age <= 14:
		return AgeBandChild
	case age >= 64:
		return AgeBandSenior
	default:
		return strconv.Itoa(age)
	}
}

// CooperativeAgeBand converts an age to the cooperative (HAS) rate band.
func CooperativeAgeBand(age int) string {
	switch {
	case age < 30:
		return "18-29"
	case age < 40:
		return "30-39"
	case age < 50:
		return "40-49"
	case age < 60:
		return "50-59"
	default:
		return "60-64"
	}
}

// SederaAgeBand converts an age to the Sedera health-share rate band. It
// differs from the cooperative bands only in the open-ended top band.
func SederaAgeBand(age int) string {
	if age >= 60 {
		return "60+"
	}
	return CooperativeAgeBand(age)
}

// RatingAreaLabel renders the rate-table form of a rating area number,
// e.g. "Rating Area 7".
func RatingAreaLabel(area int) string {
	return fmt.Sprintf("Rating Area %d", area)
}

// PlanStateCode extracts the 2-letter issuing state embedded in a HIOS plan
// ID (positions 6-7, e.g. "12345NY0010001" -> "NY").
func PlanStateCode(planID string) string {
	if len(planID) < 7 {
		return ""
	}
	return strings.ToUpper(planID[5:7])
}

// RateRow is one row of the plan base-rate table: the monthly rate for a
// plan in a rating area for one age band (or the family-tier sentinel).
// Reference data owned by the rate store; the engine only reads it.
type RateRow struct {
	PlanID          string          `json:"plan_id"`
	RatingAreaLabel string          `json:"rating_area_id"`
	AgeBand         string          `json:"age"`
	Rate            decimal.Decimal `json:"rate"`
}

// LocationKey identifies a unique rating context within a census: the state,
// the rating-area label, and either an age band or the family-tier sentinel.
// Batched lowest-rate queries are keyed by these tuples.
type LocationKey struct {
	State           string
	RatingAreaLabel string
	AgeBand         string
}

// LowestRate is the cheapest plan found for a location key (optionally per
// metal level).
type LowestRate struct {
	PlanID         string
	PlanName       string
	Rate           decimal.Decimal
	ActuarialValue *decimal.Decimal
}

// PlanInfo carries plan identity details used in summaries.
type PlanInfo struct {
	PlanID string     `json:"plan_id"`
	Name   string     `json:"name"`
	Metal  MetalLevel `json:"metal,omitempty"`
	Type   string     `json:"type,omitempty"`
}

// CooperativeRateRow is one row of the HAS cooperative rate table. Rates are
// group-priced: one family rate keyed by the eldest member's band and the
// family status, with separate columns per deductible level.
type CooperativeRateRow struct {
	AgeBand        string          `json:"age_band"`
	FamilyStatus   FamilyStatus    `json:"family_status"`
	Deductible1K   decimal.Decimal `json:"deductible_1k"`
	Deductible2_5K decimal.Decimal `json:"deductible_2_5k"`
}

// SederaRateRow is one row of the Sedera rate table, keyed by IUA level
// (initial unshareable amount), age band and family status.
type SederaRateRow struct {
	Plan         string          `json:"plan"`
	IUA          string          `json:"iua"`
	AgeBand      string          `json:"age_band"`
	FamilyStatus FamilyStatus    `json:"family_status"`
	MonthlyRate  decimal.Decimal `json:"monthly_rate"`
}

// CooperativeDeductibles are the deductible levels the cooperative table
// carries.
var CooperativeDeductibles = []string{"1k", "2.5k"}

// SederaIUALevels are the IUA levels the Sedera table carries.
var SederaIUALevels = []string{"500", "1000", "1500", "2500", "5000"}
