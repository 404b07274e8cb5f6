package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glovehealth/ichra-engine/internal/domain"
	"github.com/glovehealth/ichra-engine/internal/fitscore"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ichra.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
store:
  database_url: postgres://localhost:5432/rates
  redis_addr: localhost:6379
  cache_ttl_minutes: 30
rating:
  rated_tier_multipliers:
    F: 2.9
fit_score:
  weights:
    cost_advantage: 30
    market_readiness: 15
scenarios:
  - name: baseline
    selections:
      IL: 12345IL0010001
      TX: 67890TX0020001
`)

	cfg, err := NewParser().LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost:5432/rates", cfg.Store.DatabaseURL)
	assert.Equal(t, 30, cfg.Store.CacheTTLMinutes)
	require.Len(t, cfg.Scenarios, 1)
	assert.Equal(t, "12345IL0010001", cfg.Scenarios[0].Selections["IL"])

	rated := cfg.RatedTierMultipliers()
	assert.True(t, rated.Multiplier(domain.FamilyStatusFamily).Equal(decimal.RequireFromString("2.9")))
	// Untouched tiers keep their defaults.
	assert.True(t, rated.Multiplier(domain.FamilyStatusEmployeeSpouse).Equal(decimal.RequireFromString("2")))

	weights, err := cfg.FitScoreWeights()
	require.NoError(t, err)
	assert.Equal(t, 30, weights[fitscore.CostAdvantage])
	assert.Equal(t, 15, weights[fitscore.MarketReadiness])
	require.NoError(t, weights.Validate())
}

func TestValidateRejectsUnknownTier(t *testing.T) {
	path := writeConfig(t, `
rating:
  rated_tier_multipliers:
    XX: 2.0
`)
	_, err := NewParser().LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown family status")
}

func TestValidateRejectsWeightsNotSummingTo100(t *testing.T) {
	path := writeConfig(t, `
fit_score:
  weights:
    cost_advantage: 40
`)
	_, err := NewParser().LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be exactly 100")
}

func TestValidateRejectsBadScenario(t *testing.T) {
	path := writeConfig(t, `
scenarios:
  - name: ""
    selections:
      IL: 12345IL0010001
`)
	_, err := NewParser().LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")

	path = writeConfig(t, `
scenarios:
  - name: baseline
    selections:
      ILLINOIS: 12345IL0010001
`)
	_, err = NewParser().LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid state code")
}

func TestFitScoreWeightsRejectsUnknownCategory(t *testing.T) {
	cfg := &Config{FitScore: FitScoreConfig{Weights: map[string]int{"speed": 10}}}
	_, err := cfg.FitScoreWeights()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")
}
