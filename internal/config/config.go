// Package config loads and validates the engine's YAML configuration:
// rate-store connection settings, optional multiplier overrides, fit-score
// weight overrides and per-scenario plan selections.
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/glovehealth/ichra-engine/internal/domain"
	"github.com/glovehealth/ichra-engine/internal/fitscore"
)

// Config is the full engine configuration.
type Config struct {
	Store     StoreConfig      `yaml:"store"`
	Rating    RatingConfig     `yaml:"rating"`
	FitScore  FitScoreConfig   `yaml:"fit_score"`
	Scenarios []ScenarioConfig `yaml:"scenarios"`
}

// StoreConfig points the engine at its rate data.
type StoreConfig struct {
	// DatabaseURL is a pgx connection string for the plan/rate database.
	DatabaseURL string `yaml:"database_url"`

	// RedisAddr enables the read-through rate cache when non-empty.
	RedisAddr     string `yaml:"redis_addr,omitempty"`
	RedisPassword string `yaml:"redis_password,omitempty"`
	RedisDB       int    `yaml:"redis_db,omitempty"`

	// CacheTTLMinutes overrides the default cache entry lifetime.
	CacheTTLMinutes int `yaml:"cache_ttl_minutes,omitempty"`
}

// RatingConfig carries the two multiplier sets. Both default to the built-in
// values when omitted; they are configured independently and never assumed
// equal.
type RatingConfig struct {
	RatedTierMultipliers    map[string]float64 `yaml:"rated_tier_multipliers,omitempty"`
	EstimateTierMultipliers map[string]float64 `yaml:"estimate_tier_multipliers,omitempty"`
}

// FitScoreConfig overrides the category weights. Omitted means the default
// weighting.
type FitScoreConfig struct {
	Weights map[string]int `yaml:"weights,omitempty"`
}

// ScenarioConfig names one plan-selection scenario: a plan id per state.
type ScenarioConfig struct {
	Name       string            `yaml:"name"`
	Selections map[string]string `yaml:"selections"`
}

// Parser loads configuration files.
type Parser struct{}

// NewParser creates a configuration parser.
func NewParser() *Parser {
	return &Parser{}
}

// LoadFromFile loads and validates a YAML configuration file.
func (p *Parser) LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := p.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks every section of the configuration.
func (p *Parser) Validate(cfg *Config) error {
	if err := validateMultipliers("rated_tier_multipliers", cfg.Rating.RatedTierMultipliers); err != nil {
		return err
	}
	if err := validateMultipliers("estimate_tier_multipliers", cfg.Rating.EstimateTierMultipliers); err != nil {
		return err
	}

	if len(cfg.FitScore.Weights) > 0 {
		weights, err := cfg.FitScoreWeights()
		if err != nil {
			return err
		}
		if err := weights.Validate(); err != nil {
			return err
		}
	}

	for i, sc := range cfg.Scenarios {
		if sc.Name == "" {
			return fmt.Errorf("scenario %d: name is required", i)
		}
		if len(sc.Selections) == 0 {
			return fmt.Errorf("scenario %q: at least one state selection is required", sc.Name)
		}
		for state, planID := range sc.Selections {
			if len(state) != 2 {
				return fmt.Errorf("scenario %q: invalid state code %q", sc.Name, state)
			}
			if planID == "" {
				return fmt.Errorf("scenario %q: empty plan id for state %s", sc.Name, state)
			}
		}
	}
	return nil
}

func validateMultipliers(section string, m map[string]float64) error {
	for tier, factor := range m {
		if !domain.FamilyStatus(tier).IsValid() {
			return fmt.Errorf("%s: unknown family status %q", section, tier)
		}
		if factor <= 0 {
			return fmt.Errorf("%s: multiplier for %s must be positive, got %v", section, tier, factor)
		}
	}
	return nil
}

// RatedTierMultipliers resolves the rated multiplier set, applying overrides
// on top of the defaults.
func (c *Config) RatedTierMultipliers() domain.TierMultipliers {
	return overlayMultipliers(domain.DefaultRatedTierMultipliers(), c.Rating.RatedTierMultipliers)
}

// EstimateTierMultipliers resolves the estimate multiplier set.
func (c *Config) EstimateTierMultipliers() domain.TierMultipliers {
	return overlayMultipliers(domain.DefaultEstimateTierMultipliers(), c.Rating.EstimateTierMultipliers)
}

func overlayMultipliers(base domain.TierMultipliers, overrides map[string]float64) domain.TierMultipliers {
	for tier, factor := range overrides {
		base[domain.FamilyStatus(tier)] = decimal.NewFromFloat(factor)
	}
	return base
}

// FitScoreWeights resolves the fit-score weights, applying overrides on top
// of the defaults. The combined set must still name exactly the six known
// categories.
func (c *Config) FitScoreWeights() (fitscore.Weights, error) {
	weights := fitscore.DefaultWeights()
	for name, weight := range c.FitScore.Weights {
		cat := fitscore.Category(name)
		if _, ok := weights[cat]; !ok {
			return nil, fmt.Errorf("fit_score.weights: unknown category %q", name)
		}
		weights[cat] = weight
	}
	return weights, nil
}
