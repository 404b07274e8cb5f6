package ratestore

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/glovehealth/ichra-engine/internal/domain"
)

// RBIS reference tables. Owned by the ingest pipeline; this store only
// reads them.
const (
	plansTable       = "rbis_insurance_plan"
	ratesTable       = "rbis_insurance_plan_base_rates"
	variantsTable    = "rbis_insurance_plan_variant"
	cooperativeTable = "hap_cooperative_rates"
	sederaTable      = "sedera_rates_with_dpc"

	individualMarket  = "Individual"
	planEffectiveDate = "2026-01-01"
	exchangeVariant   = "Exchange variant (no CSR)"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresStore reads plan and rate reference data from the RBIS tables
// over a pgx connection pool. Queries are always batched: one round trip
// per Store call, with tuple membership expressed as IN predicates over the
// materialized key sets.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects a pool to the given DSN.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate store pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("rate store unreachable: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresStoreFromPool wraps an existing pool (the caller keeps
// ownership of its lifecycle).
func NewPostgresStoreFromPool(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Close releases the underlying pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func metalStrings(metals []domain.MetalLevel) []string {
	seen := make(map[domain.MetalLevel]bool, len(metals))
	var out []string
	for _, metal := range metals {
		for _, lvl := range metal.QueryLevels() {
			if !seen[lvl] {
				seen[lvl] = true
				out = append(out, string(lvl))
			}
		}
	}
	return out
}

func (s *PostgresStore) FetchRates(ctx context.Context, planIDs []string) ([]domain.RateRow, error) {
	if len(planIDs) == 0 {
		return nil, nil
	}

	query := psql.Select("plan_id", "rating_area_id", "age", "individual_rate").
		From(ratesTable).
		Where(sq.Eq{"plan_id": planIDs, "market_coverage": individualMarket})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build rate query: %w", err)
	}

	rows, err := s.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rates: %w", err)
	}
	defer rows.Close()

	var out []domain.RateRow
	for rows.Next() {
		var r domain.RateRow
		if err := rows.Scan(&r.PlanID, &r.RatingAreaLabel, &r.AgeBand, &r.Rate); err != nil {
			return nil, fmt.Errorf("failed to scan rate row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) PlanNames(ctx context.Context, planIDs []string) (map[string]string, error) {
	if len(planIDs) == 0 {
		return map[string]string{}, nil
	}

	sqlStr, args, err := psql.Select("hios_plan_id", "plan_marketing_name").
		From(plansTable).
		Where(sq.Eq{"hios_plan_id": planIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build plan name query: %w", err)
	}

	rows, err := s.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch plan names: %w", err)
	}
	defer rows.Close()

	names := make(map[string]string, len(planIDs))
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan plan name row: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}

func (s *PostgresStore) AvailablePlans(ctx context.Context, state string, metals []domain.MetalLevel) ([]domain.PlanInfo, error) {
	query := psql.Select("hios_plan_id", "plan_marketing_name", "level_of_coverage", "plan_type").
		Distinct().
		From(plansTable).
		Where(sq.Expr("SUBSTRING(hios_plan_id, 6, 2) = ?", strings.ToUpper(state))).
		Where(sq.Eq{"market_coverage": individualMarket, "plan_effective_date": planEffectiveDate}).
		OrderBy("level_of_coverage", "plan_marketing_name")
	if len(metals) > 0 {
		query = query.Where(sq.Eq{"level_of_coverage": metalStrings(metals)})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build plan query: %w", err)
	}

	rows, err := s.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch plans for %s: %w", state, err)
	}
	defer rows.Close()

	var out []domain.PlanInfo
	for rows.Next() {
		var p domain.PlanInfo
		var metal string
		if err := rows.Scan(&p.PlanID, &p.Name, &metal, &p.Type); err != nil {
			return nil, fmt.Errorf("failed to scan plan row: %w", err)
		}
		p.Metal = domain.MetalLevel(metal)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) PlanCountForArea(ctx context.Context, state, ratingAreaLabel string) (int, error) {
	sqlStr, args, err := psql.Select("COUNT(DISTINCT p.hios_plan_id)").
		From(plansTable + " p").
		Join(ratesTable + " r ON p.hios_plan_id = r.plan_id").
		Where(sq.Expr("SUBSTRING(p.hios_plan_id, 6, 2) = ?", strings.ToUpper(state))).
		Where(sq.Eq{
			"p.market_coverage":     individualMarket,
			"p.plan_effective_date": planEffectiveDate,
			"r.market_coverage":     individualMarket,
			"r.rating_area_id":      ratingAreaLabel,
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build plan count query: %w", err)
	}

	var count int
	if err := s.pool.QueryRow(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count plans for %s %s: %w", state, ratingAreaLabel, err)
	}
	return count, nil
}

// keySets splits location keys into the three IN-predicate value sets. The
// DISTINCT ON query over the cross product may return tuples nobody asked
// for; callers index results by exact key so the extras are inert.
func keySets(keys []domain.LocationKey) (states, areas, bands []string) {
	seenState := make(map[string]bool)
	seenArea := make(map[string]bool)
	seenBand := make(map[string]bool)
	for _, k := range keys {
		if !seenState[k.State] {
			seenState[k.State] = true
			states = append(states, k.State)
		}
		if !seenArea[k.RatingAreaLabel] {
			seenArea[k.RatingAreaLabel] = true
			areas = append(areas, k.RatingAreaLabel)
		}
		if !seenBand[k.AgeBand] {
			seenBand[k.AgeBand] = true
			bands = append(bands, k.AgeBand)
		}
	}
	return states, areas, bands
}

func (s *PostgresStore) LowestRates(ctx context.Context, keys []domain.LocationKey, metal domain.MetalLevel) (map[domain.LocationKey]domain.LowestRate, error) {
	if len(keys) == 0 {
		return map[domain.LocationKey]domain.LowestRate{}, nil
	}
	states, areas, bands := keySets(keys)

	query := psql.Select(
		"SUBSTRING(p.hios_plan_id, 6, 2) AS state",
		"r.rating_area_id",
		"r.age",
		"p.hios_plan_id",
		"p.plan_marketing_name",
		"r.individual_rate",
	).
		Options("DISTINCT ON (SUBSTRING(p.hios_plan_id, 6, 2), r.rating_area_id, r.age)").
		From(plansTable + " p").
		Join(ratesTable + " r ON p.hios_plan_id = r.plan_id").
		Where(sq.Expr("SUBSTRING(p.hios_plan_id, 6, 2) IN ("+sq.Placeholders(len(states))+")", toAny(states)...)).
		Where(sq.Eq{
			"p.market_coverage":     individualMarket,
			"p.plan_effective_date": planEffectiveDate,
			"p.level_of_coverage":   metalStrings([]domain.MetalLevel{metal}),
			"r.market_coverage":     individualMarket,
			"r.rating_area_id":      areas,
			"r.age":                 bands,
		}).
		OrderBy("SUBSTRING(p.hios_plan_id, 6, 2)", "r.rating_area_id", "r.age", "r.individual_rate ASC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build lowest-rate query: %w", err)
	}

	rows, err := s.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lowest rates: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.LocationKey]domain.LowestRate)
	for rows.Next() {
		var key domain.LocationKey
		var lr domain.LowestRate
		if err := rows.Scan(&key.State, &key.RatingAreaLabel, &key.AgeBand, &lr.PlanID, &lr.PlanName, &lr.Rate); err != nil {
			return nil, fmt.Errorf("failed to scan lowest-rate row: %w", err)
		}
		out[key] = lr
	}
	return out, rows.Err()
}

func (s *PostgresStore) LowestRatesAllMetals(ctx context.Context, keys []domain.LocationKey) (map[domain.LocationKey]map[domain.MetalLevel]domain.LowestRate, error) {
	if len(keys) == 0 {
		return map[domain.LocationKey]map[domain.MetalLevel]domain.LowestRate{}, nil
	}
	states, areas, bands := keySets(keys)

	query := psql.Select(
		"SUBSTRING(p.hios_plan_id, 6, 2) AS state",
		"r.rating_area_id",
		"r.age",
		"p.level_of_coverage",
		"p.hios_plan_id",
		"p.plan_marketing_name",
		"r.individual_rate",
		"v.issuer_actuarial_value",
	).
		Options("DISTINCT ON (SUBSTRING(p.hios_plan_id, 6, 2), r.rating_area_id, r.age, p.level_of_coverage)").
		From(plansTable + " p").
		Join(ratesTable + " r ON p.hios_plan_id = r.plan_id").
		LeftJoin(variantsTable + " v ON p.hios_plan_id = v.hios_plan_id AND v.csr_variation_type = '" + exchangeVariant + "'").
		Where(sq.Expr("SUBSTRING(p.hios_plan_id, 6, 2) IN ("+sq.Placeholders(len(states))+")", toAny(states)...)).
		Where(sq.Eq{
			"p.market_coverage":     individualMarket,
			"p.plan_effective_date": planEffectiveDate,
			"p.level_of_coverage":   []string{"Bronze", "Expanded Bronze", "Silver", "Gold"},
			"r.market_coverage":     individualMarket,
			"r.rating_area_id":      areas,
			"r.age":                 bands,
		}).
		OrderBy("SUBSTRING(p.hios_plan_id, 6, 2)", "r.rating_area_id", "r.age", "p.level_of_coverage", "r.individual_rate ASC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build multi-metal query: %w", err)
	}

	rows, err := s.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch multi-metal rates: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.LocationKey]map[domain.MetalLevel]domain.LowestRate)
	for rows.Next() {
		var key domain.LocationKey
		var metal string
		var lr domain.LowestRate
		var av *string
		if err := rows.Scan(&key.State, &key.RatingAreaLabel, &key.AgeBand, &metal, &lr.PlanID, &lr.PlanName, &lr.Rate, &av); err != nil {
			return nil, fmt.Errorf("failed to scan multi-metal row: %w", err)
		}
		lr.ActuarialValue = parseActuarialValue(av)

		canonical := domain.MetalLevel(metal).Canonical()
		if out[key] == nil {
			out[key] = make(map[domain.MetalLevel]domain.LowestRate)
		}
		// Bronze and Expanded Bronze fold together; keep the cheaper row.
		existing, seen := out[key][canonical]
		if !seen || lr.Rate.LessThan(existing.Rate) {
			out[key][canonical] = lr
		}
	}
	return out, rows.Err()
}

func (s *PostgresStore) LowestCostPlanID(ctx context.Context, state string, ratingAreas []int, metal domain.MetalLevel, ageBand string) (string, error) {
	areas := ratingAreas
	if len(areas) == 0 {
		areas = []int{1}
	}

	for _, area := range areas {
		sqlStr, args, err := psql.Select("p.hios_plan_id").
			From(plansTable + " p").
			Join(ratesTable + " r ON p.hios_plan_id = r.plan_id").
			Where(sq.Expr("SUBSTRING(p.hios_plan_id, 6, 2) = ?", strings.ToUpper(state))).
			Where(sq.Eq{
				"p.market_coverage":     individualMarket,
				"p.plan_effective_date": planEffectiveDate,
				"p.level_of_coverage":   metalStrings([]domain.MetalLevel{metal}),
				"r.market_coverage":     individualMarket,
				"r.rating_area_id":      domain.RatingAreaLabel(area),
				"r.age":                 ageBand,
			}).
			OrderBy("r.individual_rate ASC").
			Limit(1).
			ToSql()
		if err != nil {
			return "", fmt.Errorf("failed to build lowest-cost plan query: %w", err)
		}

		var planID string
		err = s.pool.QueryRow(ctx, sqlStr, args...).Scan(&planID)
		if err == pgx.ErrNoRows {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to find %s plan for %s: %w", metal, state, err)
		}
		return planID, nil
	}
	return "", nil
}

func (s *PostgresStore) CooperativeRates(ctx context.Context) ([]domain.CooperativeRateRow, error) {
	sqlStr, args, err := psql.Select("age_band", "family_status", "deductible_1k", "deductible_2_5k").
		From(cooperativeTable).
		OrderBy("age_band", "family_status").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build cooperative rate query: %w", err)
	}

	rows, err := s.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cooperative rates: %w", err)
	}
	defer rows.Close()

	var out []domain.CooperativeRateRow
	for rows.Next() {
		var r domain.CooperativeRateRow
		var fs string
		if err := rows.Scan(&r.AgeBand, &fs, &r.Deductible1K, &r.Deductible2_5K); err != nil {
			return nil, fmt.Errorf("failed to scan cooperative rate row: %w", err)
		}
		r.FamilyStatus = domain.FamilyStatus(fs)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SederaRates(ctx context.Context) ([]domain.SederaRateRow, error) {
	sqlStr, args, err := psql.Select(`"Plan"`, `"IUA"`, "age_band", "family_status", "sedera_monthly_rate").
		From(sederaTable).
		OrderBy(`"IUA"`, "age_band", "family_status").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sedera rate query: %w", err)
	}

	rows, err := s.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sedera rates: %w", err)
	}
	defer rows.Close()

	var out []domain.SederaRateRow
	for rows.Next() {
		var r domain.SederaRateRow
		var fs string
		if err := rows.Scan(&r.Plan, &r.IUA, &r.AgeBand, &fs, &r.MonthlyRate); err != nil {
			return nil, fmt.Errorf("failed to scan sedera rate row: %w", err)
		}
		r.FamilyStatus = domain.FamilyStatus(fs)
		out = append(out, r)
	}
	return out, rows.Err()
}

// parseActuarialValue converts the stored "60.00%" form to a decimal
// percentage.
func parseActuarialValue(raw *string) *decimal.Decimal {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(*raw), "%"))
	if s == "" {
		return nil
	}
	av, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &av
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

var _ Store = (*PostgresStore)(nil)
