package ratestore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/glovehealth/ichra-engine/internal/domain"
)

// DefaultCacheTTL bounds staleness of cached rate batches. Rate tables
// change annually, so an hour is generous.
const DefaultCacheTTL = time.Hour

// CachedStore is a read-through Redis cache in front of another Store. Rate
// batches are keyed by the sorted request parameters, so repeated scenario
// runs over the same plan selections skip the backing store entirely. Cache
// failures fall through to the backing store; only the backing store's own
// errors propagate.
type CachedStore struct {
	Store
	client *redis.Client
	ttl    time.Duration
}

// NewCachedStore wraps next with a Redis cache.
func NewCachedStore(next Store, opts *redis.Options, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedStore{
		Store:  next,
		client: redis.NewClient(opts),
		ttl:    ttl,
	}
}

func (c *CachedStore) FetchRates(ctx context.Context, planIDs []string) ([]domain.RateRow, error) {
	key := "rates:" + joinSorted(planIDs)

	var cached []domain.RateRow
	if c.getJSON(ctx, key, &cached) {
		return cached, nil
	}

	rows, err := c.Store.FetchRates(ctx, planIDs)
	if err != nil {
		return nil, err
	}
	c.setJSON(ctx, key, rows)
	return rows, nil
}

func (c *CachedStore) PlanNames(ctx context.Context, planIDs []string) (map[string]string, error) {
	key := "plannames:" + joinSorted(planIDs)

	var cached map[string]string
	if c.getJSON(ctx, key, &cached) {
		return cached, nil
	}

	names, err := c.Store.PlanNames(ctx, planIDs)
	if err != nil {
		return nil, err
	}
	c.setJSON(ctx, key, names)
	return names, nil
}

func (c *CachedStore) CooperativeRates(ctx context.Context) ([]domain.CooperativeRateRow, error) {
	const key = "cooperative-rates"

	var cached []domain.CooperativeRateRow
	if c.getJSON(ctx, key, &cached) {
		return cached, nil
	}

	rows, err := c.Store.CooperativeRates(ctx)
	if err != nil {
		return nil, err
	}
	c.setJSON(ctx, key, rows)
	return rows, nil
}

func (c *CachedStore) SederaRates(ctx context.Context) ([]domain.SederaRateRow, error) {
	const key = "sedera-rates"

	var cached []domain.SederaRateRow
	if c.getJSON(ctx, key, &cached) {
		return cached, nil
	}

	rows, err := c.Store.SederaRates(ctx)
	if err != nil {
		return nil, err
	}
	c.setJSON(ctx, key, rows)
	return rows, nil
}

func (c *CachedStore) getJSON(ctx context.Context, key string, dest any) bool {
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(raw), dest) == nil
}

func (c *CachedStore) setJSON(ctx context.Context, key string, val any) {
	raw, err := json.Marshal(val)
	if err != nil {
		return
	}
	// Best effort; a write failure just means the next run re-queries.
	c.client.Set(ctx, key, raw, c.ttl)
}

func joinSorted(ids []string) string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)
	return fmt.Sprintf("%d:%s", len(sorted), strings.Join(sorted, ","))
}

var _ Store = (*CachedStore)(nil)
