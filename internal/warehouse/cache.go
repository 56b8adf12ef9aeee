package warehouse

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/leap-analytics/gymscope/internal/model"
)

// Cache keys: one per fetch operation, keyed by function identity.
const (
	keyBlockGroups = "block_group_metrics"
	keyGyms        = "gym_locations"
)

// CacheStats contains cache performance counters.
type CacheStats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// CachedStore decorates a Store with a per-fetch TTL cache, singleflight
// collapse of concurrent misses, and a rate limiter on upstream queries.
// Within the TTL window repeated fetches are served from memory and never
// touch the warehouse.
type CachedStore struct {
	inner   Store
	ttl     time.Duration
	limiter *rate.Limiter
	group   singleflight.Group

	mu        sync.Mutex
	blocks    []model.BlockGroup
	blocksAt  time.Time
	gyms      []model.GymLocation
	gymsAt    time.Time
	hasBlocks bool
	hasGyms   bool

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCached wraps inner with a TTL cache. A zero ttl defaults to one hour.
// queriesPerMinute throttles upstream fetches on cache misses; zero disables
// throttling.
func NewCached(inner Store, ttl time.Duration, queriesPerMinute int) *CachedStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if queriesPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(queriesPerMinute)/60.0), 1)
	}
	return &CachedStore{inner: inner, ttl: ttl, limiter: limiter}
}

// FetchBlockGroupMetrics returns the cached mart snapshot, refreshing it from
// the inner store when the TTL window has lapsed.
func (c *CachedStore) FetchBlockGroupMetrics(ctx context.Context) ([]model.BlockGroup, error) {
	c.mu.Lock()
	if c.hasBlocks && time.Since(c.blocksAt) < c.ttl {
		cached := c.blocks
		c.mu.Unlock()
		c.hits.Add(1)
		return cached, nil
	}
	c.mu.Unlock()

	c.misses.Add(1)
	v, err, _ := c.group.Do(keyBlockGroups, func() (any, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "warehouse: rate limit wait")
		}
		blocks, err := c.inner.FetchBlockGroupMetrics(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.blocks = blocks
		c.blocksAt = time.Now()
		c.hasBlocks = true
		c.mu.Unlock()
		return blocks, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.BlockGroup), nil
}

// FetchGymLocations returns the cached gym points, refreshing on expiry.
func (c *CachedStore) FetchGymLocations(ctx context.Context) ([]model.GymLocation, error) {
	c.mu.Lock()
	if c.hasGyms && time.Since(c.gymsAt) < c.ttl {
		cached := c.gyms
		c.mu.Unlock()
		c.hits.Add(1)
		return cached, nil
	}
	c.mu.Unlock()

	c.misses.Add(1)
	v, err, _ := c.group.Do(keyGyms, func() (any, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "warehouse: rate limit wait")
		}
		gyms, err := c.inner.FetchGymLocations(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.gyms = gyms
		c.gymsAt = time.Now()
		c.hasGyms = true
		c.mu.Unlock()
		return gyms, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.GymLocation), nil
}

// Invalidate drops both cached snapshots, forcing the next fetches through to
// the warehouse.
func (c *CachedStore) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blocks = nil
	c.gyms = nil
	c.hasBlocks = false
	c.hasGyms = false
}

// Stats returns hit/miss counters.
func (c *CachedStore) Stats() CacheStats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return CacheStats{Hits: hits, Misses: misses, HitRate: hitRate}
}

// Close closes the inner store.
func (c *CachedStore) Close() error {
	return c.inner.Close()
}
