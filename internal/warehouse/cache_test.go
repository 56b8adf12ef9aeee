package warehouse

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leap-analytics/gymscope/internal/model"
)

// countingStore is a Store fake that counts upstream fetches.
type countingStore struct {
	blockCalls atomic.Int64
	gymCalls   atomic.Int64
	blockErr   error
	delay      time.Duration
}

func (s *countingStore) FetchBlockGroupMetrics(context.Context) ([]model.BlockGroup, error) {
	s.blockCalls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.blockErr != nil {
		return nil, s.blockErr
	}
	return []model.BlockGroup{{CensusBlockGroup: "060750101001"}}, nil
}

func (s *countingStore) FetchGymLocations(context.Context) ([]model.GymLocation, error) {
	s.gymCalls.Add(1)
	return []model.GymLocation{{PlaceID: "place-1"}}, nil
}

func (s *countingStore) Close() error { return nil }

func TestCachedStore_HitWithinTTL(t *testing.T) {
	inner := &countingStore{}
	c := NewCached(inner, time.Hour, 0)
	ctx := context.Background()

	first, err := c.FetchBlockGroupMetrics(ctx)
	require.NoError(t, err)
	second, err := c.FetchBlockGroupMetrics(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), inner.blockCalls.Load())

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
}

func TestCachedStore_ExpiryRefetches(t *testing.T) {
	inner := &countingStore{}
	c := NewCached(inner, 10*time.Millisecond, 0)
	ctx := context.Background()

	_, err := c.FetchBlockGroupMetrics(ctx)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = c.FetchBlockGroupMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), inner.blockCalls.Load())
}

func TestCachedStore_Invalidate(t *testing.T) {
	inner := &countingStore{}
	c := NewCached(inner, time.Hour, 0)
	ctx := context.Background()

	_, err := c.FetchBlockGroupMetrics(ctx)
	require.NoError(t, err)
	_, err = c.FetchGymLocations(ctx)
	require.NoError(t, err)

	c.Invalidate()

	_, err = c.FetchBlockGroupMetrics(ctx)
	require.NoError(t, err)
	_, err = c.FetchGymLocations(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), inner.blockCalls.Load())
	assert.Equal(t, int64(2), inner.gymCalls.Load())
}

func TestCachedStore_SeparateKeys(t *testing.T) {
	inner := &countingStore{}
	c := NewCached(inner, time.Hour, 0)
	ctx := context.Background()

	// Fetching gyms does not warm or consult the block cache.
	_, err := c.FetchGymLocations(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), inner.blockCalls.Load())

	_, err = c.FetchBlockGroupMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), inner.blockCalls.Load())
	assert.Equal(t, int64(1), inner.gymCalls.Load())
}

func TestCachedStore_ErrorNotCached(t *testing.T) {
	inner := &countingStore{blockErr: errors.New("warehouse down")}
	c := NewCached(inner, time.Hour, 0)
	ctx := context.Background()

	_, err := c.FetchBlockGroupMetrics(ctx)
	require.Error(t, err)

	inner.blockErr = nil
	got, err := c.FetchBlockGroupMetrics(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int64(2), inner.blockCalls.Load())
}

func TestCachedStore_ConcurrentMissesCollapse(t *testing.T) {
	inner := &countingStore{delay: 20 * time.Millisecond}
	c := NewCached(inner, time.Hour, 0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.FetchBlockGroupMetrics(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Concurrent misses collapse into one upstream query.
	assert.Equal(t, int64(1), inner.blockCalls.Load())
}

func TestCachedStore_ZeroTTLDefaultsToHour(t *testing.T) {
	c := NewCached(&countingStore{}, 0, 0)
	assert.Equal(t, time.Hour, c.ttl)
}
