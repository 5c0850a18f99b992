package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	store := &memoryCache{entries: map[string]interface{}{}}
	svc := NewCacheService(store, nil, 0, nil, false)

	require.NoError(t, svc.Set(context.Background(), "positions:search:a", &PositionSearchResult{Total: 1}, 0))
	assert.Empty(t, store.entries)

	var dest PositionSearchResult
	hit, err := svc.Get(context.Background(), "positions:search:a", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Invalidate(context.Background(), positionCachePattern))
	assert.Empty(t, store.invalidated)
}

func TestCacheServiceRecordsHitsAndMisses(t *testing.T) {
	store := &memoryCache{entries: map[string]interface{}{}}
	metrics := NewMetricsService()
	svc := NewCacheService(store, metrics, time.Minute, nil, true)
	ctx := context.Background()

	var dest PositionSearchResult
	hit, err := svc.Get(ctx, "positions:search:a", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "positions:search:a", &PositionSearchResult{Total: 4}, 0))
	hit, err = svc.Get(ctx, "positions:search:a", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 4, dest.Total)

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
	assert.InDelta(t, 0.5, snap.CacheHitRatio, 0.0001)

	require.NoError(t, svc.Invalidate(ctx, positionCachePattern))
	assert.Equal(t, []string{positionCachePattern}, store.invalidated)
}

func TestCacheServiceNilReceiver(t *testing.T) {
	var svc *CacheService
	assert.False(t, svc.Enabled())
	hit, err := svc.Get(context.Background(), "k", &PositionSearchResult{})
	assert.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheKeyNormalisesParts(t *testing.T) {
	assert.Equal(t, "positions:search:open:acme", CacheKey("positions", "search", "Open ", " ACME"))
	assert.Equal(t, "positions", CacheKey("positions"))
}

func TestCacheServiceFetchLoadsOnMiss(t *testing.T) {
	store := &memoryCache{entries: map[string]interface{}{}}
	svc := NewCacheService(store, nil, time.Minute, nil, true)
	ctx := context.Background()
	loads := 0
	load := func(dest *PositionSearchResult) func(context.Context) error {
		return func(context.Context) error {
			loads++
			dest.Total = 9
			return nil
		}
	}

	var first PositionSearchResult
	hit, err := svc.Fetch(ctx, "positions:search:x", &first, 0, load(&first))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 9, first.Total)

	var second PositionSearchResult
	hit, err = svc.Fetch(ctx, "positions:search:x", &second, 0, load(&second))
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 9, second.Total)
	assert.Equal(t, 1, loads)
}
