package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFeedCache_MissThenHit(t *testing.T) {
	cache := NewMemoryFeedCache(time.Minute)
	ctx := context.Background()

	_, hit, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, hit)

	now := time.Now()
	require.NoError(t, cache.Set(ctx, 1, []FeedEntry{
		{WarbleID: 10, Timestamp: now.Add(-2 * time.Minute)},
		{WarbleID: 30, Timestamp: now},
		{WarbleID: 20, Timestamp: now.Add(-time.Minute)},
	}))

	ids, hit, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, hit)
	// Newest first regardless of insertion order.
	assert.Equal(t, []uint{30, 20, 10}, ids)
}

func TestMemoryFeedCache_EmptyFeedIsAHit(t *testing.T) {
	cache := NewMemoryFeedCache(time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, 1, nil))

	ids, hit, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Empty(t, ids)
}

func TestMemoryFeedCache_Invalidate(t *testing.T) {
	cache := NewMemoryFeedCache(time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, 1, []FeedEntry{{WarbleID: 10, Timestamp: time.Now()}}))
	require.NoError(t, cache.Set(ctx, 2, []FeedEntry{{WarbleID: 20, Timestamp: time.Now()}}))

	require.NoError(t, cache.Invalidate(ctx, 1))

	_, hit, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, hit)

	_, hit, err = cache.Get(ctx, 2)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestMemoryFeedCache_Expiry(t *testing.T) {
	cache := NewMemoryFeedCache(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, 1, []FeedEntry{{WarbleID: 10, Timestamp: time.Now()}}))

	time.Sleep(20 * time.Millisecond)

	_, hit, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, hit)
}
