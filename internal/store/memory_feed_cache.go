package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryFeed struct {
	ids       []uint
	expiresAt time.Time
}

// MemoryFeedCache is an in-process FeedCache for development and tests.
type MemoryFeedCache struct {
	mu    sync.RWMutex
	feeds map[uint]memoryFeed
	ttl   time.Duration
}

var _ FeedCache = (*MemoryFeedCache)(nil)

// NewMemoryFeedCache creates an in-memory feed cache.
func NewMemoryFeedCache(ttl time.Duration) *MemoryFeedCache {
	return &MemoryFeedCache{
		feeds: make(map[uint]memoryFeed),
		ttl:   ttl,
	}
}

func (c *MemoryFeedCache) Get(_ context.Context, userID uint) ([]uint, bool, error) {
	c.mu.RLock()
	feed, ok := c.feeds[userID]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(feed.expiresAt) {
		c.mu.Lock()
		delete(c.feeds, userID)
		c.mu.Unlock()
		return nil, false, nil
	}

	ids := make([]uint, len(feed.ids))
	copy(ids, feed.ids)
	return ids, true, nil
}

func (c *MemoryFeedCache) Set(_ context.Context, userID uint, entries []FeedEntry) error {
	sorted := make([]FeedEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	ids := make([]uint, 0, len(sorted))
	for _, e := range sorted {
		ids = append(ids, e.WarbleID)
	}

	c.mu.Lock()
	c.feeds[userID] = memoryFeed{ids: ids, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

func (c *MemoryFeedCache) Invalidate(_ context.Context, userIDs ...uint) error {
	c.mu.Lock()
	for _, id := range userIDs {
		delete(c.feeds, id)
	}
	c.mu.Unlock()
	return nil
}

func (c *MemoryFeedCache) Close() error {
	return nil
}
