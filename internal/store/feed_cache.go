// Package store provides the home feed cache. The cache keeps only warble
// ids per user; the database remains the source of truth for content and
// ordering.
package store

import (
	"context"
	"time"
)

// FeedEntry is a single cached feed member: a warble id scored by its
// timestamp so the cache preserves recency order.
type FeedEntry struct {
	WarbleID  uint
	Timestamp time.Time
}

// FeedCache caches the candidate warble ids of a user's home feed.
type FeedCache interface {
	// Get returns the cached warble ids for userID, most recent first, and
	// whether the cache held an entry at all. A cached empty feed is a hit.
	Get(ctx context.Context, userID uint) ([]uint, bool, error)
	// Set replaces the cached feed for userID.
	Set(ctx context.Context, userID uint, entries []FeedEntry) error
	// Invalidate drops the cached feeds of the given users.
	Invalidate(ctx context.Context, userIDs ...uint) error
	Close() error
}
