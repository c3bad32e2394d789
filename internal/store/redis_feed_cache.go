package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// emptyFeedMember marks a cached-but-empty feed so absence of warbles is
// distinguishable from a cache miss. It can never collide with a real id.
const emptyFeedMember = "none"

// RedisFeedCache stores each user's feed as a sorted set of warble ids
// scored by timestamp.
type RedisFeedCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ FeedCache = (*RedisFeedCache)(nil)

// NewRedisFeedCache connects to Redis and verifies the connection.
func NewRedisFeedCache(addr, password string, db int, ttl time.Duration) (*RedisFeedCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisFeedCache{client: client, ttl: ttl}, nil
}

func feedKey(userID uint) string {
	return fmt.Sprintf("feed:%d", userID)
}

func (c *RedisFeedCache) Get(ctx context.Context, userID uint) ([]uint, bool, error) {
	members, err := c.client.ZRevRange(ctx, feedKey(userID), 0, -1).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read feed cache: %w", err)
	}
	if len(members) == 0 {
		return nil, false, nil
	}

	ids := make([]uint, 0, len(members))
	for _, m := range members {
		if m == emptyFeedMember {
			continue
		}
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			// Corrupt entry; treat the whole feed as a miss and let the
			// database rebuild it.
			_ = c.client.Del(ctx, feedKey(userID)).Err()
			return nil, false, nil
		}
		ids = append(ids, uint(id))
	}
	return ids, true, nil
}

func (c *RedisFeedCache) Set(ctx context.Context, userID uint, entries []FeedEntry) error {
	key := feedKey(userID)

	members := make([]redis.Z, 0, len(entries)+1)
	for _, e := range entries {
		members = append(members, redis.Z{
			Score:  float64(e.Timestamp.UnixMilli()),
			Member: strconv.FormatUint(uint64(e.WarbleID), 10),
		})
	}
	if len(members) == 0 {
		members = append(members, redis.Z{Score: 0, Member: emptyFeedMember})
	}

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.ZAdd(ctx, key, members...)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write feed cache: %w", err)
	}
	return nil
}

func (c *RedisFeedCache) Invalidate(ctx context.Context, userIDs ...uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, feedKey(id))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate feed cache: %w", err)
	}
	return nil
}

func (c *RedisFeedCache) Close() error {
	return c.client.Close()
}
