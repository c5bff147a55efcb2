package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a read-through cache with a fixed TTL in front of read-heavy
// queries (group listings, membership lookups). Every mutating operation
// that touches a cached key space must invalidate synchronously, so a stale
// read is never visible past one mutation. A nil Cache or a Cache without a
// client degrades to direct reads.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// Well-known keys. Mutators invalidate these; readers populate them.
const (
	KeyAllGroups      = "all_groups"
	keyUserGroupsFmt  = "user_groups_%d"
	PatternUserGroups = "user_groups_*"
)

// UserGroupsKey returns the cache key for one user's group memberships.
func UserGroupsKey(userID uint64) string {
	return fmt.Sprintf(keyUserGroupsFmt, userID)
}

// New creates a Cache backed by the given Redis client. Client may be nil.
func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// NewRedisClient instantiates a Redis client against addr and verifies it with
// a short ping. Returns nil on failure so callers degrade gracefully.
func NewRedisClient(addr string) *redis.Client {
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}

// Get unmarshals a cached value into dest, reporting whether the key was hit.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// Set stores a value under key with the cache's TTL. Failures are ignored:
// a missed write only costs the next read a database round trip.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.client.Set(ctx, key, raw, c.ttl)
}

// Invalidate removes the given keys.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}
	c.client.Del(ctx, keys...)
}

// InvalidatePattern removes all keys matching a glob pattern.
func (c *Cache) InvalidatePattern(ctx context.Context, pattern string) {
	if c == nil || c.client == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if len(keys) > 0 {
		c.client.Del(ctx, keys...)
	}
}
