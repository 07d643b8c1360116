// Package redis provides a Redis-backed cache for deployments where the
// MCP server runs more than one process against the same sources. Expiry
// and capacity are delegated to Redis (native TTL, maxmemory policy).
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/fetcha-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fetcha-cli/internal/logger"
)

// Ensure Cache implements the interface.
var _ driven.Cache = (*Cache)(nil)

// Cache stores entries under a shared key prefix with a per-cache TTL.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New creates a Redis cache. The prefix keeps the search, document and
// updates caches apart inside one database.
func New(addr, prefix string, ttl time.Duration) *Cache {
	return &Cache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		prefix: prefix,
		ttl:    ttl,
	}
}

// Get implements driven.Cache. Backend failures degrade to a miss: the
// aggregator then refetches from the sources.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := c.client.Get(ctx, c.prefix+":"+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("Redis get failed, treating as miss: %v", err)
		}
		return nil, false
	}
	return value, true
}

// Put implements driven.Cache. Write failures are logged and dropped.
func (c *Cache) Put(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, c.prefix+":"+key, value, c.ttl).Err(); err != nil {
		logger.Warn("Redis set failed, skipping cache write: %v", err)
	}
}

// Close implements driven.Cache.
func (c *Cache) Close() error {
	return c.client.Close()
}
