package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const publicListKey = "qna:public_list"

// ListCache keeps the serialized public board listing in Redis for a short
// TTL. Every mutating workflow operation invalidates it. A nil client
// disables caching entirely; reads then always fall through to the store.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewListCache constructs the cache.
func NewListCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ListCache {
	return &ListCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached payload and whether it was present.
func (c *ListCache) Get(ctx context.Context) ([]byte, bool) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return nil, false
	}
	payload, err := c.client.Get(ctx, publicListKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("list cache read failed", zap.Error(err))
		}
		return nil, false
	}
	return payload, true
}

// Set stores the payload. Failures are logged, not surfaced.
func (c *ListCache) Set(ctx context.Context, payload []byte) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return
	}
	if err := c.client.Set(ctx, publicListKey, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("list cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached listing.
func (c *ListCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, publicListKey).Err(); err != nil {
		c.logger.Warn("list cache invalidation failed", zap.Error(err))
	}
}
