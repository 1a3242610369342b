package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/example/calc-vision/internal/analyzer"
)

// ResultCache stores complete analysis results keyed by submission.
type ResultCache interface {
	// Load reports ok=false on a miss. A miss is not an error.
	Load(ctx context.Context, key string) (items []analyzer.Item, ok bool, err error)
	Store(ctx context.Context, key string, items []analyzer.Item, ttl time.Duration) error
}

// redisKV is the part of the go-redis client RedisCache needs.
type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisCache keeps results as JSON arrays in Redis.
type RedisCache struct {
	client redisKV
}

// NewRedisCache accepts a *redis.Client or anything with the same Get/Set.
func NewRedisCache(client redisKV) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Load(ctx context.Context, key string) ([]analyzer.Item, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	items := make([]analyzer.Item, 0)
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}

func (c *RedisCache) Store(ctx context.Context, key string, items []analyzer.Item, ttl time.Duration) error {
	if items == nil {
		items = make([]analyzer.Item, 0)
	}
	serialized, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, serialized, ttl).Err()
}
