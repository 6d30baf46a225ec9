package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aiquery-dev/aiquery-engine/pkg/models"
)

const redisKeyPrefix = "aiquery:result:"

// RedisCache is a ResultCache backed by Redis, for deployments where cached
// answers should survive process restarts or be shared across replicas.
// TTL is enforced by Redis expiry; capacity is left to Redis memory policy.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps an existing Redis client. The client's connection is
// verified with a ping so misconfiguration surfaces at startup, not on the
// first cache miss.
func NewRedisCache(client *redis.Client, ttl time.Duration) (*RedisCache, error) {
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

// Get returns the cached answer, or (nil, nil) if absent.
func (c *RedisCache) Get(question string) (*Hit, error) {
	data, err := c.client.Get(context.Background(), redisKeyPrefix+Key(question)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var hit Hit
	if err := json.Unmarshal(data, &hit); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	return &hit, nil
}

// Set stores an answer with the configured TTL.
func (c *RedisCache) Set(question, sql string, result *models.ExecutionResult, warnings []string) error {
	data, err := json.Marshal(Hit{SQL: sql, Result: result, Warnings: warnings})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := c.client.Set(context.Background(), redisKeyPrefix+Key(question), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate removes the entry for a question, if present.
func (c *RedisCache) Invalidate(question string) error {
	if err := c.client.Del(context.Background(), redisKeyPrefix+Key(question)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
