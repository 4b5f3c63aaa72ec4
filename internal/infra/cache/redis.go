package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// opTimeout bounds every Redis round trip; a slow cache must not slow a report.
const opTimeout = 200 * time.Millisecond

// Redis is a port.Cache backed by Redis. Values are stored as JSON under
// "<namespace>:<key>". Redis failures degrade to cache misses.
type Redis[T any] struct {
	client    redis.UniversalClient
	namespace string
	ttl       time.Duration
	logger    *zap.Logger
}

// NewRedis creates a Redis-backed cache.
func NewRedis[T any](client redis.UniversalClient, namespace string, ttl time.Duration, logger *zap.Logger) *Redis[T] {
	return &Redis[T]{client: client, namespace: namespace, ttl: ttl, logger: logger}
}

// NewRedisClient connects to a single Redis node, like the rest of our services do.
func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
}

func (c *Redis[T]) key(k string) string {
	return c.namespace + ":" + k
}

// Get retrieves and decodes a value. Returns false on miss or any Redis error.
func (c *Redis[T]) Get(key string) (T, bool) {
	var zero T

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("redis cache: get failed", zap.String("key", c.key(key)), zap.Error(err))
		}
		return zero, false
	}

	// UseNumber keeps upstream decimals intact inside opaque documents.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var value T
	if err := dec.Decode(&value); err != nil {
		c.logger.Warn("redis cache: corrupt entry", zap.String("key", c.key(key)), zap.Error(err))
		return zero, false
	}
	return value, true
}

// Set encodes and stores a value with the configured TTL.
func (c *Redis[T]) Set(key string, value T) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("redis cache: encode failed", zap.String("key", c.key(key)), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := c.client.Set(ctx, c.key(key), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("redis cache: set failed", zap.String("key", c.key(key)), zap.Error(err))
	}
}

// Delete removes a value.
func (c *Redis[T]) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		c.logger.Warn("redis cache: delete failed", zap.String("key", c.key(key)), zap.Error(err))
	}
}
