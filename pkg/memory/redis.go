package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisMemory implements the Memory interface using Redis
type RedisMemory struct {
	client    *redis.Client
	namespace string
}

// NewRedisMemory creates a new Redis-based store
func NewRedisMemory(ctx context.Context, redisURL, namespace string) (*RedisMemory, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, storageErr("open", "", fmt.Errorf("invalid Redis URL: %w", err))
	}

	client := redis.NewClient(opts)

	// Test connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, storageErr("open", "", fmt.Errorf("failed to connect to Redis: %w", err))
	}

	return NewRedisMemoryFromClient(client, namespace), nil
}

// NewRedisMemoryFromClient wraps an existing client
func NewRedisMemoryFromClient(client *redis.Client, namespace string) *RedisMemory {
	if namespace == "" {
		namespace = "shopeasy"
	}
	return &RedisMemory{
		client:    client,
		namespace: namespace,
	}
}

// Set stores a key-value pair with TTL
func (r *RedisMemory) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, r.buildKey(key), value, ttl).Err(); err != nil {
		return storageErr("set", key, err)
	}
	return nil
}

// Get retrieves a value by key
func (r *RedisMemory) Get(ctx context.Context, key string) (string, error) {
	data, err := r.client.Get(ctx, r.buildKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", storageErr("get", key, ErrKeyNotFound)
		}
		return "", storageErr("get", key, err)
	}
	return data, nil
}

// Delete removes a key
func (r *RedisMemory) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.buildKey(key)).Err(); err != nil {
		return storageErr("delete", key, err)
	}
	return nil
}

// Exists checks if a key exists
func (r *RedisMemory) Exists(ctx context.Context, key string) (bool, error) {
	result, err := r.client.Exists(ctx, r.buildKey(key)).Result()
	if err != nil {
		return false, storageErr("exists", key, err)
	}
	return result > 0, nil
}

// buildKey creates a namespaced key
func (r *RedisMemory) buildKey(key string) string {
	return fmt.Sprintf("%s:%s", r.namespace, key)
}

// Close closes the Redis connection
func (r *RedisMemory) Close() error {
	return r.client.Close()
}
