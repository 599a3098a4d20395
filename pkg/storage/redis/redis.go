// Package redis provides a Redis-backed implementation of the KVStore
// interface for multi-instance deployments where engine state must be
// shared across processes.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rahilsk203/islamicai-sub002/pkg/storage"
)

// Config holds configuration for RedisStore.
type Config struct {
	Address  string
	Password string
	DB       int
}

// RedisStore implements storage.KVStore using go-redis. Key expiry maps
// directly onto Redis TTLs.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg *Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, &storage.StorageUnavailableError{Cause: err}
	}
	return &RedisStore{client: client}, nil
}

// Get returns the value for key.
func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", &storage.NotFoundError{Key: key}
	}
	if err != nil {
		return "", &storage.StorageUnavailableError{Cause: err}
	}
	return value, nil
}

// Put stores value under key with an optional ttl.
func (r *RedisStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return &storage.StorageUnavailableError{Cause: err}
	}
	return nil
}

// Delete removes key. Missing keys are ignored.
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return &storage.StorageUnavailableError{Cause: err}
	}
	return nil
}

// Close closes the client connection pool.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
