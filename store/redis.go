package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis-backed Store for production deployments.
//
// Redis does not expose per-key modification times, so Metadata
// carries a zero LastModified; components that need an age fallback
// treat unknown ages conservatively. An optional native TTL can be set
// as a backstop against abandoned keys, but expiry semantics are never
// delegated to it.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds configuration for the Redis store.
type RedisConfig struct {
	URL       string // Redis connection URL (e.g., "redis://localhost:6379")
	KeyPrefix string // Prefix for all keys (default: "kieli:")
	TTL       int    // Backstop TTL in seconds (0 = keys never expire natively)
}

// NewRedisStore creates a Redis store and verifies the connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return NewRedisStoreFromClient(client, cfg.KeyPrefix, cfg.TTL), nil
}

// NewRedisStoreFromClient creates a RedisStore from an existing client.
func NewRedisStoreFromClient(client *redis.Client, keyPrefix string, ttlSeconds int) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "kieli:"
	}

	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = 0
	}

	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Put writes value at path.
func (s *RedisStore) Put(ctx context.Context, path string, value []byte) error {
	return s.client.Set(ctx, s.keyPrefix+path, value, s.ttl).Err()
}

// Get reads the object at path.
func (s *RedisStore) Get(ctx context.Context, path string) ([]byte, Metadata, error) {
	val, err := s.client.Get(ctx, s.keyPrefix+path).Bytes()
	if err == redis.Nil {
		return nil, Metadata{}, ErrNotFound
	}
	if err != nil {
		return nil, Metadata{}, err
	}
	return val, Metadata{Size: int64(len(val))}, nil
}

// Delete removes the object at path.
func (s *RedisStore) Delete(ctx context.Context, path string) error {
	return s.client.Del(ctx, s.keyPrefix+path).Err()
}

// List scans for all paths under prefix.
func (s *RedisStore) List(ctx context.Context, prefix string) ([]string, error) {
	var paths []string

	iter := s.client.Scan(ctx, 0, s.keyPrefix+prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		paths = append(paths, strings.TrimPrefix(iter.Val(), s.keyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	return paths, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping tests the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Verify RedisStore implements Store
var _ Store = (*RedisStore)(nil)
