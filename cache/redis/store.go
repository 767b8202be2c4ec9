package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Redemptive-Software/woocommerce-ucp/cache"
)

// Store implements cache.Store on Redis. Key expiry is delegated to Redis
// TTLs and GetDelete maps to GETDEL, so per-key atomicity comes for free.
type Store struct {
	client *redis.Client
	prefix string // Optional prefix for keys
}

// NewStore creates a new Redis-backed [cache.Store].
func NewStore(client *redis.Client, prefix string) *Store {
	return &Store{
		client: client,
		prefix: prefix,
	}
}

func (r *Store) redisKey(key string) string {
	if r.prefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", r.prefix, key)
}

// Set implements cache.Store.Set.
func (r *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	if err := r.client.Set(ctx, r.redisKey(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %w", cache.ErrUnavailable, err)
	}

	return nil
}

// Get implements cache.Store.Get.
func (r *Store) Get(ctx context.Context, key string, dest any) error {
	raw, err := r.client.Get(ctx, r.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return cache.ErrNotFound
		}
		return fmt.Errorf("%w: %w", cache.ErrUnavailable, err)
	}

	return json.Unmarshal(raw, dest)
}

// GetDelete implements cache.Store.GetDelete.
func (r *Store) GetDelete(ctx context.Context, key string, dest any) error {
	raw, err := r.client.GetDel(ctx, r.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return cache.ErrNotFound
		}
		return fmt.Errorf("%w: %w", cache.ErrUnavailable, err)
	}

	return json.Unmarshal(raw, dest)
}

// Delete implements cache.Store.Delete.
func (r *Store) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("%w: %w", cache.ErrUnavailable, err)
	}

	return nil
}
