package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryStore implements Store using ttlcache. Values are stored as JSON so
// both implementations share marshalling behavior.
type MemoryStore struct {
	// mu serializes Get+Delete pairs so GetDelete is atomic per store.
	mu    sync.Mutex
	cache *ttlcache.Cache[string, []byte]
}

// NewMemoryStore creates a new in-memory store with automatic cleanup.
func NewMemoryStore() *MemoryStore {
	cache := ttlcache.New(
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)

	// Start the expired-entry eviction loop.
	go cache.Start()

	return &MemoryStore{cache: cache}
}

// Set implements Store.Set.
func (s *MemoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(key, raw, ttl)

	return nil
}

// Get implements Store.Get.
func (s *MemoryStore) Get(_ context.Context, key string, dest any) error {
	s.mu.Lock()
	item := s.cache.Get(key)
	s.mu.Unlock()

	if item == nil || item.IsExpired() {
		return ErrNotFound
	}

	return json.Unmarshal(item.Value(), dest)
}

// GetDelete implements Store.GetDelete.
func (s *MemoryStore) GetDelete(_ context.Context, key string, dest any) error {
	s.mu.Lock()
	item := s.cache.Get(key)
	if item == nil || item.IsExpired() {
		s.mu.Unlock()
		return ErrNotFound
	}
	raw := item.Value()
	s.cache.Delete(key)
	s.mu.Unlock()

	return json.Unmarshal(raw, dest)
}

// Delete implements Store.Delete.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(key)

	return nil
}

// Close stops the eviction loop.
func (s *MemoryStore) Close() error {
	s.cache.Stop()

	return nil
}
