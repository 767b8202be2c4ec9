package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a key is absent or already expired.
	ErrNotFound = errors.New("entry not found")
	// ErrUnavailable is returned when the backing medium cannot be reached.
	// Callers must treat it as "not found" for authorization purposes: the
	// store fails closed, never open.
	ErrUnavailable = errors.New("store unavailable")
)

// Store is an expiring key-value store. Every piece of durable state in the
// bridge (authorization codes, access tokens, checkout sessions) flows
// through it; concurrency discipline is pushed down to the backing medium,
// which must provide at least per-key atomicity.
type Store interface {
	// Set stores value under key, overwriting any existing entry, with
	// automatic expiry after ttl elapses.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Get unmarshals the entry under key into dest, or returns ErrNotFound.
	Get(ctx context.Context, key string, dest any) error
	// GetDelete atomically retrieves and removes the entry under key.
	// Concurrent calls for the same key observe the entry at most once;
	// this is what makes authorization codes single-use.
	GetDelete(ctx context.Context, key string, dest any) error
	// Delete removes the entry under key. Deleting an absent key is not an
	// error.
	Delete(ctx context.Context, key string) error
}
