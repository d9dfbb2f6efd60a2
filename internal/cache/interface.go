package cache

import (
	"context"
	"time"
)

// Service defines the interface for bounded caching operations.
// Implementations never return an entry older than the TTL it was stored
// with and never hold more than their configured number of entries.
// External packages should use this interface, not the concrete implementations
type Service interface {
	Get(ctx context.Context, key string) (interface{}, error)
	// GetEntry is Get plus the entry's age, for callers applying a stricter TTL
	GetEntry(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// EvictionHook is called with the key of an entry dropped to make room
type EvictionHook func(key string)

// Entry is a cached value and how long ago it was inserted
type Entry struct {
	Value interface{}
	Age   time.Duration
}
