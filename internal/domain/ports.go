package domain

import (
	"context"
)

// KeyValueStore defines the persistent key-value contract the cache
// layer persists serialized entries through.
// Implementations: internal/infra/kv/bolt.go, internal/infra/kv/memory.go
//
// Every operation may fail; the cache layer treats any failure as a
// miss rather than propagating, because the cache is an optimization
// and not a correctness dependency.
type KeyValueStore interface {
	// GetItem retrieves the value for a key. Returns (nil, nil) if the
	// key is absent.
	GetItem(ctx context.Context, key string) ([]byte, error)

	// SetItem stores a value under a key, replacing any existing value.
	SetItem(ctx context.Context, key string, value []byte) error

	// RemoveItem deletes a key. Removing an absent key is not an error.
	RemoveItem(ctx context.Context, key string) error
}
