package memory

import (
	"context"
	"time"
)

// Store persists typed results under string keys. Backends serialize values
// as JSON, so V must round-trip through encoding/json unless the store is
// in-process.
//
// TTL of 0 means no expiration.
type Store[V any] interface {
	// Load retrieves a value. Returns (nil, nil) if the key doesn't exist
	// or has expired.
	Load(ctx context.Context, key string) (*V, error)
	// Save persists a value with optional TTL.
	Save(ctx context.Context, key string, val *V, ttl time.Duration) error
	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend. Stores built on a caller-owned client
	// leave the client open.
	Close() error
}
