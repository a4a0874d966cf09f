package memory

import (
	"context"
	"sync"
	"time"

	"github.com/kbukum/graphkit/observability"
)

// MemoryStore is an in-process Store. Values are held by pointer and never
// serialized. TTL is enforced on Load.
type MemoryStore[V any] struct {
	mu    sync.RWMutex
	items map[string]memEntry[V]
}

type memEntry[V any] struct {
	val       *V
	expiresAt time.Time // zero means no expiration
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore[V any]() *MemoryStore[V] {
	return &MemoryStore[V]{
		items: make(map[string]memEntry[V]),
	}
}

func (s *MemoryStore[V]) Load(_ context.Context, key string) (*V, error) {
	s.mu.RLock()
	entry, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return nil, nil
	}
	return entry.val, nil
}

func (s *MemoryStore[V]) Save(_ context.Context, key string, val *V, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memEntry[V]{val: val}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	s.items[key] = entry
	return nil
}

func (s *MemoryStore[V]) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

func (s *MemoryStore[V]) Close() error { return nil }

// Len returns the number of entries, including expired ones not yet
// evicted by a Load.
func (s *MemoryStore[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// CheckHealth always reports up.
func (s *MemoryStore[V]) CheckHealth(context.Context) observability.Health {
	return observability.Health{Name: "memory", Status: observability.HealthStatusUp}
}

var _ Store[any] = (*MemoryStore[any])(nil)
