package memory

import (
	"context"
	"time"

	"github.com/kbukum/graphkit/resilience"
)

// RetryingStore retries the retryable failures of a remote store.
type RetryingStore[V any] struct {
	store Store[V]
	cfg   resilience.RetryConfig
}

// WithRetry wraps s so that STORE_FAILED errors are retried with cfg.
func WithRetry[V any](s Store[V], cfg resilience.RetryConfig) *RetryingStore[V] {
	return &RetryingStore[V]{store: s, cfg: cfg}
}

// Unwrap returns the wrapped store.
func (s *RetryingStore[V]) Unwrap() Store[V] { return s.store }

func (s *RetryingStore[V]) Load(ctx context.Context, key string) (*V, error) {
	return resilience.Retry(ctx, s.cfg, func(ctx context.Context) (*V, error) {
		return s.store.Load(ctx, key)
	})
}

func (s *RetryingStore[V]) Save(ctx context.Context, key string, val *V, ttl time.Duration) error {
	return resilience.Do(ctx, s.cfg, func(ctx context.Context) error {
		return s.store.Save(ctx, key, val, ttl)
	})
}

func (s *RetryingStore[V]) Delete(ctx context.Context, key string) error {
	return resilience.Do(ctx, s.cfg, func(ctx context.Context) error {
		return s.store.Delete(ctx, key)
	})
}

func (s *RetryingStore[V]) Close() error { return s.store.Close() }

var _ Store[any] = (*RetryingStore[any])(nil)
