package memory

import (
	"context"
	"time"

	"github.com/kbukum/graphkit/config"
	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/logger"
	"github.com/kbukum/graphkit/resilience"
)

// Open builds the store selected by cfg.Backend. Redis stores retry
// retryable failures per cfg.Retry. The caller closes the store.
func Open[V any](ctx context.Context, cfg config.MemoryConfig, log *logger.Logger) (Store[V], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Get("memory")
	} else {
		log = log.WithComponent("memory")
	}

	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemoryStore[V](), nil
	case config.BackendRedis:
		client, err := DialRedis(ctx, cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		s := NewRedisStore[V](client, cfg.Redis.Prefix)
		s.owned = true
		if cfg.Retry.MaxAttempts <= 1 {
			return s, nil
		}
		return WithRetry[V](s, retryConfig(cfg.Retry, log)), nil
	case config.BackendBolt:
		s, err := OpenBolt[V](cfg.Bolt.Path, cfg.Bolt.Bucket, cfg.Bolt.Timeout)
		if err != nil {
			return nil, err
		}
		log.Info("Bolt result store opened", logger.Fields("path", cfg.Bolt.Path, "bucket", cfg.Bolt.Bucket))
		return s, nil
	default:
		return nil, errors.InvalidInput("memory.backend", "unknown backend "+cfg.Backend)
	}
}

func retryConfig(cfg config.RetryConfig, log *logger.Logger) resilience.RetryConfig {
	rc := resilience.DefaultRetryConfig()
	rc.MaxAttempts = cfg.MaxAttempts
	rc.InitialBackoff = cfg.InitialBackoff
	rc.MaxBackoff = cfg.MaxBackoff
	rc.OnRetry = func(attempt int, err error, backoff time.Duration) {
		log.Warn("Retrying result store call", logger.Fields(
			"attempt", attempt,
			"backoff_ms", backoff.Milliseconds(),
			logger.FieldError, err.Error(),
		))
	}
	return rc
}
