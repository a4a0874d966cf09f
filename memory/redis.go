package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/graphkit/config"
	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/logger"
	"github.com/kbukum/graphkit/observability"
)

// RedisStore keeps JSON-encoded values in Redis so every worker and the
// coordinator see the same results.
type RedisStore[V any] struct {
	client    *goredis.Client
	keyPrefix string
	owned     bool
	closeOnce sync.Once
}

// NewRedisStore creates a store on a caller-owned client. Keys are written
// as keyPrefix+key.
func NewRedisStore[V any](client *goredis.Client, keyPrefix string) *RedisStore[V] {
	return &RedisStore[V]{client: client, keyPrefix: keyPrefix}
}

// DialRedis connects to Redis with cfg and verifies the connection.
func DialRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.StoreFailed("connect", fmt.Errorf("redis %s: %w", cfg.Addr, err))
	}
	log.Info("Redis result store connected", logger.Fields("addr", cfg.Addr, "db", cfg.DB))
	return rdb, nil
}

func (s *RedisStore[V]) fullKey(key string) string {
	return s.keyPrefix + key
}

func (s *RedisStore[V]) Load(ctx context.Context, key string) (*V, error) {
	raw, err := s.client.Get(ctx, s.fullKey(key)).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.StoreFailed("load", fmt.Errorf("key %q: %w", key, err))
	}

	var val V
	if err := json.Unmarshal(raw, &val); err != nil {
		return nil, errors.StoreFailed("decode", fmt.Errorf("key %q: %w", key, err))
	}
	return &val, nil
}

func (s *RedisStore[V]) Save(ctx context.Context, key string, val *V, ttl time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return errors.StoreFailed("encode", fmt.Errorf("key %q: %w", key, err))
	}
	if err := s.client.Set(ctx, s.fullKey(key), data, ttl).Err(); err != nil {
		return errors.StoreFailed("save", fmt.Errorf("key %q: %w", key, err))
	}
	return nil
}

func (s *RedisStore[V]) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.fullKey(key)).Err(); err != nil {
		return errors.StoreFailed("delete", fmt.Errorf("key %q: %w", key, err))
	}
	return nil
}

// Close closes the client only when the store dialed it itself. Safe to
// call multiple times.
func (s *RedisStore[V]) Close() error {
	var err error
	if s.owned {
		s.closeOnce.Do(func() { err = s.client.Close() })
	}
	return err
}

// CheckHealth pings Redis.
func (s *RedisStore[V]) CheckHealth(ctx context.Context) observability.Health {
	start := time.Now()
	h := observability.Health{Name: "redis", Status: observability.HealthStatusUp}
	if err := s.client.Ping(ctx).Err(); err != nil {
		h.Status = observability.HealthStatusDown
		h.Message = err.Error()
	}
	h.Latency = time.Since(start)
	return h
}

var _ Store[any] = (*RedisStore[any])(nil)
