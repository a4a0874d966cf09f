package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/observability"
)

// BoltStore keeps JSON-encoded values in a single bbolt bucket. It suits a
// coordinator that must keep results across restarts without a server.
type BoltStore[V any] struct {
	db     *bolt.DB
	bucket []byte
}

// boltEnvelope wraps stored values so TTL survives a restart.
type boltEnvelope struct {
	Value     json.RawMessage `json:"value"`
	ExpiresAt time.Time       `json:"expires_at,omitzero"`
}

// OpenBolt opens (creating if needed) the database at path and ensures the
// bucket exists. timeout bounds the wait for the file lock.
func OpenBolt[V any](path, bucket string, timeout time.Duration) (*BoltStore[V], error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, errors.StoreFailed("open", fmt.Errorf("bolt %s: %w", path, err))
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.StoreFailed("open", fmt.Errorf("bucket %s: %w", bucket, err))
	}
	return &BoltStore[V]{db: db, bucket: []byte(bucket)}, nil
}

func (s *BoltStore[V]) Load(ctx context.Context, key string) (*V, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var env *boltEnvelope
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(s.bucket).Get([]byte(key))
		if raw == nil {
			return nil
		}
		env = &boltEnvelope{}
		return json.Unmarshal(raw, env)
	})
	if err != nil {
		return nil, errors.StoreFailed("load", fmt.Errorf("key %q: %w", key, err))
	}
	if env == nil {
		return nil, nil
	}
	if !env.ExpiresAt.IsZero() && time.Now().After(env.ExpiresAt) {
		return nil, s.Delete(ctx, key)
	}

	var val V
	if err := json.Unmarshal(env.Value, &val); err != nil {
		return nil, errors.StoreFailed("decode", fmt.Errorf("key %q: %w", key, err))
	}
	return &val, nil
}

func (s *BoltStore[V]) Save(ctx context.Context, key string, val *V, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(val)
	if err != nil {
		return errors.StoreFailed("encode", fmt.Errorf("key %q: %w", key, err))
	}
	env := boltEnvelope{Value: data}
	if ttl > 0 {
		env.ExpiresAt = time.Now().Add(ttl)
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return errors.StoreFailed("encode", fmt.Errorf("key %q: %w", key, err))
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), raw)
	})
	if err != nil {
		return errors.StoreFailed("save", fmt.Errorf("key %q: %w", key, err))
	}
	return nil
}

func (s *BoltStore[V]) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
	if err != nil {
		return errors.StoreFailed("delete", fmt.Errorf("key %q: %w", key, err))
	}
	return nil
}

func (s *BoltStore[V]) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *BoltStore[V]) Path() string { return s.db.Path() }

// CheckHealth runs a read transaction against the bucket.
func (s *BoltStore[V]) CheckHealth(context.Context) observability.Health {
	start := time.Now()
	h := observability.Health{
		Name:    "bolt",
		Status:  observability.HealthStatusUp,
		Details: map[string]string{"path": s.db.Path()},
	}
	err := s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(s.bucket) == nil {
			return fmt.Errorf("bucket %s missing", s.bucket)
		}
		return nil
	})
	if err != nil {
		h.Status = observability.HealthStatusDown
		h.Message = err.Error()
	}
	h.Latency = time.Since(start)
	return h
}

var _ Store[any] = (*BoltStore[any])(nil)
