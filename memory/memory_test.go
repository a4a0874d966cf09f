package memory

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/graphkit/config"
	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/logger"
	"github.com/kbukum/graphkit/observability"
	"github.com/kbukum/graphkit/resilience"
)

type result struct {
	Sum  int      `json:"sum"`
	Tags []string `json:"tags"`
}

// storeContract runs the behavior every backend shares.
func storeContract(t *testing.T, store Store[result]) {
	t.Helper()
	ctx := context.Background()

	t.Run("load missing", func(t *testing.T) {
		got, err := store.Load(ctx, "missing")
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("save and load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "k1", &result{Sum: 10, Tags: []string{"a"}}, 0))
		got, err := store.Load(ctx, "k1")
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, 10, got.Sum)
		require.Equal(t, []string{"a"}, got.Tags)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "k2", &result{Sum: 1}, 0))
		require.NoError(t, store.Save(ctx, "k2", &result{Sum: 2}, 0))
		got, err := store.Load(ctx, "k2")
		require.NoError(t, err)
		require.Equal(t, 2, got.Sum)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "k3", &result{Sum: 3}, 0))
		require.NoError(t, store.Delete(ctx, "k3"))
		got, err := store.Load(ctx, "k3")
		require.NoError(t, err)
		require.Nil(t, got)
		require.NoError(t, store.Delete(ctx, "k3"))
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore[result]()
	storeContract(t, store)
	require.NoError(t, store.Close())
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	store := NewMemoryStore[int]()
	ctx := context.Background()

	v := 42
	require.NoError(t, store.Save(ctx, "short", &v, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	got, err := store.Load(ctx, "short")
	require.NoError(t, err)
	require.Nil(t, got)
	require.Equal(t, 0, store.Len())
}

func TestMemoryStore_Health(t *testing.T) {
	h := NewMemoryStore[int]().CheckHealth(context.Background())
	require.Equal(t, observability.HealthStatusUp, h.Status)
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mini := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mini, client
}

func TestRedisStore(t *testing.T) {
	_, client := newMiniredis(t)
	store := NewRedisStore[result](client, "test:")
	storeContract(t, store)

	// Caller-owned clients stay open.
	require.NoError(t, store.Close())
	require.NoError(t, client.Ping(context.Background()).Err())
}

func TestRedisStore_KeyPrefixAndTTL(t *testing.T) {
	mini, client := newMiniredis(t)
	store := NewRedisStore[result](client, "graphkit:")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "~reducingBarrier", &result{Sum: 7}, time.Minute))
	require.True(t, mini.Exists("graphkit:~reducingBarrier"))
	require.Equal(t, time.Minute, mini.TTL("graphkit:~reducingBarrier"))

	mini.FastForward(2 * time.Minute)
	got, err := store.Load(ctx, "~reducingBarrier")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	mini, client := newMiniredis(t)
	store := NewRedisStore[result](client, "")
	require.NoError(t, mini.Set("bad", "{not json"))

	_, err := store.Load(context.Background(), "bad")
	require.True(t, errors.HasCode(err, errors.ErrCodeStoreFailed))
}

func TestRedisStore_Health(t *testing.T) {
	mini, client := newMiniredis(t)
	store := NewRedisStore[result](client, "")
	ctx := context.Background()

	require.Equal(t, observability.HealthStatusUp, store.CheckHealth(ctx).Status)

	mini.Close()
	h := store.CheckHealth(ctx)
	require.Equal(t, observability.HealthStatusDown, h.Status)
	require.NotEmpty(t, h.Message)
}

func newBolt(t *testing.T) *BoltStore[result] {
	t.Helper()
	store, err := OpenBolt[result](filepath.Join(t.TempDir(), "results.db"), "results", time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBoltStore(t *testing.T) {
	storeContract(t, newBolt(t))
}

func TestBoltStore_TTLExpiry(t *testing.T) {
	store := newBolt(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "short", &result{Sum: 1}, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	got, err := store.Load(ctx, "short")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestBoltStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	ctx := context.Background()

	store, err := OpenBolt[result](path, "results", time.Second)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "k", &result{Sum: 99}, 0))
	require.NoError(t, store.Close())

	reopened, err := OpenBolt[result](path, "results", time.Second)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, 99, got.Sum)
}

func TestBoltStore_CanceledContext(t *testing.T) {
	store := newBolt(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, store.Save(ctx, "k", &result{}, 0), context.Canceled)
}

func TestBoltStore_Health(t *testing.T) {
	store := newBolt(t)
	h := store.CheckHealth(context.Background())
	require.Equal(t, observability.HealthStatusUp, h.Status)
	require.Equal(t, store.Path(), h.Details["path"])
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	log := logger.Nop()

	t.Run("memory by default", func(t *testing.T) {
		store, err := Open[result](ctx, config.MemoryConfig{}, log)
		require.NoError(t, err)
		require.IsType(t, &MemoryStore[result]{}, store)
	})

	t.Run("redis", func(t *testing.T) {
		mini := miniredis.RunT(t)
		store, err := Open[result](ctx, config.MemoryConfig{
			Backend: config.BackendRedis,
			Redis:   config.RedisConfig{Addr: mini.Addr()},
		}, log)
		require.NoError(t, err)
		defer store.Close()
		require.IsType(t, &RetryingStore[result]{}, store)

		require.NoError(t, store.Save(ctx, "k", &result{Sum: 5}, 0))
		require.True(t, mini.Exists("graphkit:k"))
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mini := miniredis.RunT(t)
		addr := mini.Addr()
		mini.Close()

		_, err := Open[result](ctx, config.MemoryConfig{
			Backend: config.BackendRedis,
			Redis:   config.RedisConfig{Addr: addr},
		}, log)
		require.True(t, errors.HasCode(err, errors.ErrCodeStoreFailed))
	})

	t.Run("bolt", func(t *testing.T) {
		store, err := Open[result](ctx, config.MemoryConfig{
			Backend: config.BackendBolt,
			Bolt:    config.BoltConfig{Path: filepath.Join(t.TempDir(), "r.db")},
		}, log)
		require.NoError(t, err)
		defer store.Close()
		require.IsType(t, &BoltStore[result]{}, store)
	})

	t.Run("invalid backend", func(t *testing.T) {
		_, err := Open[result](ctx, config.MemoryConfig{Backend: "etcd"}, log)
		require.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
	})

	t.Run("redis without addr", func(t *testing.T) {
		_, err := Open[result](ctx, config.MemoryConfig{Backend: config.BackendRedis}, nil)
		require.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
	})
}

// flakyStore fails the first failures calls of every operation with err.
type flakyStore struct {
	*MemoryStore[result]
	failures int
	calls    int
	err      error
}

func (f *flakyStore) Save(ctx context.Context, key string, val *result, ttl time.Duration) error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return f.MemoryStore.Save(ctx, key, val, ttl)
}

func TestRetryingStore(t *testing.T) {
	ctx := context.Background()
	cfg := resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond}

	t.Run("retries store failures", func(t *testing.T) {
		flaky := &flakyStore{
			MemoryStore: NewMemoryStore[result](),
			failures:    2,
			err:         errors.StoreFailed("save", stderrors.New("connection reset")),
		}
		store := WithRetry[result](flaky, cfg)
		require.NoError(t, store.Save(ctx, "k", &result{Sum: 1}, 0))
		require.Equal(t, 3, flaky.calls)

		got, err := store.Load(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, 1, got.Sum)
		require.Same(t, Store[result](flaky), store.Unwrap())
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		flaky := &flakyStore{
			MemoryStore: NewMemoryStore[result](),
			failures:    10,
			err:         errors.StoreFailed("save", stderrors.New("down")),
		}
		err := WithRetry[result](flaky, cfg).Save(ctx, "k", &result{}, 0)
		require.True(t, errors.HasCode(err, errors.ErrCodeStoreFailed))
		require.Equal(t, 3, flaky.calls)
	})

	t.Run("permanent errors are not retried", func(t *testing.T) {
		flaky := &flakyStore{
			MemoryStore: NewMemoryStore[result](),
			failures:    10,
			err:         errors.InvalidInput("key", "bad"),
		}
		err := WithRetry[result](flaky, cfg).Save(ctx, "k", &result{}, 0)
		require.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
		require.Equal(t, 1, flaky.calls)
	})
}
