package computer

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/kbukum/graphkit/config"
	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/logger"
	"github.com/kbukum/graphkit/memory"
	"github.com/kbukum/graphkit/observability"
)

// Runner executes MapReduce computations over a Graph. Partitions are mapped
// concurrently, up to cfg.Workers at a time, and map output is shuffled into
// cfg.ReduceBuckets buckets that are reduced concurrently.
type Runner struct {
	cfg         config.ComputerConfig
	log         *logger.Logger
	metrics     *observability.Metrics
	serviceName string
	resultTTL   time.Duration
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(l *logger.Logger) RunnerOption {
	return func(r *Runner) { r.log = l }
}

// WithMetrics records stage and reduce metrics. Nil disables them.
func WithMetrics(m *observability.Metrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// WithServiceName sets the service name attached to run spans.
func WithServiceName(name string) RunnerOption {
	return func(r *Runner) { r.serviceName = name }
}

// WithResultTTL expires stored results after ttl. Zero keeps them.
func WithResultTTL(ttl time.Duration) RunnerOption {
	return func(r *Runner) { r.resultTTL = ttl }
}

// NewRunner creates a runner. Unset fields of cfg get their defaults.
func NewRunner(cfg config.ComputerConfig, opts ...RunnerOption) *Runner {
	cfg.ApplyDefaults()
	cfg.Workers = max(cfg.Workers, 1)
	cfg.ReduceBuckets = max(cfg.ReduceBuckets, 1)

	r := &Runner{cfg: cfg, log: logger.Nop(), serviceName: config.DefaultName}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Nop()
	}
	r.log = r.log.WithComponent("computer")
	return r
}

func (r *Runner) Config() config.ComputerConfig { return r.cfg }

// Run executes mr over g: map every vertex, combine per partition when
// enabled, shuffle by key, reduce per key, then turn the reduce output into
// the final result. A non-nil store receives the result under
// mr.MemoryKey().
//
// Map and combine failures are collected across partitions into one
// error; each is a PARTITION_FAILED error wrapping the original.
func Run[K comparable, V, T any](
	ctx context.Context,
	r *Runner,
	g *Graph,
	mr MapReduce[K, V, *T],
	store memory.Store[T],
) (result *T, err error) {
	rc := observability.NewRunContext(r.serviceName, uuid.NewString(), mr.MemoryKey(), r.metrics)
	ctx, span := rc.Start(ctx)
	ctx = logger.ContextWithRunID(ctx, rc.RunID)
	log := r.log.WithContext(ctx).WithFields(logger.Fields(logger.FieldMemoryKey, mr.MemoryKey()))

	defer func() {
		if err != nil {
			code := string(errors.ErrCodeInternal)
			if appErr, ok := errors.AsAppError(err); ok {
				code = string(appErr.Code)
			}
			r.metrics.RecordError(ctx, code, "computer")
			log.Error("map/reduce failed", logger.ErrorFields("run", err))
		}
		rc.End(ctx, span, err)
	}()

	parts := g.Partitions()
	outputs := make([][]KeyValue[K, V], len(parts))

	if mr.DoStage(Map) {
		err = r.stage(ctx, rc, log, Map, len(parts), func(ctx context.Context) error {
			return r.forEachPartition(ctx, Map, parts, func(ctx context.Context, p *Partition) error {
				c := &collector[K, V]{}
				for _, v := range p.Vertices() {
					if err := mr.Map(ctx, v, c); err != nil {
						return err
					}
				}
				outputs[p.index] = c.pairs
				return nil
			})
		})
		if err != nil {
			return nil, err
		}
	}

	if mr.DoStage(Combine) {
		err = r.stage(ctx, rc, log, Combine, len(parts), func(ctx context.Context) error {
			return r.forEachPartition(ctx, Combine, parts, func(ctx context.Context, p *Partition) error {
				groups := group(outputs[p.index])
				c := &collector[K, V]{}
				for _, k := range groups.keys {
					if err := mr.Combine(ctx, k, groups.values[k], c); err != nil {
						return err
					}
				}
				outputs[p.index] = c.pairs
				return nil
			})
		})
		if err != nil {
			return nil, err
		}
	}

	buckets := shuffle(outputs, r.cfg.ReduceBuckets)

	var final []KeyValue[K, V]
	if mr.DoStage(Reduce) {
		err = r.stage(ctx, rc, log, Reduce, len(buckets), func(ctx context.Context) error {
			reduced, err := reduceBuckets(ctx, r, rc, mr, buckets)
			for _, kvs := range reduced {
				final = append(final, kvs...)
			}
			return err
		})
		if err != nil {
			return nil, err
		}
	} else {
		for _, b := range buckets {
			final = append(final, b.pairs()...)
		}
	}

	result, err = mr.GenerateFinalResult(final)
	if err != nil {
		return nil, err
	}
	if store != nil {
		if err = store.Save(ctx, mr.MemoryKey(), result, r.resultTTL); err != nil {
			return nil, err
		}
	}

	log.Info("map/reduce complete", logger.Fields(
		logger.FieldPartition, len(parts),
		"keys", len(final),
		logger.FieldDuration, rc.Duration().Milliseconds(),
	))
	return result, nil
}

// reduceBuckets reduces every bucket concurrently and returns the output
// per bucket, in bucket order.
func reduceBuckets[K comparable, V, R any](
	ctx context.Context,
	r *Runner,
	rc *observability.RunContext,
	mr MapReduce[K, V, R],
	buckets []*bucket[K, V],
) ([][]KeyValue[K, V], error) {
	started := time.Now()
	reduced := make([][]KeyValue[K, V], len(buckets))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.cfg.Workers)

	var values int64
	for i, b := range buckets {
		values += int64(b.size)
		eg.Go(func() error {
			c := &collector[K, V]{}
			for _, k := range b.keys {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := mr.Reduce(gctx, k, b.values[k], c); err != nil {
					return errors.PartitionFailed(Reduce.String(), "bucket-"+strconv.Itoa(i), err)
				}
			}
			reduced[i] = c.pairs
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	rc.Metrics.RecordReduce(ctx, rc.MemoryKey, values, time.Since(started))
	return reduced, nil
}

// stage runs fn inside a stage span and records its outcome.
func (r *Runner) stage(
	ctx context.Context,
	rc *observability.RunContext,
	log *logger.Logger,
	stage Stage,
	units int,
	fn func(context.Context) error,
) error {
	started := time.Now()
	sctx, span := rc.StartStage(ctx, stage.String())
	err := fn(sctx)
	rc.EndStage(sctx, span, stage.String(), started, err)

	fields := logger.StageFields(stage.String(), units, time.Since(started))
	if err != nil {
		fields = logger.MergeWithError(fields, err)
	}
	log.Debug("stage finished", fields)
	return err
}

// forEachPartition calls fn for every partition, at most cfg.Workers at a
// time, and aggregates failures.
func (r *Runner) forEachPartition(
	ctx context.Context,
	stage Stage,
	parts []*Partition,
	fn func(context.Context, *Partition) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sem := semaphore.NewWeighted(int64(r.cfg.Workers))
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		merr *multierror.Error
	)

	for _, p := range parts {
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			merr = multierror.Append(merr, err)
			mu.Unlock()
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			if err := fn(ctx, p); err != nil {
				mu.Lock()
				merr = multierror.Append(merr, errors.PartitionFailed(stage.String(), strconv.Itoa(p.index), err))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return merr.ErrorOrNil()
}

// bucket groups values by key, keeping first-seen key order.
type bucket[K comparable, V any] struct {
	keys   []K
	values map[K][]V
	size   int
}

func newBucket[K comparable, V any]() *bucket[K, V] {
	return &bucket[K, V]{values: make(map[K][]V)}
}

func (b *bucket[K, V]) add(key K, value V) {
	if _, ok := b.values[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.values[key] = append(b.values[key], value)
	b.size++
}

func (b *bucket[K, V]) pairs() []KeyValue[K, V] {
	out := make([]KeyValue[K, V], 0, b.size)
	for _, k := range b.keys {
		for _, v := range b.values[k] {
			out = append(out, KeyValue[K, V]{Key: k, Value: v})
		}
	}
	return out
}

func group[K comparable, V any](pairs []KeyValue[K, V]) *bucket[K, V] {
	b := newBucket[K, V]()
	for _, kv := range pairs {
		b.add(kv.Key, kv.Value)
	}
	return b
}

// shuffle routes every pair to the bucket its key hashes to. Values keep
// partition order, then emission order.
func shuffle[K comparable, V any](outputs [][]KeyValue[K, V], n int) []*bucket[K, V] {
	buckets := make([]*bucket[K, V], n)
	for i := range buckets {
		buckets[i] = newBucket[K, V]()
	}
	for _, pairs := range outputs {
		for _, kv := range pairs {
			buckets[bucketOf(kv.Key, n)].add(kv.Key, kv.Value)
		}
	}
	return buckets
}

func bucketOf[K comparable](key K, n int) int {
	var h uint64
	switch k := any(key).(type) {
	case string:
		h = xxhash.Sum64String(k)
	default:
		h = xxhash.Sum64String(fmt.Sprint(k))
	}
	return int(h % uint64(n))
}
