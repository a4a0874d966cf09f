package barrier

import (
	"context"
	"fmt"

	"github.com/kbukum/graphkit/computer"
	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/memory"
	"github.com/kbukum/graphkit/traversal"
	"github.com/kbukum/graphkit/traverser"
)

// MemoryKey is the hidden key under which a distributed reducing barrier
// stores its result.
var MemoryKey = computer.Hide("reducingBarrier")

type mapReduceOptions struct {
	detached bool
}

// MapReduceOption configures the distributed form of a reducing barrier.
type MapReduceOption func(*mapReduceOptions)

// WithDetached makes the map stage emit detached traversers (value, bulk
// and origin only) instead of the halted traversers themselves.
func WithDetached() MapReduceOption {
	return func(o *mapReduceOptions) { o.detached = true }
}

// MapReduce runs a reducing barrier's reduction over graph partitions.
//
// Map emits every halted traverser of a vertex under MemoryKey. Combine is
// skipped. Reduce seeds a fresh accumulator, folds every value for the key
// and emits the finalized result attributed to the traversal's end step.
type MapReduce[S, A, E any] struct {
	reducer   Reducer[S, A, E]
	endStepID string
	generator traverser.Generator
	options   mapReduceOptions
}

var _ computer.MapReduce[string, traverser.Traverser, *traverser.Of[int64]] = (*MapReduce[int64, int64, int64])(nil)

func (m *MapReduce[S, A, E]) DoStage(stage computer.Stage) bool {
	return stage != computer.Combine
}

func (m *MapReduce[S, A, E]) Map(_ context.Context, v computer.Vertex, emit computer.MapEmitter[string, traverser.Traverser]) error {
	halted, ok := computer.HaltedTraversers.Read(v)
	if !ok {
		return nil
	}
	return halted.Each(func(t traverser.Traverser) error {
		if m.options.detached {
			t = traverser.Detach(t)
		}
		emit.Emit(MemoryKey, t)
		return nil
	})
}

func (m *MapReduce[S, A, E]) Combine(context.Context, string, []traverser.Traverser, computer.ReduceEmitter[string, traverser.Traverser]) error {
	return errors.New(errors.ErrCodeInternal, "reducing barrier does not run a combine stage")
}

func (m *MapReduce[S, A, E]) Reduce(ctx context.Context, key string, values []traverser.Traverser, emit computer.ReduceEmitter[string, traverser.Traverser]) error {
	out, _, err := m.reducer.reduce(ctx, m.endStepID, traversal.FromSlice(values).Next)
	if err != nil {
		return err
	}
	emit.Emit(key, traverser.Generate(m.generator, out, m.endStepID, 1))
	return nil
}

// GenerateFinalResult returns the single reduced traverser.
func (m *MapReduce[S, A, E]) GenerateFinalResult(kvs []computer.KeyValue[string, traverser.Traverser]) (*traverser.Of[E], error) {
	if len(kvs) == 0 {
		return nil, errors.NotFound("reduction result", MemoryKey)
	}
	out, ok := kvs[0].Value.(*traverser.Of[E])
	if !ok {
		return nil, errors.Internal(fmt.Errorf("unexpected reduce output %T", kvs[0].Value))
	}
	return out, nil
}

func (m *MapReduce[S, A, E]) MemoryKey() string { return MemoryKey }

// Detached reports whether the map stage emits detached traversers.
func (m *MapReduce[S, A, E]) Detached() bool { return m.options.detached }

// Run executes the reduction over g's halted traversers. A non-nil store
// receives the result under MemoryKey.
func (m *MapReduce[S, A, E]) Run(
	ctx context.Context,
	r *computer.Runner,
	g *computer.Graph,
	store memory.Store[traverser.Of[E]],
) (*traverser.Of[E], error) {
	return computer.Run[string, traverser.Traverser, traverser.Of[E]](ctx, r, g, m, store)
}

// Result reads a stored result back from store. It reports false when no
// result is stored.
func (m *MapReduce[S, A, E]) Result(ctx context.Context, store memory.Store[traverser.Of[E]]) (E, bool, error) {
	var zero E
	out, err := store.Load(ctx, MemoryKey)
	if err != nil || out == nil {
		return zero, false, err
	}
	return out.Get(), true, nil
}
