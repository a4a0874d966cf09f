package computer

import (
	"context"
	"fmt"
)

// Stage is one phase of a distributed map/reduce computation.
type Stage int

const (
	Map Stage = iota
	Combine
	Reduce
)

func (s Stage) String() string {
	switch s {
	case Map:
		return "map"
	case Combine:
		return "combine"
	case Reduce:
		return "reduce"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// KeyValue is a pair emitted by a map, combine or reduce stage.
type KeyValue[K, V any] struct {
	Key   K
	Value V
}

// MapEmitter collects map output.
type MapEmitter[K, V any] interface {
	Emit(key K, value V)
}

// ReduceEmitter collects combine and reduce output.
type ReduceEmitter[K, V any] interface {
	Emit(key K, value V)
}

// MapReduce is a computation run over the vertices of a partitioned graph
// after a vertex program has halted.
//
// Map is called once per vertex. When DoStage(Combine) is true, Combine is
// called per key with the map output of a single partition before the
// shuffle. Reduce is called once per key with every value emitted for that
// key across all partitions, in no particular order. GenerateFinalResult
// turns the reduce output into the result stored under MemoryKey.
type MapReduce[K comparable, V, R any] interface {
	DoStage(stage Stage) bool
	Map(ctx context.Context, v Vertex, emit MapEmitter[K, V]) error
	Combine(ctx context.Context, key K, values []V, emit ReduceEmitter[K, V]) error
	Reduce(ctx context.Context, key K, values []V, emit ReduceEmitter[K, V]) error
	GenerateFinalResult(kvs []KeyValue[K, V]) (R, error)
	MemoryKey() string
}

// collector buffers emitted pairs in emission order.
type collector[K, V any] struct {
	pairs []KeyValue[K, V]
}

func (c *collector[K, V]) Emit(key K, value V) {
	c.pairs = append(c.pairs, KeyValue[K, V]{Key: key, Value: value})
}
