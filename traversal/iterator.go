package traversal

import (
	"context"

	"github.com/kbukum/graphkit/traverser"
)

// Iterator provides pull-based sequential access to a stream of values.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// FromSlice returns an iterator over items. It is the usual upstream for a
// step fed from memory.
func FromSlice[T any](items []T) Iterator[T] {
	return &sliceIter[T]{items: items}
}

// FromValues generates one traverser per value with bulk 1, attributed to
// stepID.
func FromValues[V any](g traverser.Generator, stepID string, values ...V) Iterator[traverser.Traverser] {
	ts := make([]traverser.Traverser, len(values))
	for i, v := range values {
		ts[i] = traverser.Generate(g, v, stepID, 1)
	}
	return FromSlice(ts)
}

type sliceIter[T any] struct {
	items []T
	index int
}

func (it *sliceIter[T]) Next(_ context.Context) (T, bool, error) {
	if it.index >= len(it.items) {
		var zero T
		return zero, false, nil
	}
	v := it.items[it.index]
	it.index++
	return v, true, nil
}

func (it *sliceIter[T]) Close() error { return nil }
