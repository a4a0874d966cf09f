package barrier

import (
	"context"
	"fmt"
	"reflect"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/traverser"
)

// FinalGetter is implemented by accumulators whose visible result differs
// from their running form.
type FinalGetter[E any] interface {
	FinalGet() E
}

// Reducer folds traversers of S into an accumulator A and exposes the
// result as E.
//
// Fold must be associative and order-insensitive for results to be defined
// when the reduction runs distributed. Seed is called once per reduction and
// must return a fresh accumulator. When Finalize is nil the accumulator is
// finalized through FinalGetter[E] if it implements it, or used as is.
type Reducer[S, A, E any] struct {
	// Name labels steps built from this reducer.
	Name     string
	Seed     func() A
	Fold     func(A, *traverser.Of[S]) (A, error)
	Finalize func(A) E
}

// OnValue adapts a value-level function to a traverser fold. Bulk is ignored.
func OnValue[S, A any](fn func(A, S) A) func(A, *traverser.Of[S]) (A, error) {
	return func(acc A, t *traverser.Of[S]) (A, error) {
		return fn(acc, t.Get()), nil
	}
}

// Validate reports a MISCONFIGURED error naming stepID when the reducer
// cannot run.
func (r Reducer[S, A, E]) Validate(stepID string) error {
	if r.Seed == nil {
		return errors.Misconfigured(stepID, "seed factory is not set")
	}
	if r.Fold == nil {
		return errors.Misconfigured(stepID, "reducing function is not set")
	}
	if r.Finalize == nil && !finalizable[A, E]() {
		return errors.Misconfigured(stepID, fmt.Sprintf("accumulator %s cannot be finalized into %s",
			reflect.TypeFor[A](), reflect.TypeFor[E]()))
	}
	return nil
}

func finalizable[A, E any]() bool {
	a := reflect.TypeFor[A]()
	if a.Kind() == reflect.Interface {
		// Decided by the dynamic type at finalize time.
		return true
	}
	return a.Implements(reflect.TypeFor[FinalGetter[E]]()) || a.AssignableTo(reflect.TypeFor[E]())
}

func (r Reducer[S, A, E]) finalize(stepID string, acc A) (E, error) {
	if r.Finalize != nil {
		return r.Finalize(acc), nil
	}
	if fg, ok := any(acc).(FinalGetter[E]); ok {
		return fg.FinalGet(), nil
	}
	if e, ok := any(acc).(E); ok {
		return e, nil
	}
	var zero E
	if any(acc) == nil {
		return zero, nil
	}
	return zero, errors.Misconfigured(stepID, fmt.Sprintf("cannot finalize accumulator of type %T", acc))
}

type foldStats struct {
	traversers int
	bulk       int64
}

// reduce is the one fold used by both the local step and the distributed
// reduce stage: seed, fold everything next yields, finalize.
func (r Reducer[S, A, E]) reduce(
	ctx context.Context,
	stepID string,
	next func(context.Context) (traverser.Traverser, bool, error),
) (E, foldStats, error) {
	var (
		zero  E
		stats foldStats
	)
	acc := r.Seed()
	for {
		t, ok, err := next(ctx)
		if err != nil {
			return zero, stats, err
		}
		if !ok {
			break
		}
		typed, err := traverser.As[S](t)
		if err != nil {
			return zero, stats, errors.Misconfigured(stepID, "upstream traverser has the wrong type").WithCause(err)
		}
		if acc, err = r.Fold(acc, typed); err != nil {
			return zero, stats, errors.ReduceFailed(stepID, err)
		}
		stats.traversers++
		stats.bulk += t.Bulk()
	}
	out, err := r.finalize(stepID, acc)
	return out, stats, err
}
