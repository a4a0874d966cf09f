package traversal

import (
	"context"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/traverser"
)

// Collect runs the traversal and returns every traverser it yields.
func Collect(ctx context.Context, t *Traversal) ([]traverser.Traverser, error) {
	var result []traverser.Traverser
	for {
		tr, ok, err := t.Next(ctx)
		if err != nil {
			return result, err
		}
		if !ok {
			return result, nil
		}
		result = append(result, tr)
	}
}

// Values runs the traversal and returns its values as E.
func Values[E any](ctx context.Context, t *Traversal) ([]E, error) {
	ts, err := Collect(ctx, t)
	if err != nil {
		return nil, err
	}
	out := make([]E, 0, len(ts))
	for _, tr := range ts {
		typed, err := traverser.As[E](tr)
		if err != nil {
			return out, err
		}
		out = append(out, typed.Get())
	}
	return out, nil
}

// Iterate drains the traversal for its side effects.
func Iterate(ctx context.Context, t *Traversal) error {
	for {
		_, ok, err := t.Next(ctx)
		if err != nil || !ok {
			return err
		}
	}
}

// Pull returns the next traverser of s, or an EXHAUSTED error when s has
// nothing further to offer.
func Pull(ctx context.Context, s Step) (traverser.Traverser, error) {
	tr, ok, err := s.Next(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Exhausted(s.ID())
	}
	return tr, nil
}
