package traversal

import (
	"context"

	"github.com/kbukum/graphkit/traverser"
)

// StartStep emits injected traversers followed by anything its upstream
// yields. It is usually the first step of a traversal.
type StartStep struct {
	Base
}

// NewStart creates a start step.
func NewStart() *StartStep {
	return &StartStep{Base: NewBase("start")}
}

func (s *StartStep) Next(ctx context.Context) (traverser.Traverser, bool, error) {
	return s.Starts().Poll(ctx)
}

func (s *StartStep) Clone() Step {
	return &StartStep{Base: s.CloneBase()}
}

// MapStep transforms each traverser's value with fn.
type MapStep[I, O any] struct {
	Base
	fn func(context.Context, I) (O, error)
}

// NewMap creates a step applying fn to every value.
func NewMap[I, O any](fn func(context.Context, I) (O, error)) *MapStep[I, O] {
	return &MapStep[I, O]{Base: NewBase("map"), fn: fn}
}

func (s *MapStep[I, O]) Next(ctx context.Context) (traverser.Traverser, bool, error) {
	t, ok, err := s.Starts().Poll(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	in, err := traverser.As[I](t)
	if err != nil {
		return nil, false, err
	}
	out, err := s.fn(ctx, in.Get())
	if err != nil {
		return nil, false, err
	}
	return traverser.Split(in, out, s.ID()), true, nil
}

func (s *MapStep[I, O]) Clone() Step {
	return &MapStep[I, O]{Base: s.CloneBase(), fn: s.fn}
}

// FilterStep keeps traversers whose value satisfies fn.
type FilterStep[T any] struct {
	Base
	fn func(T) bool
}

// NewFilter creates a step dropping values for which fn returns false.
func NewFilter[T any](fn func(T) bool) *FilterStep[T] {
	return &FilterStep[T]{Base: NewBase("filter"), fn: fn}
}

func (s *FilterStep[T]) Next(ctx context.Context) (traverser.Traverser, bool, error) {
	for {
		t, ok, err := s.Starts().Poll(ctx)
		if err != nil || !ok {
			return nil, false, err
		}
		in, err := traverser.As[T](t)
		if err != nil {
			return nil, false, err
		}
		if s.fn(in.Get()) {
			return t, true, nil
		}
	}
}

func (s *FilterStep[T]) Clone() Step {
	return &FilterStep[T]{Base: s.CloneBase(), fn: s.fn}
}

// SideEffectStep calls fn for each value and passes the traverser through
// unchanged. Use for logging, metrics, or mid-traversal publishing.
type SideEffectStep[T any] struct {
	Base
	fn func(context.Context, T) error
}

// NewSideEffect creates a pass-through step calling fn.
func NewSideEffect[T any](fn func(context.Context, T) error) *SideEffectStep[T] {
	return &SideEffectStep[T]{Base: NewBase("sideEffect"), fn: fn}
}

func (s *SideEffectStep[T]) Next(ctx context.Context) (traverser.Traverser, bool, error) {
	t, ok, err := s.Starts().Poll(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	in, err := traverser.As[T](t)
	if err != nil {
		return nil, false, err
	}
	if err := s.fn(ctx, in.Get()); err != nil {
		return nil, false, err
	}
	return t, true, nil
}

func (s *SideEffectStep[T]) Clone() Step {
	return &SideEffectStep[T]{Base: s.CloneBase(), fn: s.fn}
}
