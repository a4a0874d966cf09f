package barrier

import (
	"context"
	"time"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/logger"
	"github.com/kbukum/graphkit/traversal"
	"github.com/kbukum/graphkit/traverser"
)

// ReducingBarrierStep folds every upstream traverser of S into a single
// accumulator and emits its finalized value as one traverser of E with
// bulk 1.
//
// The reducer is configuration and survives Reset and Clone. The run state
// (Fresh or Done) does not. Once bypassed, the step passes upstream
// traversers through unchanged for the rest of its lifetime, clones included.
type ReducingBarrierStep[S, A, E any] struct {
	traversal.Base
	reducer Reducer[S, A, E]
	state   State
	bypass  bool
}

// NewReducingBarrier creates a reducing barrier for r.
func NewReducingBarrier[S, A, E any](r Reducer[S, A, E]) *ReducingBarrierStep[S, A, E] {
	label := r.Name
	if label == "" {
		label = "reducingBarrier"
	}
	return &ReducingBarrierStep[S, A, E]{Base: traversal.NewBase(label), reducer: r}
}

// Reducer returns the step's reducer.
func (s *ReducingBarrierStep[S, A, E]) Reducer() Reducer[S, A, E] {
	return s.reducer
}

// SetReducer replaces the reducer. It fails while the step holds a completed
// reduction; Reset first.
func (s *ReducingBarrierStep[S, A, E]) SetReducer(r Reducer[S, A, E]) error {
	if s.state == Done {
		return errors.Misconfigured(s.ID(), "reducer cannot change after a reduction has completed")
	}
	s.reducer = r
	return nil
}

// Bypass switches the step to pass-through mode. There is no way back.
func (s *ReducingBarrierStep[S, A, E]) Bypass() {
	s.bypass = true
}

func (s *ReducingBarrierStep[S, A, E]) IsBypassed() bool { return s.bypass }
func (s *ReducingBarrierStep[S, A, E]) State() State     { return s.state }
func (s *ReducingBarrierStep[S, A, E]) Done() bool       { return s.state == Done }

// Validate reports a missing seed or fold, or a finalize that cannot
// produce E. A bypassed step never reduces and is always valid.
func (s *ReducingBarrierStep[S, A, E]) Validate() error {
	if s.bypass {
		return nil
	}
	return s.reducer.Validate(s.ID())
}

// Next drains the upstream, folds it and returns the single result. Later
// calls report exhaustion until Reset. In bypass mode it forwards the next
// upstream traverser, including the upstream's own exhaustion.
func (s *ReducingBarrierStep[S, A, E]) Next(ctx context.Context) (traverser.Traverser, bool, error) {
	if s.bypass {
		return s.Starts().Poll(ctx)
	}
	if s.state == Done {
		return nil, false, nil
	}
	if err := s.reducer.Validate(s.ID()); err != nil {
		return nil, false, err
	}

	started := time.Now()
	out, stats, err := s.reducer.reduce(ctx, s.ID(), s.Starts().Poll)
	if err != nil {
		return nil, false, err
	}
	s.state = Done

	s.log().Debug("reduction complete", logger.Fields(
		logger.FieldTraversers, stats.traversers,
		logger.FieldBulk, stats.bulk,
		logger.FieldDuration, time.Since(started).Milliseconds(),
	))
	return traverser.Generate(s.generator(), out, s.ID(), 1), true, nil
}

// Reset clears the run state and any injected starts.
func (s *ReducingBarrierStep[S, A, E]) Reset() {
	s.Base.Reset()
	s.state = Fresh
}

// Clone returns an unwired copy sharing the reducer, with fresh run state
// and the bypass mode of s.
func (s *ReducingBarrierStep[S, A, E]) Clone() traversal.Step {
	return &ReducingBarrierStep[S, A, E]{
		Base:    s.CloneBase(),
		reducer: s.reducer,
		state:   Fresh,
		bypass:  s.bypass,
	}
}

// MapReduce builds the distributed form of this step's reduction. The
// returned value holds only configuration and can be handed to any worker.
func (s *ReducingBarrierStep[S, A, E]) MapReduce(opts ...MapReduceOption) (*MapReduce[S, A, E], error) {
	if err := s.reducer.Validate(s.ID()); err != nil {
		return nil, err
	}
	t := s.Traversal()
	if t == nil {
		return nil, errors.Misconfigured(s.ID(), "step is not part of a traversal")
	}
	mr := &MapReduce[S, A, E]{
		reducer:   s.reducer,
		endStepID: t.EndStep().ID(),
		generator: t.Generator(),
	}
	for _, opt := range opts {
		opt(&mr.options)
	}
	return mr, nil
}

// Locally produced results are generated by the root traversal so nested
// traversals attribute provenance to the top level.
func (s *ReducingBarrierStep[S, A, E]) generator() traverser.Generator {
	if t := s.Traversal(); t != nil {
		return t.Root().Generator()
	}
	return traverser.Generator{}
}

func (s *ReducingBarrierStep[S, A, E]) log() *logger.Logger {
	l := logger.Nop()
	traversalID := ""
	if t := s.Traversal(); t != nil {
		l = t.Logger()
		traversalID = t.ID()
	}
	return l.WithStep(s.ID(), traversalID)
}
