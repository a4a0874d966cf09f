package traversal

import (
	"context"

	"github.com/google/uuid"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/traverser"
)

// Step is a stage of a traversal. It pulls traversers from its upstream and
// yields traversers downstream through Next.
//
// A step instance belongs to exactly one traversal execution and is not safe
// for concurrent use; branches run on clones.
type Step interface {
	Iterator[traverser.Traverser]

	ID() string
	Traversal() *Traversal
	SetTraversal(t *Traversal)
	// SetPrevious wires the upstream the step pulls from.
	SetPrevious(prev Iterator[traverser.Traverser])
	// AddStarts injects traversers ahead of the upstream.
	AddStarts(ts ...traverser.Traverser)
	// Reset clears run state so the step can run again. Configuration is kept.
	Reset()
	// Clone returns an unwired copy with fresh run state and the same id.
	Clone() Step
}

// Validator is implemented by steps that can detect misconfiguration before
// a traversal runs.
type Validator interface {
	Validate() error
}

// Base carries the bookkeeping every step shares. Embed it and implement
// Next, Clone and, if the step has run state, Reset.
type Base struct {
	id        string
	traversal *Traversal
	starts    *Starts
}

// NewBase creates a step base with an id derived from label.
func NewBase(label string) Base {
	id := label + "-" + uuid.NewString()[:8]
	return Base{id: id, starts: newStarts(id)}
}

func (b *Base) ID() string { return b.id }

// SetID overrides the generated step id.
func (b *Base) SetID(id string) {
	b.id = id
	b.starts.stepID = id
}

func (b *Base) Traversal() *Traversal     { return b.traversal }
func (b *Base) SetTraversal(t *Traversal) { b.traversal = t }

func (b *Base) SetPrevious(prev Iterator[traverser.Traverser]) {
	b.starts.previous = prev
}

func (b *Base) AddStarts(ts ...traverser.Traverser) {
	b.starts.Add(ts...)
}

// Starts returns the step's upstream.
func (b *Base) Starts() *Starts { return b.starts }

func (b *Base) Reset() { b.starts.Reset() }

func (b *Base) Close() error { return nil }

// CloneBase returns a copy of b detached from any traversal and upstream.
func (b *Base) CloneBase() Base {
	return Base{id: b.id, starts: newStarts(b.id)}
}

// Starts is the upstream of a step: traversers injected with Add are served
// first, then the previous step.
type Starts struct {
	stepID   string
	previous Iterator[traverser.Traverser]
	queue    []traverser.Traverser
	peeked   traverser.Traverser
}

func newStarts(stepID string) *Starts {
	return &Starts{stepID: stepID}
}

// Add injects traversers.
func (s *Starts) Add(ts ...traverser.Traverser) {
	for _, t := range ts {
		if t != nil {
			s.queue = append(s.queue, t)
		}
	}
}

// Poll returns the next upstream traverser in tri-state form.
func (s *Starts) Poll(ctx context.Context) (traverser.Traverser, bool, error) {
	if s.peeked != nil {
		t := s.peeked
		s.peeked = nil
		return t, true, nil
	}
	if len(s.queue) > 0 {
		t := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		return t, true, nil
	}
	if s.previous == nil {
		return nil, false, nil
	}
	return s.previous.Next(ctx)
}

// HasNext reports whether another traverser is available. It pulls at most
// one traverser from upstream and buffers it for the next call to Poll or Next.
func (s *Starts) HasNext(ctx context.Context) (bool, error) {
	if s.peeked != nil {
		return true, nil
	}
	t, ok, err := s.Poll(ctx)
	if err != nil || !ok {
		return false, err
	}
	s.peeked = t
	return true, nil
}

// Next returns the next upstream traverser or an EXHAUSTED error.
func (s *Starts) Next(ctx context.Context) (traverser.Traverser, error) {
	t, ok, err := s.Poll(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Exhausted(s.stepID)
	}
	return t, nil
}

// Reset drops injected and buffered traversers. The previous-step wiring stays.
func (s *Starts) Reset() {
	s.queue = nil
	s.peeked = nil
}
