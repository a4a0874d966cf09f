package traversal

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/logger"
	"github.com/kbukum/graphkit/traverser"
)

// Traversal is an ordered chain of steps. Each step pulls from the one
// before it; the end step is the traversal's output.
//
// A traversal may be nested in a parent (for example a branch of a
// repeat or union). Steps that generate new traversers use the root
// traversal's generator so provenance stays consistent across nesting.
type Traversal struct {
	id         string
	parent     *Traversal
	steps      []Step
	trackPaths bool
	log        *logger.Logger
}

// Option configures a Traversal.
type Option func(*Traversal)

// WithID sets the traversal id. By default a UUID is generated.
func WithID(id string) Option {
	return func(t *Traversal) { t.id = id }
}

// WithTrackPaths makes generated traversers record their path.
func WithTrackPaths() Option {
	return func(t *Traversal) { t.trackPaths = true }
}

// WithLogger sets the logger handed to steps.
func WithLogger(l *logger.Logger) Option {
	return func(t *Traversal) { t.log = l }
}

// New creates an empty root traversal.
func New(opts ...Option) *Traversal {
	t := &Traversal{id: uuid.NewString()}
	for _, opt := range opts {
		opt(t)
	}
	if t.log == nil {
		t.log = logger.Nop()
	}
	return t
}

// NewChild creates a traversal nested in parent. Path tracking and the
// logger are inherited unless overridden.
func NewChild(parent *Traversal, opts ...Option) *Traversal {
	t := &Traversal{
		id:         uuid.NewString(),
		parent:     parent,
		trackPaths: parent.trackPaths,
		log:        parent.log,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Traversal) ID() string             { return t.id }
func (t *Traversal) Parent() *Traversal     { return t.parent }
func (t *Traversal) IsRoot() bool           { return t.parent == nil }
func (t *Traversal) Logger() *logger.Logger { return t.log }

// Root walks up the parent chain.
func (t *Traversal) Root() *Traversal {
	r := t
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Generator returns this traversal's traverser-creation policy.
func (t *Traversal) Generator() traverser.Generator {
	return traverser.Generator{TraversalID: t.id, TrackPaths: t.trackPaths}
}

// AddStep appends s, wiring it to the current end step.
func (t *Traversal) AddStep(s Step) *Traversal {
	if end := t.EndStep(); end != nil {
		s.SetPrevious(end)
	}
	s.SetTraversal(t)
	t.steps = append(t.steps, s)
	return t
}

// Steps returns the steps in order.
func (t *Traversal) Steps() []Step {
	out := make([]Step, len(t.steps))
	copy(out, t.steps)
	return out
}

// StartStep returns the first step, or nil for an empty traversal.
func (t *Traversal) StartStep() Step {
	if len(t.steps) == 0 {
		return nil
	}
	return t.steps[0]
}

// EndStep returns the last step, or nil for an empty traversal.
func (t *Traversal) EndStep() Step {
	if len(t.steps) == 0 {
		return nil
	}
	return t.steps[len(t.steps)-1]
}

// AddStarts injects traversers into the start step.
func (t *Traversal) AddStarts(ts ...traverser.Traverser) error {
	start := t.StartStep()
	if start == nil {
		return errors.Misconfigured(t.id, "traversal has no steps")
	}
	start.AddStarts(ts...)
	return nil
}

// Inject generates a bulk-1 traverser per value and adds it to the start step.
func Inject[V any](t *Traversal, values ...V) error {
	start := t.StartStep()
	if start == nil {
		return errors.Misconfigured(t.id, "traversal has no steps")
	}
	g := t.Generator()
	for _, v := range values {
		start.AddStarts(traverser.Generate(g, v, start.ID(), 1))
	}
	return nil
}

// Next pulls from the end step.
func (t *Traversal) Next(ctx context.Context) (traverser.Traverser, bool, error) {
	end := t.EndStep()
	if end == nil {
		return nil, false, nil
	}
	return end.Next(ctx)
}

// Close closes every step and returns the first error.
func (t *Traversal) Close() error {
	var firstErr error
	for _, s := range t.steps {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Reset resets every step so the traversal can be run again.
func (t *Traversal) Reset() {
	for _, s := range t.steps {
		s.Reset()
	}
}

// Clone deep-copies the traversal. Steps are cloned and rewired; the clone
// keeps the id and parent of the original.
func (t *Traversal) Clone() *Traversal {
	c := &Traversal{
		id:         t.id,
		parent:     t.parent,
		trackPaths: t.trackPaths,
		log:        t.log,
	}
	for _, s := range t.steps {
		c.AddStep(s.Clone())
	}
	return c
}

// Validate checks every step that implements Validator and returns the first
// problem found.
func (t *Traversal) Validate() error {
	for i, s := range t.steps {
		v, ok := s.(Validator)
		if !ok {
			continue
		}
		if err := v.Validate(); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, s.ID(), err)
		}
	}
	return nil
}

func (t *Traversal) String() string {
	return fmt.Sprintf("traversal[%s, %d steps]", t.id, len(t.steps))
}
