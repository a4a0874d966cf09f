package barrier

import (
	"fmt"

	"github.com/kbukum/graphkit/traversal"
)

// State is the run state of a barrier.
type State int

const (
	// Fresh barriers have not produced their output yet.
	Fresh State = iota
	// Done barriers have emitted their single output and are exhausted
	// until Reset.
	Done
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Barrier is a step that drains its whole upstream before yielding. Its
// first pull returns the accumulated output; later pulls report exhaustion
// until Reset.
type Barrier interface {
	traversal.Step
	State() State
	// Done reports whether the output has been produced.
	Done() bool
}

var _ Barrier = (*ReducingBarrierStep[any, any, any])(nil)
