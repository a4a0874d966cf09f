package traverser

import "slices"

// Set is an ordered collection of traversers, used for the halted
// traversers a graph partition holds between supersteps.
type Set struct {
	items []Traverser
}

// NewSet creates a set holding ts.
func NewSet(ts ...Traverser) *Set {
	s := &Set{}
	s.Add(ts...)
	return s
}

// Add appends traversers in order. Nil entries are skipped.
func (s *Set) Add(ts ...Traverser) {
	for _, t := range ts {
		if t != nil {
			s.items = append(s.items, t)
		}
	}
}

// Len returns the number of traversers, not their total bulk.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Bulk returns the summed bulk of all traversers.
func (s *Set) Bulk() int64 {
	if s == nil {
		return 0
	}
	var n int64
	for _, t := range s.items {
		n += t.Bulk()
	}
	return n
}

// Each calls fn for every traverser in insertion order and stops at the
// first error.
func (s *Set) Each(fn func(Traverser) error) error {
	if s == nil {
		return nil
	}
	for _, t := range s.items {
		if err := fn(t); err != nil {
			return err
		}
	}
	return nil
}

// Slice returns a copy of the traversers.
func (s *Set) Slice() []Traverser {
	if s == nil {
		return nil
	}
	return slices.Clone(s.items)
}

// Clear removes every traverser.
func (s *Set) Clear() {
	s.items = nil
}
