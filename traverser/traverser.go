package traverser

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/kbukum/graphkit/errors"
)

// Traverser is a unit of flow through a traversal: a value, its
// multiplicity and where it came from. Steps exchange traversers through
// this interface so pass-through steps never need the value type.
type Traverser interface {
	ID() uuid.UUID
	Value() any
	// Bulk is the number of identical traversers this one stands for.
	Bulk() int64
	// StepID is the id of the step that produced the traverser.
	StepID() string
	// Origin is the id of the traversal whose generator created it.
	Origin() string
	// Path holds the values visited so far, or nil when paths are not tracked.
	Path() []any
}

// Of is the concrete traverser carrying a value of type V. It is immutable:
// every derivation returns a new traverser.
type Of[V any] struct {
	id     uuid.UUID
	value  V
	bulk   int64
	step   string
	origin string
	path   []any
}

var _ Traverser = (*Of[any])(nil)

func (t *Of[V]) ID() uuid.UUID  { return t.id }
func (t *Of[V]) Value() any     { return t.value }
func (t *Of[V]) Get() V         { return t.value }
func (t *Of[V]) Bulk() int64    { return t.bulk }
func (t *Of[V]) StepID() string { return t.step }
func (t *Of[V]) Origin() string { return t.origin }

func (t *Of[V]) Path() []any {
	if t.path == nil {
		return nil
	}
	return slices.Clone(t.path)
}

// WithBulk returns a copy of t with bulk n. Values below one are raised to one.
func (t *Of[V]) WithBulk(n int64) *Of[V] {
	c := *t
	c.bulk = normalizeBulk(n)
	return &c
}

func (t *Of[V]) String() string {
	if t.bulk == 1 {
		return fmt.Sprintf("%v", t.value)
	}
	return fmt.Sprintf("%v x%d", t.value, t.bulk)
}

func (t *Of[V]) detach() Traverser {
	return &Of[V]{id: t.id, value: t.value, bulk: t.bulk, origin: t.origin}
}

// Generator is the traverser-creation policy of a traversal.
type Generator struct {
	TraversalID string `json:"traversal_id"`
	TrackPaths  bool   `json:"track_paths"`
}

// Generate creates a fresh traverser produced by stepID.
func Generate[V any](g Generator, value V, stepID string, bulk int64) *Of[V] {
	t := &Of[V]{
		id:     uuid.New(),
		value:  value,
		bulk:   normalizeBulk(bulk),
		step:   stepID,
		origin: g.TraversalID,
	}
	if g.TrackPaths {
		t.path = []any{value}
	}
	return t
}

// Split derives a traverser for value from parent. Bulk and origin are
// inherited; the path is extended when the parent tracks one.
func Split[V any](parent Traverser, value V, stepID string) *Of[V] {
	t := &Of[V]{
		id:     uuid.New(),
		value:  value,
		bulk:   parent.Bulk(),
		step:   stepID,
		origin: parent.Origin(),
	}
	if p := parent.Path(); p != nil {
		t.path = append(p, value)
	}
	return t
}

// Detach strips step attribution and path from t, keeping id, value, bulk
// and origin. Traversers of unknown implementations are returned as is.
func Detach(t Traverser) Traverser {
	if d, ok := t.(interface{ detach() Traverser }); ok {
		return d.detach()
	}
	return t
}

// As returns t as a traverser of V. A traverser of another concrete type is
// rewrapped when its value has type V; otherwise the step that consumes it
// is misconfigured.
func As[V any](t Traverser) (*Of[V], error) {
	if typed, ok := t.(*Of[V]); ok {
		return typed, nil
	}
	v, ok := t.Value().(V)
	if !ok {
		var zero V
		return nil, errors.Misconfigured(t.StepID(),
			fmt.Sprintf("expected traverser of %T, got value %T", zero, t.Value()))
	}
	return &Of[V]{
		id:     t.ID(),
		value:  v,
		bulk:   t.Bulk(),
		step:   t.StepID(),
		origin: t.Origin(),
		path:   t.Path(),
	}, nil
}

func normalizeBulk(n int64) int64 {
	if n < 1 {
		return 1
	}
	return n
}

// wireOf is the JSON form of Of.
type wireOf[V any] struct {
	ID     uuid.UUID `json:"id"`
	Value  V         `json:"value"`
	Bulk   int64     `json:"bulk"`
	Step   string    `json:"step,omitempty"`
	Origin string    `json:"origin,omitempty"`
	Path   []any     `json:"path,omitempty"`
}

// MarshalJSON encodes the traverser for result stores.
func (t *Of[V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireOf[V]{
		ID:     t.id,
		Value:  t.value,
		Bulk:   t.bulk,
		Step:   t.step,
		Origin: t.origin,
		Path:   t.path,
	})
}

// UnmarshalJSON decodes a traverser written by MarshalJSON.
func (t *Of[V]) UnmarshalJSON(data []byte) error {
	var w wireOf[V]
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*t = Of[V]{
		id:     w.ID,
		value:  w.Value,
		bulk:   normalizeBulk(w.Bulk),
		step:   w.Step,
		origin: w.Origin,
		path:   w.Path,
	}
	return nil
}
