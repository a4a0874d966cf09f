package computer

import (
	"strings"

	"github.com/kbukum/graphkit/traverser"
)

// HiddenPrefix marks keys that are internal to the engine.
const HiddenPrefix = "~"

// Hide namespaces key so it cannot collide with user-visible keys.
func Hide(key string) string {
	if IsHidden(key) {
		return key
	}
	return HiddenPrefix + key
}

// IsHidden reports whether key is in the hidden namespace.
func IsHidden(key string) bool {
	return strings.HasPrefix(key, HiddenPrefix)
}

// Unhide strips the hidden prefix.
func Unhide(key string) string {
	return strings.TrimPrefix(key, HiddenPrefix)
}

// Vertex is the read view a map stage gets of a graph element.
type Vertex interface {
	ID() string
	Property(key string) (any, bool)
}

// Key is a typed vertex property.
type Key[T any] struct {
	name string
}

// NewKey creates a typed property key.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

func (k Key[T]) Name() string { return k.name }

// Read returns the property value, or false if it is absent or of another type.
func (k Key[T]) Read(v Vertex) (T, bool) {
	raw, ok := v.Property(k.name)
	if !ok {
		var zero T
		return zero, false
	}
	val, ok := raw.(T)
	return val, ok
}

// HaltedTraversers is the slot in which a vertex program leaves the
// traversers that halted on a vertex.
var HaltedTraversers = NewKey[*traverser.Set](Hide("haltedTraversers"))
