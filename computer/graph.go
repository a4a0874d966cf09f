package computer

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/kbukum/graphkit/traverser"
)

// MemoryVertex is an in-memory vertex with a mutable property map.
type MemoryVertex struct {
	id    string
	mu    sync.RWMutex
	props map[string]any
}

// NewMemoryVertex creates a vertex with no properties.
func NewMemoryVertex(id string) *MemoryVertex {
	return &MemoryVertex{id: id, props: make(map[string]any)}
}

func (v *MemoryVertex) ID() string { return v.id }

func (v *MemoryVertex) Property(key string) (any, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	val, ok := v.props[key]
	return val, ok
}

// SetProperty sets or replaces a property.
func (v *MemoryVertex) SetProperty(key string, value any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.props[key] = value
}

// Halt adds traversers to the vertex's halted set.
func (v *MemoryVertex) Halt(ts ...traverser.Traverser) {
	v.mu.Lock()
	defer v.mu.Unlock()
	set, _ := v.props[HaltedTraversers.Name()].(*traverser.Set)
	if set == nil {
		set = traverser.NewSet()
		v.props[HaltedTraversers.Name()] = set
	}
	set.Add(ts...)
}

// Partition is the slice of a graph one worker maps.
type Partition struct {
	index    int
	vertices []*MemoryVertex
}

func (p *Partition) Index() int { return p.index }
func (p *Partition) Len() int   { return len(p.vertices) }

// Vertices returns the partition's vertices in insertion order.
func (p *Partition) Vertices() []*MemoryVertex {
	return append([]*MemoryVertex(nil), p.vertices...)
}

// Graph is an in-memory graph split into a fixed number of partitions.
// Vertices are assigned to partitions by hashing their id.
type Graph struct {
	mu         sync.RWMutex
	partitions []*Partition
	byID       map[string]*MemoryVertex
	order      []*MemoryVertex
}

// NewGraph creates an empty graph with n partitions. n below 1 means 1.
func NewGraph(n int) *Graph {
	if n < 1 {
		n = 1
	}
	g := &Graph{
		partitions: make([]*Partition, n),
		byID:       make(map[string]*MemoryVertex),
	}
	for i := range g.partitions {
		g.partitions[i] = &Partition{index: i}
	}
	return g
}

// AddVertex returns the vertex with id, creating it in its hash partition
// if needed.
func (g *Graph) AddVertex(id string) *MemoryVertex {
	return g.addVertex(id, int(xxhash.Sum64String(id)%uint64(len(g.partitions))))
}

// AddVertexTo returns the vertex with id, creating it in partition index if
// needed. It lets callers control placement; index is taken modulo the
// partition count.
func (g *Graph) AddVertexTo(index int, id string) *MemoryVertex {
	n := len(g.partitions)
	return g.addVertex(id, ((index%n)+n)%n)
}

func (g *Graph) addVertex(id string, index int) *MemoryVertex {
	g.mu.Lock()
	defer g.mu.Unlock()
	if v, ok := g.byID[id]; ok {
		return v
	}
	v := NewMemoryVertex(id)
	g.byID[id] = v
	g.order = append(g.order, v)
	p := g.partitions[index]
	p.vertices = append(p.vertices, v)
	return v
}

// Vertex looks up a vertex by id.
func (g *Graph) Vertex(id string) (*MemoryVertex, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.byID[id]
	return v, ok
}

// Vertices returns every vertex in insertion order.
func (g *Graph) Vertices() []*MemoryVertex {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]*MemoryVertex(nil), g.order...)
}

func (g *Graph) Partitions() []*Partition { return g.partitions }
func (g *Graph) NumPartitions() int       { return len(g.partitions) }
