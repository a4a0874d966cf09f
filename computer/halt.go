package computer

import (
	"context"

	"github.com/cespare/xxhash/v2"

	"github.com/kbukum/graphkit/errors"
	"github.com/kbukum/graphkit/traversal"
)

// HaltAll drains t and halts every traverser it yields on a vertex of g,
// picked by hashing the traverser id. It stands in for a vertex program
// whose traversers all finish on the graph, and returns how many halted.
func HaltAll(ctx context.Context, g *Graph, t *traversal.Traversal) (int, error) {
	vertices := g.Vertices()
	if len(vertices) == 0 {
		return 0, errors.InvalidInput("graph", "has no vertices to halt traversers on")
	}

	halted := 0
	for {
		tr, ok, err := t.Next(ctx)
		if err != nil {
			return halted, err
		}
		if !ok {
			return halted, nil
		}
		id := tr.ID()
		v := vertices[xxhash.Sum64(id[:])%uint64(len(vertices))]
		v.Halt(tr)
		halted++
	}
}
