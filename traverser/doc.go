// Package traverser defines the tokens that flow through a traversal.
//
// A traverser carries a value, a bulk (how many identical traversers it
// represents) and provenance: the producing step, the originating traversal
// and, optionally, the path of values visited.
//
//	g := traverser.Generator{TraversalID: "t-1"}
//	t := traverser.Generate(g, 42, "start-0", 1)
//	next := traverser.Split(t, "42", "map-1")
//
// Steps exchange the untyped Traverser interface; steps that need the value
// type convert with As.
package traverser
