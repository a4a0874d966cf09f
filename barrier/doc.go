// Package barrier provides barrier steps, chiefly the reducing barrier.
//
// A reducing barrier drains its entire upstream, folds every traverser into
// an accumulator obtained from a seed, finalizes it and emits exactly one
// traverser with bulk 1. Further pulls report exhaustion until Reset.
//
//	step := barrier.NewReducingBarrier(barrier.Sum[int]())
//	t := traversal.New()
//	t.AddStep(traversal.NewStart()).AddStep(step)
//	_ = traversal.Inject(t, 3, 5, 2)
//	out, err := traversal.Pull(ctx, step) // 10
//
// # Distributed Execution
//
// The same Reducer runs across graph partitions through MapReduce, which
// implements computer.MapReduce: the map stage emits halted traversers under
// MemoryKey, combine is skipped, and reduce folds all values for the key from
// a fresh seed. The reduction must be associative and order-insensitive for
// the distributed result to equal the local one.
//
// # Bypass
//
// A bypassed barrier is pure pass-through, for callers that already know no
// reduction is needed. Bypass survives Reset and Clone.
package barrier
