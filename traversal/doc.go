// Package traversal provides the pull-based step harness of the engine.
//
// A Traversal is a chain of Steps. Each step pulls traversers from its
// upstream (injected starts first, then the previous step) and yields
// traversers downstream. No work happens until values are pulled.
//
// # Pull Contract
//
// Step.Next returns (traverser, true, nil) for a value, (nil, false, nil)
// when exhausted and (nil, false, err) on failure. Pull converts exhaustion
// into an EXHAUSTED error for callers that want strict semantics.
//
// # Example
//
//	t := traversal.New()
//	t.AddStep(traversal.NewStart()).
//		AddStep(traversal.NewMap(func(_ context.Context, n int) (int, error) {
//			return n * 2, nil
//		}))
//	_ = traversal.Inject(t, 1, 2, 3)
//	values, err := traversal.Values[int](ctx, t)
//
// # Lifecycle
//
// Reset clears run state on every step so the traversal can run again with
// fresh starts. Clone produces an independent, rewired copy for branches.
package traversal
