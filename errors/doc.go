// Package errors provides the error taxonomy of the traversal engine.
//
// Four conditions matter to pipeline callers:
//
//   - EXHAUSTED: a step has nothing further to offer. Treat as end of sequence.
//   - MISCONFIGURED: a step cannot run (missing seed or fold, bad finalize).
//     Report it from Traversal.Validate before execution.
//   - REDUCE_FAILED: a user reducing function failed; the original error is
//     reachable with errors.Is / errors.As.
//   - PARTITION_FAILED: a distributed map or reduce failed on one partition.
//
// Usage:
//
//	if errors.IsExhausted(err) {
//	    break
//	}
package errors
