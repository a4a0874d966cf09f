// Package resilience retries operations that fail with retryable errors.
//
// Retry and Do back off exponentially between attempts and stop as soon as
// an error is not retryable. By default only AppErrors marked retryable,
// such as STORE_FAILED, are retried:
//
//	err := resilience.Do(ctx, resilience.DefaultRetryConfig(), func(ctx context.Context) error {
//	    return store.Save(ctx, key, val, ttl)
//	})
package resilience
