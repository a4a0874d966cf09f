package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Iteration errors
const (
	// ErrCodeExhausted indicates a step has no more elements to offer.
	ErrCodeExhausted ErrorCode = "EXHAUSTED"
)

// Construction errors
const (
	// ErrCodeMisconfigured indicates a step cannot run with its configuration.
	ErrCodeMisconfigured ErrorCode = "MISCONFIGURED"
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Execution errors
const (
	// ErrCodeReduceFailed indicates a user-supplied reducing function failed.
	ErrCodeReduceFailed ErrorCode = "REDUCE_FAILED"
	// ErrCodePartitionFailed indicates a distributed stage failed on a partition.
	ErrCodePartitionFailed ErrorCode = "PARTITION_FAILED"
)

// Storage errors
const (
	// ErrCodeStoreFailed indicates a result-store read or write failed.
	ErrCodeStoreFailed ErrorCode = "STORE_FAILED"
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal engine error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// IsRetryableCode reports whether errors with code may succeed on another
// attempt. Only result-store I/O qualifies.
func IsRetryableCode(code ErrorCode) bool {
	return code == ErrCodeStoreFailed
}
