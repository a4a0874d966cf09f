// Package errors provides the error taxonomy of the traversal engine.
// Every failure is an AppError carrying a machine-readable code, a retryable
// hint and optional details, so callers can branch on the condition without
// string matching.
package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
)

// AppError is the engine error type.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	// Retryable tells resilience.Retry whether another attempt may succeed.
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
	Cause     error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the cause and returns e.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges details into e and returns e.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	maps.Copy(e.Details, details)
	return e
}

// WithDetail sets one detail and returns e.
func (e *AppError) WithDetail(key string, value any) *AppError {
	return e.WithDetails(map[string]any{key: value})
}

// New creates an AppError whose retryability follows its code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Retryable: IsRetryableCode(code)}
}

func newf(code ErrorCode, cause error, details map[string]any, format string, args ...any) *AppError {
	e := New(code, fmt.Sprintf(format, args...))
	e.Details = details
	e.Cause = cause
	return e
}

func stepDetails(stepID string) map[string]any { return map[string]any{"step_id": stepID} }

// Exhausted is the end-of-sequence condition of a step with nothing left to
// offer. It is expected and never fatal.
func Exhausted(stepID string) *AppError {
	return newf(ErrCodeExhausted, nil, stepDetails(stepID), "no more elements")
}

// Misconfigured reports a step whose configuration cannot run. Traversal
// validation surfaces it before any traverser moves.
func Misconfigured(stepID, reason string) *AppError {
	return newf(ErrCodeMisconfigured, nil, stepDetails(stepID), "step %s is misconfigured: %s", stepID, reason)
}

// ReduceFailed wraps a fault raised by a user-supplied reducing function.
// The fault stays reachable through errors.Is and errors.As.
func ReduceFailed(stepID string, cause error) *AppError {
	return newf(ErrCodeReduceFailed, cause, stepDetails(stepID), "reducing function of step %s failed", stepID)
}

// PartitionFailed reports a distributed stage that failed on one partition
// or reduce bucket.
func PartitionFailed(stage, partition string, cause error) *AppError {
	return newf(ErrCodePartitionFailed, cause, map[string]any{"stage": stage, "partition": partition},
		"%s stage failed on %s", stage, partition)
}

// StoreFailed reports a failed result-store operation.
func StoreFailed(operation string, cause error) *AppError {
	return newf(ErrCodeStoreFailed, cause, map[string]any{"operation": operation}, "result store %s failed", operation)
}

func NotFound(resource, id string) *AppError {
	e := newf(ErrCodeNotFound, nil, map[string]any{"resource": resource}, "%s not found", resource)
	if id != "" {
		e.Details["id"] = id
	}
	return e
}

func InvalidInput(field, reason string) *AppError {
	e := newf(ErrCodeInvalidInput, nil, map[string]any{}, "invalid input: %s", reason)
	if field != "" {
		e.Details["field"] = field
	}
	return e
}

func Internal(cause error) *AppError {
	return newf(ErrCodeInternal, cause, nil, "unexpected engine failure")
}

func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err's chain holds an AppError with code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsExhausted reports whether err is the end-of-sequence condition.
func IsExhausted(err error) bool {
	return HasCode(err, ErrCodeExhausted)
}
