package logger

import (
	"time"
)

// Standard field key constants for structured logging.
const (
	FieldService     = "service"
	FieldComponent   = "component"
	FieldRunID       = "run_id"
	FieldTraceID     = "trace_id"
	FieldStepID      = "step_id"
	FieldTraversalID = "traversal_id"
	FieldStage       = "stage"
	FieldPartition   = "partition"
	FieldMemoryKey   = "memory_key"
	FieldTraversers  = "traversers"
	FieldBulk        = "bulk"
	FieldState       = "state"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	logger.Info("reduced", logger.Fields("step_id", id, "traversers", n))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for an operation that failed.
func ErrorFields(op string, err error) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldError:     err.Error(),
	}
}

// StageFields creates fields describing a finished distributed stage.
func StageFields(stage string, partitions int, d time.Duration) map[string]interface{} {
	return map[string]interface{}{
		FieldStage:     stage,
		FieldPartition: partitions,
		FieldDuration:  d.Milliseconds(),
	}
}

// MergeWithError adds an error field to an existing map.
func MergeWithError(fields map[string]interface{}, err error) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields[FieldError] = err.Error()
	return fields
}
