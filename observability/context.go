package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RunContext holds observability context for one distributed computation.
type RunContext struct {
	ServiceName string
	RunID       string
	MemoryKey   string
	StartTime   time.Time
	Metrics     *Metrics
}

// NewRunContext creates a run context. If metrics is nil, metric recording
// is silently skipped.
func NewRunContext(serviceName, runID, memoryKey string, metrics *Metrics) *RunContext {
	return &RunContext{
		ServiceName: serviceName,
		RunID:       runID,
		MemoryKey:   memoryKey,
		StartTime:   time.Now(),
		Metrics:     metrics,
	}
}

type runContextKey struct{}

// WithRunContext stores a RunContext in the context.
func WithRunContext(ctx context.Context, rc *RunContext) context.Context {
	return context.WithValue(ctx, runContextKey{}, rc)
}

// RunContextFromContext retrieves the RunContext from context, or nil.
func RunContextFromContext(ctx context.Context) *RunContext {
	if rc, ok := ctx.Value(runContextKey{}).(*RunContext); ok {
		return rc
	}
	return nil
}

// Start opens the run span, stores rc in the returned context and counts
// the run as active.
func (rc *RunContext) Start(ctx context.Context) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, SpanMapReduce)
	span.SetAttributes(
		attribute.String(AttrServiceName, rc.ServiceName),
		attribute.String(AttrRunID, rc.RunID),
		attribute.String(AttrMemoryKey, rc.MemoryKey),
	)
	rc.Metrics.RecordRunStart(ctx)
	return WithRunContext(ctx, rc), span
}

// StartStage opens a child span for one stage of the run.
func (rc *RunContext) StartStage(ctx context.Context, stage string) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, SpanStage)
	span.SetAttributes(
		attribute.String(AttrRunID, rc.RunID),
		attribute.String(AttrStage, stage),
	)
	return ctx, span
}

// EndStage closes a stage span and records the stage metrics.
func (rc *RunContext) EndStage(ctx context.Context, span trace.Span, stage string, started time.Time, err error) {
	status := finishSpan(span, err)
	rc.Metrics.RecordStage(ctx, stage, status, time.Since(started))
}

// End closes the run span and decrements the active run count.
func (rc *RunContext) End(ctx context.Context, span trace.Span, err error) {
	finishSpan(span, err, attribute.Int64(AttrDurationMs, rc.Duration().Milliseconds()))
	rc.Metrics.RecordRunEnd(ctx)
}

// Duration returns the elapsed time since the run started.
func (rc *RunContext) Duration() time.Duration {
	return time.Since(rc.StartTime)
}
