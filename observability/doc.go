// Package observability provides OpenTelemetry tracing and metrics for
// reductions and distributed map/reduce runs.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, &cfg)
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, &meterCfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("graphkit"))
//	metrics.RecordStage(ctx, "reduce", "ok", duration)
//
// Runs:
//
//	rc := observability.NewRunContext("graphkit", runID, memoryKey, metrics)
//	ctx, span := rc.Start(ctx)
//	defer rc.End(ctx, span, err)
//
// Health:
//
//	status, results := observability.CheckAll(ctx, store)
package observability
