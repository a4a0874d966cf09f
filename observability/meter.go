package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/hashicorp/go-multierror"

	"github.com/kbukum/graphkit/logger"
	"github.com/kbukum/graphkit/version"
)

// MeterConfig configures metric export for map/reduce runs.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP/HTTP collector as host:port.
	Endpoint string
	Insecure bool
	// Interval between exports. Zero keeps the SDK default.
	Interval time.Duration
}

// DefaultMeterConfig exports to a local plaintext collector every 15s.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.Short(),
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter installs a periodic OTLP/HTTP meter provider as the process
// global. Callers shut the provider down on exit.
func InitMeter(ctx context.Context, cfg *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("metric exporter for %s: %w", cfg.Endpoint, err)
	}
	res, err := newResource(cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("metric resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Get("observability").Info("meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded by reductions and distributed runs.
// A nil *Metrics records nothing.
type Metrics struct {
	reduceTraversers metric.Int64Counter
	reduceDuration   metric.Float64Histogram
	stageTotal       metric.Int64Counter
	stageDuration    metric.Float64Histogram
	runActive        metric.Int64UpDownCounter
	errorTotal       metric.Int64Counter
}

// Instrument names, all under the graphkit namespace.
const (
	MetricReduceTraversers = "graphkit.reduce.traversers"
	MetricReduceDuration   = "graphkit.reduce.duration"
	MetricStageTotal       = "graphkit.stage.total"
	MetricStageDuration    = "graphkit.stage.duration"
	MetricRunActive        = "graphkit.run.active"
	MetricErrorTotal       = "graphkit.error.total"
)

// NewMetrics creates the instruments on meter. Every failing instrument is
// reported in the returned error.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m    Metrics
		errs *multierror.Error
		err  error
	)
	collect := func(name string, e error) {
		if e != nil {
			errs = multierror.Append(errs, fmt.Errorf("instrument %s: %w", name, e))
		}
	}

	m.reduceTraversers, err = meter.Int64Counter(MetricReduceTraversers,
		metric.WithDescription("Traversers folded by reducing barriers, weighted by bulk"))
	collect(MetricReduceTraversers, err)
	m.reduceDuration, err = meter.Float64Histogram(MetricReduceDuration,
		metric.WithDescription("Time spent folding one reduce key"), metric.WithUnit("s"))
	collect(MetricReduceDuration, err)
	m.stageTotal, err = meter.Int64Counter(MetricStageTotal,
		metric.WithDescription("Map, combine and reduce stages by outcome"))
	collect(MetricStageTotal, err)
	m.stageDuration, err = meter.Float64Histogram(MetricStageDuration,
		metric.WithDescription("Wall time of one stage across all partitions"), metric.WithUnit("s"))
	collect(MetricStageDuration, err)
	m.runActive, err = meter.Int64UpDownCounter(MetricRunActive,
		metric.WithDescription("Map/reduce runs in progress"))
	collect(MetricRunActive, err)
	m.errorTotal, err = meter.Int64Counter(MetricErrorTotal,
		metric.WithDescription("Failed runs by error code and component"))
	collect(MetricErrorTotal, err)

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordReduce records one completed reduction.
func (m *Metrics) RecordReduce(ctx context.Context, memoryKey string, traversers int64, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String(AttrMemoryKey, memoryKey))
	m.reduceTraversers.Add(ctx, traversers, attrs)
	m.reduceDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordStage records a finished map, combine or reduce stage.
func (m *Metrics) RecordStage(ctx context.Context, stage, status string, duration time.Duration) {
	if m == nil {
		return
	}
	stageAttr := attribute.String(AttrStage, stage)
	m.stageTotal.Add(ctx, 1, metric.WithAttributes(stageAttr, attribute.String(AttrStatus, status)))
	m.stageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(stageAttr))
}

func (m *Metrics) RecordRunStart(ctx context.Context) { m.addActive(ctx, 1) }
func (m *Metrics) RecordRunEnd(ctx context.Context)   { m.addActive(ctx, -1) }

func (m *Metrics) addActive(ctx context.Context, delta int64) {
	if m != nil {
		m.runActive.Add(ctx, delta)
	}
}

// RecordError records an error by code and component.
func (m *Metrics) RecordError(ctx context.Context, code, component string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrErrorCode, code),
		attribute.String(AttrComponent, component),
	))
}
