package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"engcli/internal/config"
	"engcli/pkg/contracts/domain"
)

const (
	ServiceName = config.AppName
	MeterName   = "engcli"
)

// Telemetry holds the tracer and meter providers of one process. Metrics are
// collected into a private Prometheus registry and written as a textfile
// after the run, since the processor exits before anything could scrape it.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *prometheus.Registry
	Metrics        *RunInstruments

	metricsFile string
	logger      *slog.Logger
}

// RunInstruments are the counters and histograms recorded by a pipeline run
type RunInstruments struct {
	RunsTotal       metric.Int64Counter
	RunDuration     metric.Float64Histogram
	StepDuration    metric.Float64Histogram
	AssetsProcessed metric.Int64Counter
	AssetsSkipped   metric.Int64Counter
	RowsWritten     metric.Int64Counter
}

// InitializeTelemetry sets up tracing and metrics from configuration
func InitializeTelemetry(cfg config.TelemetryConfig, logger *slog.Logger) (*Telemetry, error) {
	return newTelemetry(cfg, logger, os.Stdout)
}

func newTelemetry(cfg config.TelemetryConfig, logger *slog.Logger, traceOut io.Writer) (*Telemetry, error) {
	if logger == nil {
		logger = GetLogger()
	}
	ctx := context.Background()

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(config.AppVersion),
	)

	t := &Telemetry{
		metricsFile: cfg.MetricsFile,
		logger:      logger,
	}

	if err := t.initializeTracing(ctx, cfg, res, traceOut); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := t.initializeMetrics(res); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.InfoContext(ctx, "Telemetry initialized",
		slog.String("tracing", cfg.Tracing),
		slog.String("metrics_file", cfg.MetricsFile))

	return t, nil
}

// initializeTracing installs a stdout span exporter, or leaves the global
// no-op tracer in place for "none"
func (t *Telemetry) initializeTracing(ctx context.Context, cfg config.TelemetryConfig, res *resource.Resource, out io.Writer) error {
	switch cfg.Tracing {
	case "stdout":
		exporter, err := stdouttrace.New(
			stdouttrace.WithWriter(out),
			stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
		t.TracerProvider = tp
		t.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(config.AppVersion))
	case "none", "":
		t.Tracer = otel.GetTracerProvider().Tracer(MeterName)
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.Tracing)
	}

	t.logger.DebugContext(ctx, "Tracing initialized", slog.String("exporter", cfg.Tracing))
	return nil
}

// initializeMetrics wires an OTel meter provider to a dedicated Prometheus registry
func (t *Telemetry) initializeMetrics(res *resource.Resource) error {
	t.Registry = prometheus.NewRegistry()

	exporter, err := otelprom.New(
		otelprom.WithRegisterer(t.Registry),
		otelprom.WithoutScopeInfo(),
	)
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	t.MeterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	t.Meter = t.MeterProvider.Meter(MeterName, metric.WithInstrumentationVersion(config.AppVersion))

	t.Metrics, err = CreateRunInstruments(t.Meter)
	return err
}

// CreateRunInstruments creates the pipeline metrics on meter
func CreateRunInstruments(meter metric.Meter) (*RunInstruments, error) {
	runsTotal, err := meter.Int64Counter(
		"engcli_runs",
		metric.WithDescription("Pipeline runs by final status"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"engcli_run_duration_seconds",
		metric.WithDescription("Pipeline run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"engcli_step_duration_seconds",
		metric.WithDescription("Pipeline step duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	assetsProcessed, err := meter.Int64Counter(
		"engcli_assets_processed",
		metric.WithDescription("Assets whose logs were merged into the history"),
	)
	if err != nil {
		return nil, err
	}

	assetsSkipped, err := meter.Int64Counter(
		"engcli_assets_skipped",
		metric.WithDescription("Assets skipped by a pipeline stage"),
	)
	if err != nil {
		return nil, err
	}

	rowsWritten, err := meter.Int64Counter(
		"engcli_rows_written",
		metric.WithDescription("Rows written per output table"),
	)
	if err != nil {
		return nil, err
	}

	return &RunInstruments{
		RunsTotal:       runsTotal,
		RunDuration:     runDuration,
		StepDuration:    stepDuration,
		AssetsProcessed: assetsProcessed,
		AssetsSkipped:   assetsSkipped,
		RowsWritten:     rowsWritten,
	}, nil
}

// StartSpan starts a span on the telemetry tracer, or on the global tracer
// when t is nil
func (t *Telemetry) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(MeterName)
	if t != nil && t.Tracer != nil {
		tracer = t.Tracer
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordRun records the outcome of a finished run
func (t *Telemetry) RecordRun(ctx context.Context, run *domain.Run) {
	if t == nil || t.Metrics == nil || run == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("mode", string(run.Mode)),
		attribute.String("status", string(run.Status)),
	)
	t.Metrics.RunsTotal.Add(ctx, 1, attrs)
	if run.CompletedAt != nil {
		t.Metrics.RunDuration.Record(ctx, run.CompletedAt.Sub(run.StartedAt).Seconds(), attrs)
	}
	t.Metrics.AssetsProcessed.Add(ctx, int64(run.Metrics.AssetsProcessed))
}

// RecordStep records the duration of one pipeline step
func (t *Telemetry) RecordStep(ctx context.Context, stepID string, duration time.Duration, success bool) {
	if t == nil || t.Metrics == nil {
		return
	}
	t.Metrics.StepDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("step", stepID),
		attribute.Bool("success", success),
	))
}

// RecordSkip counts an asset skipped by stage
func (t *Telemetry) RecordSkip(ctx context.Context, stage string) {
	if t == nil || t.Metrics == nil {
		return
	}
	t.Metrics.AssetsSkipped.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordRows counts rows written to an output table
func (t *Telemetry) RecordRows(ctx context.Context, output string, rows int) {
	if t == nil || t.Metrics == nil {
		return
	}
	t.Metrics.RowsWritten.Add(ctx, int64(rows), metric.WithAttributes(attribute.String("output", output)))
}

// WriteMetricsFile writes the registry in Prometheus text format to the
// configured file. It does nothing when no file is configured.
func (t *Telemetry) WriteMetricsFile() error {
	if t == nil || t.metricsFile == "" || t.Registry == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(t.metricsFile, t.Registry); err != nil {
		return fmt.Errorf("failed to write metrics file %s: %w", t.metricsFile, err)
	}
	return nil
}

// Shutdown writes the metrics textfile, then flushes and stops both providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error

	if err := t.WriteMetricsFile(); err != nil {
		errs = append(errs, err)
	}

	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if t.MeterProvider != nil {
		if err := t.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("telemetry shutdown errors: %v", errs)
	}
	return nil
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// TraceIDFromContext extracts the span trace ID for log correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}
