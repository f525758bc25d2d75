package operations

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"engcli/internal/infrastructure"
)

// OperationTracer instruments runs and steps with spans and step metrics
type OperationTracer struct {
	telemetry *infrastructure.Telemetry
}

// NewOperationTracer creates a tracer over telemetry. A nil telemetry
// traces through the global no-op provider and records no metrics.
func NewOperationTracer(telemetry *infrastructure.Telemetry) *OperationTracer {
	return &OperationTracer{telemetry: telemetry}
}

// TraceOperationExecution creates a span for the entire run
func (pt *OperationTracer) TraceOperationExecution(ctx context.Context, operationID string, stepCount int) (context.Context, trace.Span) {
	return pt.telemetry.StartSpan(ctx, "operation.execute",
		attribute.String("operation.id", operationID),
		attribute.Int("operation.steps", stepCount),
	)
}

// TraceStepExecution creates a span for one step
func (pt *OperationTracer) TraceStepExecution(ctx context.Context, operationID string, step Step) (context.Context, trace.Span) {
	return pt.telemetry.StartSpan(ctx, "operation.step."+step.ID(),
		attribute.String("operation.id", operationID),
		attribute.String("step.id", step.ID()),
		attribute.String("step.name", step.Name()),
	)
}

// RecordStepCompletion ends a step span and records the step duration
func (pt *OperationTracer) RecordStepCompletion(ctx context.Context, span trace.Span, stepID string, duration time.Duration, err error) {
	span.SetAttributes(attribute.Float64("step.duration_seconds", duration.Seconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	pt.telemetry.RecordStep(ctx, stepID, duration, err == nil)
}

// RecordOperationCompletion ends the run span
func (pt *OperationTracer) RecordOperationCompletion(span trace.Span, state *OperationState) {
	span.SetAttributes(
		attribute.String("operation.status", string(state.Status)),
		attribute.Float64("operation.duration_seconds", state.Duration().Seconds()),
	)
	if state.Error != nil {
		span.RecordError(state.Error)
		span.SetStatus(codes.Error, state.Error.Error())
	}
	span.End()
}
