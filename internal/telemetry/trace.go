package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/clientstage/internal/errors"
)

const tracerName = "clientstage"

// StartRunSpan creates the root span of a staging run.
//
// Usage:
//
//	ctx, span := telemetry.StartRunSpan(ctx, runID)
//	defer span.End()
func StartRunSpan(ctx context.Context, runID string) (context.Context, trace.Span) {
	ctx, span := GetTracerProvider().Tracer(tracerName).Start(ctx, "run")
	span.SetAttributes(attribute.String("run_id", runID))
	return ctx, span
}

// StartStageSpan creates a child span for one pipeline stage.
func StartStageSpan(ctx context.Context, stage string) (context.Context, trace.Span) {
	ctx, span := GetTracerProvider().Tracer(tracerName).Start(ctx, "stage."+stage)
	span.SetAttributes(attribute.String("stage", stage))
	return ctx, span
}

// RecordSuccess marks a span as successful with optional result attributes.
func RecordSuccess(span trace.Span, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
	span.SetStatus(codes.Ok, "")
}

// RecordError records an error in a span and sets error status.
// Coded errors also carry their code as an attribute.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.Bool("error", true))
	if stepErr, ok := errors.As(err); ok {
		span.SetAttributes(attribute.String("error_code", string(stepErr.Code)))
	}
}
