package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "note-taker/api"

// GetTracer returns the tracer for the note-taker service.
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartMessageSpan starts a span covering one pipeline run.
func StartMessageSpan(ctx context.Context, conversationID, userID string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "pipeline.message",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("conversation.id", conversationID),
			attribute.String("user.id", userID),
		),
	)
}

// StartStageSpan starts a span for one pipeline stage.
func StartStageSpan(ctx context.Context, stage string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "pipeline.stage."+stage,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("pipeline.stage", stage)),
	)
}

// AnnotateClassification attaches the classification outcome to a span.
func AnnotateClassification(span trace.Span, category, source string, confidence float64) {
	span.SetAttributes(
		attribute.String("classify.category", category),
		attribute.String("classify.source", source),
		attribute.Float64("classify.confidence", confidence),
	)
}

// AnnotateArtifacts attaches created artifact counts to a span.
func AnnotateArtifacts(span trace.Span, notes, tasks int, degraded bool) {
	span.SetAttributes(
		attribute.Int("artifacts.notes", notes),
		attribute.Int("artifacts.tasks", tasks),
		attribute.Bool("pipeline.degraded", degraded),
	)
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
