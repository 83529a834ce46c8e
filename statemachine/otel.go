package statemachine

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "statemachine"

// startHandlerSpan creates the span wrapping one Update or Trigger call,
// including the transition it produced.
// Uses the global tracer initialized by github.com/amp-labs/pushdown/telemetry.
// The caller is responsible for calling span.End().
//
//nolint:spancheck // Span lifecycle managed by caller
func startHandlerSpan(
	ctx context.Context,
	handler string,
	machine string,
	machineID string,
	state string,
	event string,
) (context.Context, trace.Span) {
	spanName := tracerName + "." + handler
	ctx, span := otel.Tracer(tracerName).Start(ctx, spanName)

	span.SetAttributes(
		attribute.String("machine", machine),
		attribute.String("machine_id", machineID),
		attribute.String("state", state),
	)

	if event != "" {
		span.SetAttributes(attribute.String("event", event))
	}

	logSpanDebug(ctx, "started", spanName, span)

	return ctx, span
}

func endHandlerSpan(span trace.Span) {
	span.SetStatus(codes.Ok, "completed")
	span.End()
}

// recordSpanEvent attaches an execution event to the span active in ctx.
func recordSpanEvent(ctx context.Context, event ExecutionEvent) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("state", event.State),
		attribute.Int("depth", event.Depth),
	}

	switch event.Type {
	case EventHookFired:
		span.AddEvent(string(event.Hook), trace.WithAttributes(attrs...))
	case EventTransitionApplied, EventRequestDropped:
		attrs = append(attrs,
			attribute.String("transition", event.Transition.String()),
			attribute.String("target", event.Target),
		)
		span.AddEvent("transition."+string(event.Type), trace.WithAttributes(attrs...))
	case EventHandlerCalled:
	}
}

// logSpanDebug logs span creation when STATEMACHINE_DEBUG is set.
func logSpanDebug(ctx context.Context, phase string, spanName string, span trace.Span) {
	if !isDebugMode() {
		return
	}

	spanCtx := span.SpanContext()
	slog.DebugContext(ctx, "OTEL Span "+phase,
		"span_name", spanName,
		"trace_id", spanCtx.TraceID().String(),
		"span_id", spanCtx.SpanID().String(),
	)
}

// extractTraceContext extracts trace ID and span ID from context for logging.
func extractTraceContext(ctx context.Context) (traceID, spanID string) {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		spanCtx := span.SpanContext()

		return spanCtx.TraceID().String(), spanCtx.SpanID().String()
	}

	return "", ""
}

func isDebugMode() bool {
	return strings.EqualFold(os.Getenv("STATEMACHINE_DEBUG"), "1") ||
		strings.EqualFold(os.Getenv("STATEMACHINE_DEBUG"), "true")
}
