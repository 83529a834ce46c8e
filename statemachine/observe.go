package statemachine

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// emit fans an execution event out to the logger, metrics, the current span
// and the registered execution hooks.
func (m *Machine[C, E]) emit(ctx context.Context, event ExecutionEvent) {
	event.Machine = m.name
	event.Depth = len(m.stack)

	if m.logger != nil {
		switch event.Type {
		case EventHookFired:
			m.logger.HookFired(ctx, m.name, event.Hook, event.State)
		case EventTransitionApplied:
			m.logger.TransitionApplied(ctx, m.name, event.Transition, event.State, event.Target, event.Depth)
		case EventRequestDropped:
			m.logger.RequestDropped(ctx, m.name, event.Transition)
		case EventHandlerCalled:
		}
	}

	if m.metrics {
		switch event.Type {
		case EventHookFired:
			hooksTotal.WithLabelValues(m.name, string(event.Hook), event.State).Inc()
		case EventTransitionApplied:
			transitionsTotal.WithLabelValues(m.name, event.Transition.String()).Inc()
		case EventRequestDropped:
			droppedRequestsTotal.WithLabelValues(m.name, event.Transition.String()).Inc()
		case EventHandlerCalled:
		}
	}

	if m.tracing {
		recordSpanEvent(ctx, event)
	}

	for _, hook := range m.hooks {
		hook(ctx, event)
	}
}

func (m *Machine[C, E]) hookFired(ctx context.Context, hook Hook, state State[C, E]) {
	m.emit(ctx, ExecutionEvent{
		Type:  EventHookFired,
		State: StateName(state),
		Hook:  hook,
	})
}

func (m *Machine[C, E]) handlerCalled(
	ctx context.Context,
	handler string,
	state State[C, E],
	event string,
	trans Transition[C, E],
	elapsed time.Duration,
) {
	if m.metrics {
		handlerDuration.WithLabelValues(m.name, handler).Observe(elapsed.Seconds())
	}

	m.emit(ctx, ExecutionEvent{
		Type:       EventHandlerCalled,
		State:      StateName(state),
		Handler:    handler,
		Event:      event,
		Transition: trans.kind,
		Target:     StateName(trans.state),
	})
}

func (m *Machine[C, E]) applied(ctx context.Context, kind TransitionKind, from string, target State[C, E]) {
	m.recordDepth()

	m.emit(ctx, ExecutionEvent{
		Type:       EventTransitionApplied,
		State:      from,
		Transition: kind,
		Target:     StateName(target),
	})
}

func (m *Machine[C, E]) dropped(ctx context.Context, kind TransitionKind, target State[C, E]) {
	m.emit(ctx, ExecutionEvent{
		Type:       EventRequestDropped,
		State:      m.activeName(),
		Transition: kind,
		Target:     StateName(target),
	})
}

func (m *Machine[C, E]) recordDepth() {
	if m.metrics {
		stackDepth.WithLabelValues(m.name).Set(float64(len(m.stack)))
	}
}

func (m *Machine[C, E]) recordEvent(label string) {
	if m.metrics {
		eventsTotal.WithLabelValues(m.name, label).Inc()
	}
}

func (m *Machine[C, E]) startHandlerSpan( //nolint:ireturn
	ctx context.Context,
	handler string,
	state string,
	event string,
) (context.Context, trace.Span) {
	if !m.tracing {
		return ctx, trace.SpanFromContext(ctx)
	}

	return startHandlerSpan(ctx, handler, m.name, m.id, state, event)
}

func (m *Machine[C, E]) endHandlerSpan(span trace.Span, trans Transition[C, E], depth int) {
	if !m.tracing {
		return
	}

	span.SetAttributes(
		attribute.String("transition", trans.String()),
		attribute.Int("depth", depth),
		attribute.Bool("running", m.running),
	)

	endHandlerSpan(span)
}
