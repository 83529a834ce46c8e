package statemachine

import (
	"context"

	"github.com/google/uuid"
)

// ExecutionHook observes everything the machine does: every lifecycle hook it
// delivers and every transition it applies or drops. Hooks run synchronously
// inside the operation that produced the event.
type ExecutionHook func(ctx context.Context, event ExecutionEvent)

// ExecutionEventType distinguishes the kinds of ExecutionEvent.
type ExecutionEventType string

const (
	// EventHookFired is recorded after a lifecycle hook returns.
	EventHookFired ExecutionEventType = "hook"
	// EventHandlerCalled is recorded after Update or Trigger returns on the active state.
	EventHandlerCalled ExecutionEventType = "handler"
	// EventTransitionApplied is recorded after a requested transition changed the stack.
	EventTransitionApplied ExecutionEventType = "transition"
	// EventRequestDropped is recorded when a transition arrives while the machine is not running.
	EventRequestDropped ExecutionEventType = "dropped"
)

// ExecutionEvent is passed to execution hooks.
type ExecutionEvent struct {
	Type    ExecutionEventType
	Machine string
	// State is the state the event concerns (the hook target, the handler
	// receiver, or the active state before a transition).
	State string
	// Hook is set for EventHookFired.
	Hook Hook
	// Handler is "update" or "trigger" for EventHandlerCalled.
	Handler string
	// Event is the rendered event for trigger handlers.
	Event string
	// Transition is set for EventHandlerCalled, EventTransitionApplied and EventRequestDropped.
	Transition TransitionKind
	// Target is the incoming state for push and switch.
	Target string
	// Depth is the stack depth after the event.
	Depth int
}

type options struct {
	name    string
	id      string
	logger  Logger
	metrics bool
	tracing bool
	hooks   []ExecutionHook
}

func defaultOptions() *options {
	return &options{
		name:    "statemachine",
		id:      uuid.NewString(),
		metrics: true,
		tracing: true,
	}
}

// Option configures a Machine.
type Option func(*options)

// WithName sets the machine name used in logs, metric labels and span attributes.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithID overrides the generated machine instance ID.
func WithID(id string) Option {
	return func(o *options) {
		if id != "" {
			o.id = id
		}
	}
}

// WithLogger sets the logger. A nil logger disables engine logging.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics enables or disables prometheus metrics. Enabled by default.
func WithMetrics(enabled bool) Option {
	return func(o *options) {
		o.metrics = enabled
	}
}

// WithTracing enables or disables OpenTelemetry spans. Enabled by default.
func WithTracing(enabled bool) Option {
	return func(o *options) {
		o.tracing = enabled
	}
}

// WithExecutionHook adds a hook observing the machine's execution.
func WithExecutionHook(hook ExecutionHook) Option {
	return func(o *options) {
		if hook != nil {
			o.hooks = append(o.hooks, hook)
		}
	}
}
