package statemachine

import (
	"context"
	"log/slog"

	"github.com/amp-labs/pushdown/logger"
)

// Logger provides logging hooks for machine execution.
type Logger interface {
	HookFired(ctx context.Context, machine string, hook Hook, state string)
	TransitionApplied(ctx context.Context, machine string, kind TransitionKind, from, to string, depth int)
	RequestDropped(ctx context.Context, machine string, kind TransitionKind)
}

// DefaultLogger implements Logger using slog. Lifecycle hooks fire on every
// stack change and are logged at HookLevel; applied transitions at Info.
type DefaultLogger struct {
	logger    *slog.Logger
	hookLevel slog.Level
}

// NewDefaultLogger creates a logger that writes through logger.Get, so values
// attached to the context with logger.With are included.
func NewDefaultLogger() *DefaultLogger {
	return &DefaultLogger{
		hookLevel: slog.LevelDebug,
	}
}

// NewSlogLogger creates a logger that writes to l.
func NewSlogLogger(l *slog.Logger) *DefaultLogger {
	return &DefaultLogger{
		logger:    l,
		hookLevel: slog.LevelDebug,
	}
}

// WithHookLevel returns a copy that logs lifecycle hooks at level.
func (l *DefaultLogger) WithHookLevel(level slog.Level) *DefaultLogger {
	return &DefaultLogger{
		logger:    l.logger,
		hookLevel: level,
	}
}

func (l *DefaultLogger) get(ctx context.Context) *slog.Logger {
	base := l.logger
	if base == nil {
		base = logger.Get(ctx)
	}

	if traceID, spanID := extractTraceContext(ctx); traceID != "" {
		base = base.With("trace_id", traceID, "span_id", spanID)
	}

	return base
}

func (l *DefaultLogger) HookFired(ctx context.Context, machine string, hook Hook, state string) {
	l.get(ctx).Log(ctx, l.hookLevel, "Lifecycle hook fired",
		"machine", machine,
		"hook", string(hook),
		"state", state,
	)
}

func (l *DefaultLogger) TransitionApplied(
	ctx context.Context,
	machine string,
	kind TransitionKind,
	from, to string,
	depth int,
) {
	fields := []any{
		"machine", machine,
		"kind", kind.String(),
		"from", from,
		"depth", depth,
	}

	if to != "" {
		fields = append(fields, "to", to)
	}

	l.get(ctx).InfoContext(ctx, "Transition applied", fields...)
}

func (l *DefaultLogger) RequestDropped(ctx context.Context, machine string, kind TransitionKind) {
	l.get(ctx).DebugContext(ctx, "Transition dropped, machine not running",
		"machine", machine,
		"kind", kind.String(),
	)
}
