package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/amp-labs/pushdown/envutil"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	otellog "go.opentelemetry.io/otel/log"
)

// Name of the calling subsystem, attached to every log line.
var subsystem atomic.Value //nolint:gochecknoglobals

// configMutex serializes ConfigureLoggingWithOptions, which replaces global state.
var configMutex sync.Mutex //nolint:gochecknoglobals

// Unexported key type so context values cannot collide with other packages.
type contextKey string

// Options is used to configure logging.
type Options struct {
	Subsystem   string
	JSON        bool
	MinLevel    slog.Level
	LegacyLevel slog.Level
	Output      io.Writer

	// LoggerProvider, when set, receives a copy of every record through the
	// OpenTelemetry slog bridge (see telemetry.InitializeLogs).
	LoggerProvider otellog.LoggerProvider
}

// ConfigureLoggingWithOptions configures logging for the application and
// returns the new default logger. Safe for concurrent use; calls are serialized.
func ConfigureLoggingWithOptions(opts Options) *slog.Logger {
	configMutex.Lock()
	defer configMutex.Unlock()

	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	var handler slog.Handler

	handlerOpts := &slog.HandlerOptions{
		Level: opts.MinLevel,
	}

	if opts.JSON {
		handler = slog.NewJSONHandler(opts.Output, handlerOpts)
	} else {
		handler = slog.NewTextHandler(opts.Output, handlerOpts)
	}

	if opts.LoggerProvider != nil {
		handler = &fanoutHandler{
			handlers: []slog.Handler{
				handler,
				otelslog.NewHandler(opts.Subsystem, otelslog.WithLoggerProvider(opts.LoggerProvider)),
			},
		}
	}

	logger := slog.New(handler)

	slog.SetDefault(logger)

	// Route the legacy log package through the same handler.
	def := log.Default()
	*def = *slog.NewLogLogger(handler, opts.LegacyLevel)

	subsystem.Store(opts.Subsystem)

	return logger
}

// Option is a functional option for configuring logging via ConfigureLogging.
type Option func(*Options)

// WithLoggerProvider exports logs through an OpenTelemetry logger provider.
func WithLoggerProvider(provider otellog.LoggerProvider) Option {
	return func(o *Options) {
		o.LoggerProvider = provider
	}
}

// WithOutput overrides the output chosen from LOG_OUTPUT.
func WithOutput(w io.Writer) Option {
	return func(o *Options) {
		o.Output = w
	}
}

// ErrInvalidLogOutput is returned when an invalid log output destination is specified.
var ErrInvalidLogOutput = errors.New("invalid log output")

// ConfigureLogging configures logging from the environment:
//   - LOG_JSON (bool, default false)
//   - LOG_LEVEL (slog level, default info)
//   - LEGACY_LOG_LEVEL (slog level for the log package, default info)
//   - LOG_OUTPUT ("stdout" or "stderr", default stdout)
func ConfigureLogging(ctx context.Context, app string, opts ...Option) (*slog.Logger, error) {
	logJSON, err := envutil.Bool(ctx, "LOG_JSON", envutil.Default(false)).Value()
	if err != nil {
		return nil, err
	}

	minLevel, err := envutil.SlogLevel(ctx, "LOG_LEVEL", envutil.Default(slog.LevelInfo)).Value()
	if err != nil {
		return nil, err
	}

	legacyLevel, err := envutil.SlogLevel(ctx, "LEGACY_LOG_LEVEL", envutil.Default(slog.LevelInfo)).Value()
	if err != nil {
		return nil, err
	}

	output, err := envutil.Map(envutil.String(ctx, "LOG_OUTPUT", envutil.Default("stdout")),
		func(outName string) (io.Writer, error) {
			switch outName {
			case "stdout":
				return os.Stdout, nil
			case "stderr":
				return os.Stderr, nil
			default:
				return nil, fmt.Errorf("%w: %q", ErrInvalidLogOutput, outName)
			}
		}).Value()
	if err != nil {
		return nil, err
	}

	options := Options{
		Subsystem:   app,
		JSON:        logJSON,
		MinLevel:    minLevel,
		LegacyLevel: legacyLevel,
		Output:      output,
	}

	for _, o := range opts {
		o(&options)
	}

	return ConfigureLoggingWithOptions(options), nil
}

// WithMuted marks the context so that loggers obtained from it discard everything.
// Useful for per-tick code paths that would otherwise flood the logs.
func WithMuted(ctx context.Context, muted bool) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, contextKey("mute"), muted)
}

func isMuted(ctx context.Context) bool {
	if ctx == nil {
		return false
	}

	muted, ok := ctx.Value(contextKey("mute")).(bool)

	return ok && muted
}

// WithSubsystem overrides the default subsystem for loggers obtained from ctx.
func WithSubsystem(ctx context.Context, subsystem string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, contextKey("subsystem"), subsystem)
}

// GetSubsystem returns the subsystem from the context, or the default one set
// by ConfigureLogging.
func GetSubsystem(ctx context.Context) string { //nolint:contextcheck
	if ctx == nil {
		ctx = context.Background()
	}

	if val, ok := ctx.Value(contextKey("subsystem")).(string); ok {
		return val
	}

	if val, ok := subsystem.Load().(string); ok {
		return val
	}

	return ""
}

// hostname is the pod name in a k8s deployment, the machine name locally.
var hostname = sync.OnceValue(func() string { //nolint:gochecknoglobals
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}

	return h
})

// GetPodName returns the pod name (or hostname if not running in k8s).
func GetPodName() string {
	return hostname()
}

// nullLogger discards all output; returned for muted contexts.
var nullLogger = slog.New(slog.DiscardHandler) //nolint:gochecknoglobals

// Get returns the default logger decorated with the subsystem, the pod name
// and any values attached with With. Only the first non-nil context is used.
//
//nolint:contextcheck
func Get(ctx ...context.Context) *slog.Logger {
	realCtx := context.Background()

	for _, c := range ctx {
		if c != nil {
			realCtx = c //nolint:fatcontext

			break
		}
	}

	if isMuted(realCtx) {
		return nullLogger
	}

	logger := slog.Default().With(
		"subsystem", GetSubsystem(realCtx),
		"pod", hostname())

	if vals := getValues(realCtx); vals != nil {
		logger = logger.With(vals...)
	}

	return logger
}

// With returns a new context carrying key-value pairs that Get adds to every logger.
func With(ctx context.Context, values ...any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	if len(values) == 0 {
		return ctx
	}

	existing := getValues(ctx)
	vals := make([]any, 0, len(existing)+len(values))
	vals = append(vals, existing...)
	vals = append(vals, values...)

	return context.WithValue(ctx, contextKey("loggerValues"), vals)
}

func getValues(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}

	vals, _ := ctx.Value(contextKey("loggerValues")).([]any)

	return vals
}
