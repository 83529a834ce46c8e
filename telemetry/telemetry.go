// Package telemetry wires OpenTelemetry trace and log export for binaries
// that drive state machines.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/amp-labs/pushdown/envutil"
	"github.com/amp-labs/pushdown/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

const (
	defaultServiceVersion = "1.0.0"
	defaultTimeout        = 5 * time.Second
	inClusterCollector    = "http://opentelemetry-collector.opentelemetry.svc.cluster.local:4318"
)

//nolint:gochecknoglobals
var (
	providersMu    sync.Mutex
	tracerProvider *sdktrace.TracerProvider
	loggerProvider *sdklog.LoggerProvider
)

// Config holds the OpenTelemetry configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	LogsEndpoint   string
	Enabled        bool
	LogsEnabled    bool
	Timeout        time.Duration
}

// LoadConfigFromEnv loads OpenTelemetry configuration from environment variables:
// OTEL_ENABLED, OTEL_LOGS_ENABLED, OTEL_SERVICE_NAME, OTEL_SERVICE_VERSION,
// OTEL_EXPORTER_OTLP_TRACES_ENDPOINT, OTEL_EXPORTER_OTLP_LOGS_ENDPOINT and
// OTEL_EXPORTER_OTLP_TIMEOUT. Inside Kubernetes the endpoints default to the
// in-cluster collector.
func LoadConfigFromEnv(ctx context.Context, runningEnv string) (*Config, error) {
	defaultEndpoint := ""
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		defaultEndpoint = inClusterCollector
	}

	enabled, err := envutil.Bool(ctx, "OTEL_ENABLED", envutil.Default(false)).Value()
	if err != nil {
		return nil, err
	}

	logsEnabled, err := envutil.Bool(ctx, "OTEL_LOGS_ENABLED", envutil.Default(false)).Value()
	if err != nil {
		return nil, err
	}

	svcName, err := envutil.String(ctx, "OTEL_SERVICE_NAME", envutil.Default(logger.GetSubsystem(ctx))).Value()
	if err != nil {
		return nil, err
	}

	svcVersion, err := envutil.String(ctx, "OTEL_SERVICE_VERSION", envutil.Default(defaultServiceVersion)).Value()
	if err != nil {
		return nil, err
	}

	endpoint, err := envutil.String(ctx, "OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", envutil.Default(defaultEndpoint)).Value()
	if err != nil {
		return nil, err
	}

	logsEndpoint, err := envutil.String(ctx, "OTEL_EXPORTER_OTLP_LOGS_ENDPOINT", envutil.Default(defaultEndpoint)).Value()
	if err != nil {
		return nil, err
	}

	timeout, err := envutil.Duration(ctx, "OTEL_EXPORTER_OTLP_TIMEOUT", envutil.Default(defaultTimeout)).Value()
	if err != nil {
		return nil, err
	}

	return &Config{
		ServiceName:    svcName,
		ServiceVersion: svcVersion,
		Environment:    runningEnv,
		Endpoint:       endpoint,
		LogsEndpoint:   logsEndpoint,
		Enabled:        enabled,
		LogsEnabled:    logsEnabled,
		Timeout:        timeout,
	}, nil
}

func newResource(ctx context.Context, config *Config) (*resource.Resource, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
			semconv.ServiceVersionKey.String(config.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	return res, nil
}

// Initialize sets up OpenTelemetry tracing and installs the global tracer
// provider that state machine spans are recorded with.
func Initialize(ctx context.Context, config *Config) error {
	if !config.Enabled {
		slog.Info("OpenTelemetry tracing is disabled")

		return nil
	}

	if config.Endpoint == "" {
		slog.Warn("OpenTelemetry endpoint not configured, tracing will be disabled")

		return nil
	}

	res, err := newResource(ctx, config)
	if err != nil {
		return err
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(config.Endpoint),
		otlptracehttp.WithTimeout(config.Timeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	providersMu.Lock()
	tracerProvider = provider
	providersMu.Unlock()

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	slog.Info("OpenTelemetry tracing initialized",
		"service", config.ServiceName,
		"version", config.ServiceVersion,
		"environment", config.Environment,
		"endpoint", config.Endpoint,
	)

	return nil
}

// InitializeLogs sets up OTLP log export. The returned provider is meant for
// logger.WithLoggerProvider; it is nil when log export is disabled.
func InitializeLogs(ctx context.Context, config *Config) (otellog.LoggerProvider, error) { //nolint:ireturn
	if !config.LogsEnabled || config.LogsEndpoint == "" {
		return nil, nil //nolint:nilnil
	}

	res, err := newResource(ctx, config)
	if err != nil {
		return nil, err
	}

	exporter, err := otlploghttp.New(ctx,
		otlploghttp.WithEndpointURL(config.LogsEndpoint),
		otlploghttp.WithTimeout(config.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP log exporter: %w", err)
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(res),
	)

	providersMu.Lock()
	loggerProvider = provider
	providersMu.Unlock()

	return provider, nil
}

// Shutdown flushes and shuts down whatever Initialize and InitializeLogs set
// up. Calling it again is a no-op.
func Shutdown(ctx context.Context) error {
	providersMu.Lock()
	defer providersMu.Unlock()

	var errs []error

	if tracerProvider != nil {
		slog.Info("Shutting down OpenTelemetry tracer provider")

		errs = append(errs, tracerProvider.Shutdown(ctx))
		tracerProvider = nil
	}

	if loggerProvider != nil {
		errs = append(errs, loggerProvider.Shutdown(ctx))
		loggerProvider = nil
	}

	return errors.Join(errs...)
}
