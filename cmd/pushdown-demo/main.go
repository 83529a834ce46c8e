// Command pushdown-demo drives the demo state machine session.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/amp-labs/pushdown/envutil"
	"github.com/amp-labs/pushdown/internal/demo"
	"github.com/amp-labs/pushdown/logger"
	"github.com/amp-labs/pushdown/shutdown"
	"github.com/amp-labs/pushdown/telemetry"
)

const appName = "pushdown-demo"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := shutdown.SetupHandler(context.Background())
	defer stop()

	if _, err := logger.ConfigureLogging(ctx, appName); err != nil {
		return err
	}

	env := envutil.String(ctx, "PUSHDOWN_ENV", envutil.Default("dev")).ValueOrElse("dev")

	config, err := telemetry.LoadConfigFromEnv(ctx, env)
	if err != nil {
		return err
	}

	if err := telemetry.Initialize(ctx, config); err != nil {
		return err
	}

	provider, err := telemetry.InitializeLogs(ctx, config)
	if err != nil {
		return err
	}

	if provider != nil {
		// Reconfigure so every record is also exported over OTLP.
		if _, err := logger.ConfigureLogging(ctx, appName, logger.WithLoggerProvider(provider)); err != nil {
			return err
		}
	}

	flush := func() {
		if err := telemetry.Shutdown(context.WithoutCancel(ctx)); err != nil {
			slog.Error("Failed to flush telemetry", "error", err)
		}
	}

	shutdown.BeforeShutdown(flush)
	defer flush()

	return demo.New().Execute(ctx)
}
