package demo

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/amp-labs/pushdown/cli"
	"github.com/amp-labs/pushdown/driver"
	"github.com/amp-labs/pushdown/logger"
	"github.com/amp-labs/pushdown/statemachine"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const metricsShutdownTimeout = 2 * time.Second

// playOptions holds options for the play command.
type playOptions struct {
	metricsAddr string
}

func (a *App) newPlayCmd() *cobra.Command {
	opts := &playOptions{}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a session from the keyboard",
		Long: `Play a session interactively. The active state is ticked in the background
(DRIVER_TICK_INTERVAL, default 100ms) while you pick the next event.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.play(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")

	return cmd
}

func (a *App) play(ctx context.Context, opts *playOptions) error {
	machineOpts, err := a.machineOptions()
	if err != nil {
		return err
	}

	if opts.metricsAddr != "" {
		stop, err := serveMetrics(ctx, opts.metricsAddr)
		if err != nil {
			return err
		}

		defer stop()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	machine := statemachine.NewLocked(Game.New(&Menu{}, machineOpts...))
	argsFor := func(tick driver.Tick) Args { return Args{Tick: tick, Out: a.stdout} }
	loop := driver.NewLoop(machine, argsFor, driver.IntervalFromEnv(ctx))

	loopErr := make(chan error, 1)

	go func() { loopErr <- loop.Run(ctx) }()

	for {
		select {
		case err := <-loopErr:
			return ignoreCanceled(err)
		default:
		}

		if !machine.Running() {
			// Not started yet, or unwound and about to be reported by the loop.
			time.Sleep(time.Millisecond)

			continue
		}

		var (
			choices []Event
			frames  []statemachine.Frame
		)

		machine.Do(func(m *statemachine.Machine[Args, Event]) {
			if top, ok := m.Active(); ok {
				choices = choicesFor(top)
			}

			frames = m.Frames()
		})

		_, _ = fmt.Fprint(a.stdout, cli.BannerAutoWidth(ctx, stackLine(frames), cli.AlignCenter))

		picked, err := cli.Select("What now?", eventNames(choices)...)
		if err != nil {
			cancel()

			return errors.Join(err, ignoreCanceled(<-loopErr))
		}

		ev := Event(picked)

		if ev == EventQuit {
			sure, err := cli.PromptConfirm("Really quit")
			if err != nil || !sure {
				continue
			}
		}

		// Events go straight to the machine so the next prompt sees their effect.
		machine.Trigger(ctx, ev, Args{Out: a.stdout})

		if !machine.Running() {
			return ignoreCanceled(<-loopErr)
		}
	}
}

func stackLine(frames []statemachine.Frame) string {
	names := make([]string, len(frames))
	for i, f := range frames {
		names[i] = f.Name
	}

	return strings.Join(names, " > ")
}

func eventNames(events []Event) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = string(ev)
	}

	return out
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

// serveMetrics exposes the default Prometheus registry on addr until the
// returned stop function is called.
func serveMetrics(ctx context.Context, addr string) (func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: metricsShutdownTimeout,
	}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Get(ctx).Error("Metrics server failed", "error", err)
		}
	}()

	logger.Get(ctx).Info("Serving metrics", "addr", listener.Addr().String())

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricsShutdownTimeout)
		defer cancel()

		_ = server.Shutdown(shutdownCtx)
	}, nil
}
