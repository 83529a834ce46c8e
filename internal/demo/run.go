package demo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/amp-labs/pushdown/driver"
	"github.com/amp-labs/pushdown/statemachine"
	"github.com/amp-labs/pushdown/statemachine/visualizer"
	"github.com/spf13/cobra"
)

var (
	ErrEmptyScript  = errors.New("script has no events")
	ErrUnknownEvent = errors.New("unknown event")
	ErrBadSessions  = errors.New("sessions must be at least 1")
)

// runOptions holds options for the run command.
type runOptions struct {
	script   string
	sessions int
	ticks    int
	diagram  bool
}

func (a *App) newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a scripted session",
		Long: `Run one or more sessions side by side, feeding them the same scripted events.

After each event every session is ticked --ticks times. Sessions that quit
early are dropped; the rest are stopped when the script ends.

Examples:
  # Play, pause, resume and quit
  pushdown-demo run --script play,pause,resume,quit

  # Let a level run out and print the transition history
  pushdown-demo run --script play --ticks 25 --diagram

  # Eight sessions ticked concurrently
  pushdown-demo run --script play,menu,play --sessions 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScript(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.script, "script", "s", "play,pause,resume,quit", "Comma-separated events")
	cmd.Flags().IntVar(&opts.sessions, "sessions", 1, "Number of concurrent sessions")
	cmd.Flags().IntVar(&opts.ticks, "ticks", 1, "Updates after each event")
	cmd.Flags().BoolVar(&opts.diagram, "diagram", false, "Print a Mermaid diagram of the first session's transitions")

	return cmd
}

// parseScript splits a comma-separated list of events and checks each one.
func parseScript(script string) ([]Event, error) {
	var events []Event

	for part := range strings.SplitSeq(script, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}

		ev := Event(name)
		if !Game.Has(ev) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
		}

		events = append(events, ev)
	}

	if len(events) == 0 {
		return nil, ErrEmptyScript
	}

	return events, nil
}

// syncWriter lets concurrently ticked sessions share one output.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.w.Write(p)
}

func (a *App) runScript(ctx context.Context, opts *runOptions) error {
	events, err := parseScript(opts.script)
	if err != nil {
		return err
	}

	if opts.sessions < 1 {
		return ErrBadSessions
	}

	machineOpts, err := a.machineOptions()
	if err != nil {
		return err
	}

	var (
		historyMu sync.Mutex
		history   []statemachine.ExecutionEvent
	)

	recordHistory := statemachine.WithExecutionHook(func(_ context.Context, ev statemachine.ExecutionEvent) {
		historyMu.Lock()
		defer historyMu.Unlock()

		history = append(history, ev)
	})

	// Narration only makes sense for a single session.
	var out io.Writer
	if opts.sessions == 1 {
		out = &syncWriter{w: a.stdout}
	}

	group := driver.NewGroupFromEnv[Args, Event](ctx)

	var tickNumber int64

	args := func() Args {
		return Args{Tick: driver.Tick{Number: tickNumber, Time: time.Now()}, Out: out}
	}

	for i := range opts.sessions {
		sessionOpts := machineOpts
		if i == 0 {
			sessionOpts = append(append([]statemachine.Option(nil), machineOpts...), recordHistory)
		}

		group.Add(ctx, statemachine.NewLocked(Game.New(&Menu{}, sessionOpts...)), args())
	}

	for _, ev := range events {
		if group.Len() == 0 {
			break
		}

		if err := group.Broadcast(ctx, ev, args()); err != nil {
			return err
		}

		for range opts.ticks {
			if group.Len() == 0 {
				break
			}

			tickNumber++

			if err := group.Tick(ctx, args()); err != nil {
				return err
			}
		}
	}

	running := group.Len()

	if err := group.Stop(ctx, args()); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(a.stdout, "%d of %d sessions quit on their own after %d ticks\n",
		opts.sessions-running, opts.sessions, tickNumber)

	if opts.diagram {
		historyMu.Lock()
		diagram, err := visualizer.GenerateHistory(history, visualizer.DefaultOptions().WithTitle("session 1"))
		historyMu.Unlock()

		if err != nil {
			return fmt.Errorf("failed to render diagram: %w", err)
		}

		_, _ = fmt.Fprint(a.stdout, diagram)
	}

	return nil
}
