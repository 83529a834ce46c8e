// Package driver runs pushdown state machines: a Loop feeds one machine
// ticks and events from a single goroutine, a Group ticks many machines
// concurrently on a worker pool.
package driver

import (
	"context"
	"errors"
	"time"

	"github.com/amp-labs/pushdown/envutil"
	"github.com/amp-labs/pushdown/logger"
	"github.com/amp-labs/pushdown/statemachine"
)

const (
	defaultInterval    = 100 * time.Millisecond
	defaultEventBuffer = 16
)

// ErrLoopStopped is returned by Send once the loop has returned.
var ErrLoopStopped = errors.New("loop stopped")

// Tick describes one iteration of a Loop.
type Tick struct {
	// Number is 0 for Start and counts updates from 1.
	Number int64
	// Delta is the time since the previous tick.
	Delta time.Duration
	Time  time.Time
}

// ArgsFunc builds the extra parameters passed to the machine on a tick.
type ArgsFunc[C any] func(tick Tick) C

// Loop drives one machine: Start, then Update on every tick and Trigger for
// every event sent, until the machine stops or the context is canceled.
type Loop[C any, E comparable] struct {
	machine  *statemachine.Locked[C, E]
	args     ArgsFunc[C]
	interval time.Duration
	events   chan E
	done     chan struct{}
}

type loopConfig struct {
	interval time.Duration
	buffer   int
}

// LoopOption configures a Loop.
type LoopOption func(*loopConfig)

// WithInterval sets the time between updates.
func WithInterval(interval time.Duration) LoopOption {
	return func(c *loopConfig) {
		if interval > 0 {
			c.interval = interval
		}
	}
}

// WithEventBuffer sets how many events Send can queue before it blocks.
func WithEventBuffer(size int) LoopOption {
	return func(c *loopConfig) {
		if size >= 0 {
			c.buffer = size
		}
	}
}

// IntervalFromEnv reads the tick interval from DRIVER_TICK_INTERVAL.
func IntervalFromEnv(ctx context.Context) LoopOption {
	return WithInterval(envutil.Duration(ctx, "DRIVER_TICK_INTERVAL",
		envutil.Default(defaultInterval)).ValueOrElse(defaultInterval))
}

// NewLoop creates a loop around machine. args may be nil, in which case the
// zero C is passed on every call.
func NewLoop[C any, E comparable](
	machine *statemachine.Locked[C, E],
	args ArgsFunc[C],
	opts ...LoopOption,
) *Loop[C, E] {
	config := &loopConfig{
		interval: defaultInterval,
		buffer:   defaultEventBuffer,
	}

	for _, opt := range opts {
		opt(config)
	}

	if args == nil {
		args = func(Tick) C {
			var zero C

			return zero
		}
	}

	return &Loop[C, E]{
		machine:  machine,
		args:     args,
		interval: config.interval,
		events:   make(chan E, config.buffer),
		done:     make(chan struct{}),
	}
}

// Send queues event for delivery to the active state. It blocks while the
// queue is full and fails once the loop has returned or ctx is done.
func (l *Loop[C, E]) Send(ctx context.Context, event E) error {
	select {
	case <-l.done:
		return ErrLoopStopped
	default:
	}

	select {
	case l.events <- event:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (l *Loop[C, E]) Done() <-chan struct{} {
	return l.done
}

// Run starts the machine and drives it until it stops, returning nil, or
// until ctx is canceled, in which case the machine is stopped and ctx's
// error is returned. Run must be called at most once.
func (l *Loop[C, E]) Run(ctx context.Context) error {
	defer close(l.done)

	log := logger.Get(ctx)

	last := time.Now()
	tick := Tick{Time: last}

	l.machine.Start(ctx, l.args(tick))

	if !l.machine.Running() {
		log.Debug("Machine did not start", "machine", l.machine.Name())

		return nil
	}

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			stopCtx := context.WithoutCancel(ctx)
			l.machine.Stop(stopCtx, l.args(Tick{Number: tick.Number, Time: time.Now()}))

			log.Debug("Loop canceled, machine stopped", "machine", l.machine.Name(), "ticks", tick.Number)

			return ctx.Err()
		case event := <-l.events:
			l.machine.Trigger(ctx, event, l.args(Tick{Number: tick.Number, Time: time.Now()}))
		case now := <-ticker.C:
			tick = Tick{
				Number: tick.Number + 1,
				Delta:  now.Sub(last),
				Time:   now,
			}
			last = now

			l.machine.Update(ctx, l.args(tick))
		}

		if !l.machine.Running() {
			log.Debug("Machine stopped, loop finished", "machine", l.machine.Name(), "ticks", tick.Number)

			return nil
		}
	}
}
