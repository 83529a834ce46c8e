// Package shutdown turns SIGINT/SIGTERM into context cancellation and runs
// registered cleanup hooks before the context is canceled.
package shutdown

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	mut   sync.Mutex //nolint:gochecknoglobals
	hooks []func()   //nolint:gochecknoglobals
)

// BeforeShutdown registers h to run when a shutdown is triggered, while the
// context returned by SetupHandler is still alive. Hooks run in registration order.
func BeforeShutdown(h func()) {
	mut.Lock()
	defer mut.Unlock()

	hooks = append(hooks, h)
}

// SetupHandler returns a context derived from parent that is canceled on
// SIGINT or SIGTERM, after the registered hooks have run. The returned stop
// function releases the signal handler without running the hooks.
func SetupHandler(parent context.Context) (context.Context, context.CancelFunc) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(parent)

	go func() {
		select {
		case sig := <-signals:
			slog.Warn("Received " + sig.String() + ", shutting down...")
			cleanup()
			cancel()
		case <-ctx.Done():
		}

		signal.Stop(signals)
	}()

	return ctx, cancel
}

func cleanup() {
	mut.Lock()
	pending := hooks
	hooks = nil
	mut.Unlock()

	for _, h := range pending {
		h()
	}
}
