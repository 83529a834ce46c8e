package driver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alitto/pond/v2"
	"github.com/amp-labs/pushdown/envutil"
	"github.com/amp-labs/pushdown/statemachine"
)

const defaultWorkerCount = 10

// Group ticks many independent machines concurrently. Each machine is
// driven by at most one worker at a time; a tick waits for every machine.
// Machines that stop are removed after the tick that stopped them.
type Group[C any, E comparable] struct {
	pool     pond.Pool
	mu       sync.Mutex
	machines map[string]*statemachine.Locked[C, E]
}

// NewGroup creates a group backed by a pool of workers goroutines.
func NewGroup[C any, E comparable](workers int) *Group[C, E] {
	if workers <= 0 {
		workers = defaultWorkerCount
	}

	return &Group[C, E]{
		pool:     pond.NewPool(workers),
		machines: make(map[string]*statemachine.Locked[C, E]),
	}
}

// NewGroupFromEnv sizes the pool from DRIVER_WORKER_COUNT.
func NewGroupFromEnv[C any, E comparable](ctx context.Context) *Group[C, E] {
	count := envutil.Int(ctx, "DRIVER_WORKER_COUNT",
		envutil.Default(defaultWorkerCount)).ValueOrElse(defaultWorkerCount)

	slog.Debug("Initializing driver worker pool", "count", count)

	return NewGroup[C, E](count)
}

// Add starts machine and adds it to the group, keyed by its ID. A machine
// that does not start is not added. Adding an ID twice replaces the earlier machine.
func (g *Group[C, E]) Add(ctx context.Context, machine *statemachine.Locked[C, E], args C) {
	machine.Start(ctx, args)

	if !machine.Running() {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.machines[machine.ID()] = machine
}

// Len returns the number of running machines in the group.
func (g *Group[C, E]) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.machines)
}

// Tick calls Update on every machine and waits for all of them.
func (g *Group[C, E]) Tick(ctx context.Context, args C) error {
	return g.each(func(m *statemachine.Locked[C, E]) {
		m.Update(ctx, args)
	})
}

// Broadcast delivers event to every machine and waits for all of them.
func (g *Group[C, E]) Broadcast(ctx context.Context, event E, args C) error {
	return g.each(func(m *statemachine.Locked[C, E]) {
		m.Trigger(ctx, event, args)
	})
}

// Stop unwinds every machine, then stops the worker pool. The group cannot
// be used afterwards.
func (g *Group[C, E]) Stop(ctx context.Context, args C) error {
	err := g.each(func(m *statemachine.Locked[C, E]) {
		m.Stop(ctx, args)
	})

	g.pool.StopAndWait()

	return err
}

func (g *Group[C, E]) each(f func(m *statemachine.Locked[C, E])) error {
	g.mu.Lock()

	machines := make([]*statemachine.Locked[C, E], 0, len(g.machines))
	for _, m := range g.machines {
		machines = append(machines, m)
	}

	g.mu.Unlock()

	if len(machines) == 0 {
		return nil
	}

	tasks := g.pool.NewGroup()

	for _, m := range machines {
		tasks.Submit(func() { f(m) })
	}

	if err := tasks.Wait(); err != nil {
		return fmt.Errorf("driver group: %w", err)
	}

	g.prune()

	return nil
}

func (g *Group[C, E]) prune() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for id, m := range g.machines {
		if !m.Running() {
			delete(g.machines, id)
		}
	}
}
