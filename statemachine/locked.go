package statemachine

import (
	"context"
	"sync"

	"go.uber.org/atomic"
)

// Locked serializes every operation on a machine behind a single mutex held
// for the whole operation, so a dispatch and the hooks it fires are observed
// as one unit. Running can be read without taking the lock.
//
// States must not call back into the Locked that drives them; they request
// stack changes by returning a Transition.
type Locked[C any, E comparable] struct {
	mu      sync.Mutex
	machine *Machine[C, E]
	running *atomic.Bool
}

// NewLocked wraps machine. The caller must stop using machine directly.
func NewLocked[C any, E comparable](machine *Machine[C, E]) *Locked[C, E] {
	return &Locked[C, E]{
		machine: machine,
		running: atomic.NewBool(machine.Running()),
	}
}

// Name returns the machine name.
func (l *Locked[C, E]) Name() string {
	return l.machine.Name()
}

// ID returns the machine instance ID.
func (l *Locked[C, E]) ID() string {
	return l.machine.ID()
}

// Running reports whether the machine was running after the last completed operation.
func (l *Locked[C, E]) Running() bool {
	return l.running.Load()
}

// Do runs f with exclusive access to the machine.
func (l *Locked[C, E]) Do(f func(m *Machine[C, E])) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f(l.machine)
	l.running.Store(l.machine.Running())
}

func (l *Locked[C, E]) Start(ctx context.Context, args C) {
	l.Do(func(m *Machine[C, E]) { m.Start(ctx, args) })
}

func (l *Locked[C, E]) Update(ctx context.Context, args C) {
	l.Do(func(m *Machine[C, E]) { m.Update(ctx, args) })
}

func (l *Locked[C, E]) Trigger(ctx context.Context, event E, args C) {
	l.Do(func(m *Machine[C, E]) { m.Trigger(ctx, event, args) })
}

func (l *Locked[C, E]) Push(ctx context.Context, state State[C, E], args C) {
	l.Do(func(m *Machine[C, E]) { m.Push(ctx, state, args) })
}

func (l *Locked[C, E]) Switch(ctx context.Context, state State[C, E], args C) {
	l.Do(func(m *Machine[C, E]) { m.Switch(ctx, state, args) })
}

func (l *Locked[C, E]) Pop(ctx context.Context, args C) {
	l.Do(func(m *Machine[C, E]) { m.Pop(ctx, args) })
}

func (l *Locked[C, E]) Stop(ctx context.Context, args C) {
	l.Do(func(m *Machine[C, E]) { m.Stop(ctx, args) })
}

// Depth returns the number of frames on the stack.
func (l *Locked[C, E]) Depth() int {
	var depth int

	l.Do(func(m *Machine[C, E]) { depth = m.Depth() })

	return depth
}

// Frames returns a bottom-to-top snapshot of the stack.
func (l *Locked[C, E]) Frames() []Frame {
	var frames []Frame

	l.Do(func(m *Machine[C, E]) { frames = m.Frames() })

	return frames
}
