package statemachine

import (
	"context"
	"time"
)

const (
	handlerUpdate  = "update"
	handlerTrigger = "trigger"
)

// Machine is a pushdown state machine: a stack of states of which only the top
// one is active. States ask for changes by returning a Transition from Update
// or Trigger, and the machine applies them to its stack.
//
// Every operation that changes the stack is a silent no-op while the machine
// is not running. A Machine is not safe for concurrent use; wrap it in Locked
// or drive it from a single goroutine.
type Machine[C any, E comparable] struct {
	name    string
	id      string
	running bool
	stack   []State[C, E]
	events  *Definition[C, E]
	logger  Logger
	metrics bool
	tracing bool
	hooks   []ExecutionHook
}

// New builds a machine whose stack holds initial as its only frame. The
// machine does nothing until Start is called.
func New[C any, E comparable](initial State[C, E], opts ...Option) *Machine[C, E] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	m := &Machine[C, E]{
		name:    o.name,
		id:      o.id,
		logger:  o.logger,
		metrics: o.metrics,
		tracing: o.tracing,
		hooks:   o.hooks,
	}

	if initial != nil {
		m.stack = []State[C, E]{initial}
	}

	return m
}

// Name returns the machine name.
func (m *Machine[C, E]) Name() string {
	return m.name
}

// ID returns the machine instance ID.
func (m *Machine[C, E]) ID() string {
	return m.id
}

// Running reports whether the machine has been started and not yet unwound.
func (m *Machine[C, E]) Running() bool {
	return m.running
}

// Depth returns the number of frames on the stack.
func (m *Machine[C, E]) Depth() int {
	return len(m.stack)
}

// Active returns the top frame, if any.
func (m *Machine[C, E]) Active() (State[C, E], bool) { //nolint:ireturn
	if len(m.stack) == 0 {
		return nil, false
	}

	return m.stack[len(m.stack)-1], true
}

// Frames returns a bottom-to-top snapshot of the stack.
func (m *Machine[C, E]) Frames() []Frame {
	frames := make([]Frame, len(m.stack))

	for i, state := range m.stack {
		frames[i] = Frame{
			Index:  i,
			Name:   StateName(state),
			Active: i == len(m.stack)-1,
		}
	}

	return frames
}

// Start marks the machine running and fires OnStart on the initial state.
// It does nothing if the machine is already running or its stack is empty.
func (m *Machine[C, E]) Start(ctx context.Context, args C) {
	if m.running || len(m.stack) == 0 {
		return
	}

	top := m.stack[len(m.stack)-1]
	top.OnStart(ctx, args)
	m.hookFired(ctx, HookStart, top)

	m.running = true
	m.recordDepth()
}

// Update calls Update on the active state and applies the transition it returns.
func (m *Machine[C, E]) Update(ctx context.Context, args C) {
	if !m.running || len(m.stack) == 0 {
		return
	}

	top := m.stack[len(m.stack)-1]

	ctx, span := m.startHandlerSpan(ctx, handlerUpdate, StateName(top), "")

	begin := time.Now()
	trans := top.Update(ctx, args)
	m.handlerCalled(ctx, handlerUpdate, top, "", trans, time.Since(begin))

	m.dispatch(ctx, trans, args)

	m.endHandlerSpan(span, trans, len(m.stack))
}

// Trigger delivers event to the active state and applies the transition it returns.
func (m *Machine[C, E]) Trigger(ctx context.Context, event E, args C) {
	if !m.running || len(m.stack) == 0 {
		return
	}

	top := m.stack[len(m.stack)-1]
	name := eventName(event)
	m.recordEvent(m.eventLabel(event))

	ctx, span := m.startHandlerSpan(ctx, handlerTrigger, StateName(top), name)

	begin := time.Now()
	trans := top.Trigger(ctx, event, args)
	m.handlerCalled(ctx, handlerTrigger, top, name, trans, time.Since(begin))

	m.dispatch(ctx, trans, args)

	m.endHandlerSpan(span, trans, len(m.stack))
}

// Push pauses the active state and starts state on top of it.
func (m *Machine[C, E]) Push(ctx context.Context, state State[C, E], args C) {
	if state == nil {
		return
	}

	if !m.running {
		m.dropped(ctx, KindPush, state)

		return
	}

	from := m.activeName()

	if len(m.stack) > 0 {
		top := m.stack[len(m.stack)-1]
		top.OnPause(ctx, args)
		m.hookFired(ctx, HookPause, top)
	}

	state.OnStart(ctx, args)
	m.hookFired(ctx, HookStart, state)

	m.stack = append(m.stack, state)
	m.applied(ctx, KindPush, from, state)
}

// Switch stops the active state and starts state in its place. Frames beneath
// are not paused or resumed.
func (m *Machine[C, E]) Switch(ctx context.Context, state State[C, E], args C) {
	if state == nil {
		return
	}

	if !m.running {
		m.dropped(ctx, KindSwitch, state)

		return
	}

	from := m.activeName()

	if top, ok := m.popFrame(); ok {
		top.OnStop(ctx, args)
		m.hookFired(ctx, HookStop, top)
	}

	state.OnStart(ctx, args)
	m.hookFired(ctx, HookStart, state)

	m.stack = append(m.stack, state)
	m.applied(ctx, KindSwitch, from, state)
}

// Pop stops and removes the active state and resumes the one beneath it. Popping
// the last frame stops the machine.
func (m *Machine[C, E]) Pop(ctx context.Context, args C) {
	if !m.running {
		m.dropped(ctx, KindPop, nil)

		return
	}

	from := m.activeName()

	if top, ok := m.popFrame(); ok {
		top.OnStop(ctx, args)
		m.hookFired(ctx, HookStop, top)
	}

	if len(m.stack) > 0 {
		top := m.stack[len(m.stack)-1]
		top.OnResume(ctx, args)
		m.hookFired(ctx, HookResume, top)
	} else {
		m.running = false
	}

	m.applied(ctx, KindPop, from, nil)
}

// Stop unwinds the stack from top to bottom, firing OnStop on every frame,
// and leaves the machine stopped. A stopped machine cannot be restarted.
func (m *Machine[C, E]) Stop(ctx context.Context, args C) {
	if !m.running {
		m.dropped(ctx, KindQuit, nil)

		return
	}

	from := m.activeName()

	for {
		top, ok := m.popFrame()
		if !ok {
			break
		}

		top.OnStop(ctx, args)
		m.hookFired(ctx, HookStop, top)
	}

	m.running = false
	m.applied(ctx, KindQuit, from, nil)
}

// dispatch applies a transition returned by the active state. Every branch is
// gated by running, so a request produced after the machine stopped is dropped.
func (m *Machine[C, E]) dispatch(ctx context.Context, trans Transition[C, E], args C) {
	switch trans.kind {
	case KindNone:
	case KindPop:
		m.Pop(ctx, args)
	case KindPush:
		m.Push(ctx, trans.state, args)
	case KindSwitch:
		m.Switch(ctx, trans.state, args)
	case KindQuit:
		m.Stop(ctx, args)
	}
}

// popFrame removes the top frame and clears its slot so the machine no longer
// references it.
func (m *Machine[C, E]) popFrame() (State[C, E], bool) { //nolint:ireturn
	if len(m.stack) == 0 {
		return nil, false
	}

	last := len(m.stack) - 1
	top := m.stack[last]
	m.stack[last] = nil
	m.stack = m.stack[:last]

	return top, true
}

func (m *Machine[C, E]) activeName() string {
	if len(m.stack) == 0 {
		return ""
	}

	return StateName(m.stack[len(m.stack)-1])
}

// eventLabel is the metric label for event: its name, or "undeclared" when
// the machine was built from a Definition that does not list it.
func (m *Machine[C, E]) eventLabel(event E) string {
	if m.events != nil && !m.events.Has(event) {
		return undeclaredEvent
	}

	return eventName(event)
}

// IsState reports whether the bottom frame (the initial state) has concrete
// type T. It does not look at the active state; use IsActiveState for that.
func IsState[T any, C any, E comparable](m *Machine[C, E]) bool {
	if len(m.stack) == 0 {
		return false
	}

	_, ok := m.stack[0].(T)

	return ok
}

// IsActiveState reports whether the top frame has concrete type T.
func IsActiveState[T any, C any, E comparable](m *Machine[C, E]) bool {
	if len(m.stack) == 0 {
		return false
	}

	_, ok := m.stack[len(m.stack)-1].(T)

	return ok
}
