package statemachine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedMachine(t *testing.T, j *journal) (*Machine[testArgs, testEvent], stateA) {
	t.Helper()

	a := stateA{newRec("A", j)}
	m := testDef.New(a, quietOpts()...)
	m.Start(t.Context(), testArgs{})

	require.True(t, m.Running())

	return m, a
}

func TestOperationsBeforeStartAreNoops(t *testing.T) {
	t.Parallel()

	j := &journal{}
	ctx := t.Context()
	m := testDef.New(stateA{newRec("A", j)}, quietOpts()...)

	m.Update(ctx, testArgs{})
	m.Trigger(ctx, evPause, testArgs{})
	m.Push(ctx, stateB{newRec("B", j)}, testArgs{})
	m.Switch(ctx, stateC{newRec("C", j)}, testArgs{})
	m.Pop(ctx, testArgs{})
	m.Stop(ctx, testArgs{})

	assert.Empty(t, j.entries)
	assert.False(t, m.Running())
	assert.Equal(t, 1, m.Depth())
	assert.True(t, IsActiveState[stateA](m))
}

func TestStartFiresOnce(t *testing.T) {
	t.Parallel()

	j := &journal{}
	m, _ := startedMachine(t, j)

	m.Start(t.Context(), testArgs{})

	assert.Equal(t, []string{"A.on_start"}, j.entries)
	assert.True(t, m.Running())
}

func TestStartOnEmptyStack(t *testing.T) {
	t.Parallel()

	m := New[testArgs, testEvent](nil, quietOpts()...)
	m.Start(t.Context(), testArgs{})

	assert.False(t, m.Running())
	assert.Equal(t, 0, m.Depth())
	assert.False(t, IsState[stateA](m))
	assert.False(t, IsActiveState[stateA](m))

	_, ok := m.Active()
	assert.False(t, ok)
}

func TestPushThenPop(t *testing.T) {
	t.Parallel()

	j := &journal{}
	ctx := t.Context()
	m, _ := startedMachine(t, j)

	m.Push(ctx, stateB{newRec("B", j)}, testArgs{})

	assert.Equal(t, []string{"A.on_start", "A.on_pause", "B.on_start"}, j.entries)
	assert.True(t, m.Running())
	assert.Equal(t, 2, m.Depth())
	assert.True(t, IsActiveState[stateB](m))

	m.Pop(ctx, testArgs{})

	assert.Equal(t, []string{
		"A.on_start", "A.on_pause", "B.on_start",
		"B.on_stop", "A.on_resume",
	}, j.entries)
	assert.True(t, m.Running())
	assert.Equal(t, 1, m.Depth())
	assert.True(t, IsActiveState[stateA](m))
}

func TestPopLastFrameStopsMachine(t *testing.T) {
	t.Parallel()

	j := &journal{}
	ctx := t.Context()
	m, _ := startedMachine(t, j)

	m.Pop(ctx, testArgs{})

	assert.Equal(t, []string{"A.on_start", "A.on_stop"}, j.entries)
	assert.False(t, m.Running())
	assert.Equal(t, 0, m.Depth())

	// One-shot: nothing can revive it.
	m.Start(ctx, testArgs{})
	m.Update(ctx, testArgs{})

	assert.False(t, m.Running())
	assert.Len(t, j.entries, 2)
}

func TestSwitchReplacesTopWithoutPauseOrResume(t *testing.T) {
	t.Parallel()

	j := &journal{}
	m, _ := startedMachine(t, j)

	m.Switch(t.Context(), stateB{newRec("B", j)}, testArgs{})

	assert.Equal(t, []string{"A.on_start", "A.on_stop", "B.on_start"}, j.entries)
	assert.Equal(t, 1, m.Depth())
	assert.True(t, m.Running())
	assert.True(t, IsActiveState[stateB](m))
}

func TestSwitchLeavesLowerFramesAlone(t *testing.T) {
	t.Parallel()

	j := &journal{}
	ctx := t.Context()
	m, _ := startedMachine(t, j)

	m.Push(ctx, stateB{newRec("B", j)}, testArgs{})
	m.Switch(ctx, stateC{newRec("C", j)}, testArgs{})

	assert.Equal(t, []string{
		"A.on_start", "A.on_pause", "B.on_start",
		"B.on_stop", "C.on_start",
	}, j.entries)
	assert.Equal(t, 2, m.Depth())
	assert.True(t, IsState[stateA](m))
	assert.True(t, IsActiveState[stateC](m))
}

func TestStopUnwindsTopToBottom(t *testing.T) {
	t.Parallel()

	j := &journal{}
	ctx := t.Context()
	m, _ := startedMachine(t, j)

	m.Push(ctx, stateB{newRec("B", j)}, testArgs{})
	m.Push(ctx, stateC{newRec("C", j)}, testArgs{})

	j.entries = nil

	m.Stop(ctx, testArgs{})

	assert.Equal(t, []string{"C.on_stop", "B.on_stop", "A.on_stop"}, j.entries)
	assert.False(t, m.Running())
	assert.Equal(t, 0, m.Depth())
}

func TestQuitMatchesStop(t *testing.T) {
	t.Parallel()

	build := func(t *testing.T, quitVia func(m *Machine[testArgs, testEvent], c *recState)) []string {
		t.Helper()

		j := &journal{}
		ctx := t.Context()
		m, _ := startedMachine(t, j)

		m.Push(ctx, stateB{newRec("B", j)}, testArgs{})

		c := newRec("C", j)
		m.Push(ctx, stateC{c}, testArgs{})

		quitVia(m, c)

		assert.False(t, m.Running())
		assert.Equal(t, 0, m.Depth())

		return j.entries
	}

	direct := build(t, func(m *Machine[testArgs, testEvent], _ *recState) {
		m.Stop(t.Context(), testArgs{})
	})

	fromUpdate := build(t, func(m *Machine[testArgs, testEvent], c *recState) {
		c.onUpdate = func(testArgs) Transition[testArgs, testEvent] { return testDef.Quit() }
		m.Update(t.Context(), testArgs{})
	})

	fromTrigger := build(t, func(m *Machine[testArgs, testEvent], c *recState) {
		c.onTrigger = func(ev testEvent, _ testArgs) Transition[testArgs, testEvent] {
			if ev == evQuit {
				return testDef.Quit()
			}

			return testDef.None()
		}
		m.Trigger(t.Context(), evQuit, testArgs{})
	})

	// The handler call itself is the only extra entry.
	assert.Equal(t, direct, withoutEntry(fromUpdate, "C.update"))
	assert.Equal(t, direct, withoutEntry(fromTrigger, "C.trigger(quit)"))
}

func withoutEntry(entries []string, drop string) []string {
	out := make([]string, 0, len(entries))

	for _, e := range entries {
		if e != drop {
			out = append(out, e)
		}
	}

	return out
}

func TestUpdateDispatchesTransitions(t *testing.T) {
	t.Parallel()

	j := &journal{}
	ctx := t.Context()

	a := newRec("A", j)
	b := newRec("B", j)
	c := newRec("C", j)

	a.onUpdate = func(testArgs) Transition[testArgs, testEvent] { return testDef.Push(stateB{b}) }
	b.onUpdate = func(testArgs) Transition[testArgs, testEvent] { return testDef.Switch(stateC{c}) }
	c.onUpdate = func(testArgs) Transition[testArgs, testEvent] { return testDef.Pop() }

	m := testDef.New(stateA{a}, quietOpts()...)
	m.Start(ctx, testArgs{})

	m.Update(ctx, testArgs{})
	assert.True(t, IsActiveState[stateB](m))

	m.Update(ctx, testArgs{})
	assert.True(t, IsActiveState[stateC](m))
	assert.Equal(t, 2, m.Depth())

	m.Update(ctx, testArgs{})
	assert.True(t, IsActiveState[stateA](m))
	assert.Equal(t, 1, m.Depth())

	assert.Equal(t, []string{
		"A.on_start",
		"A.update", "A.on_pause", "B.on_start",
		"B.update", "B.on_stop", "C.on_start",
		"C.update", "C.on_stop", "A.on_resume",
	}, j.entries)
}

func TestOnlyActiveStateReceivesCalls(t *testing.T) {
	t.Parallel()

	j := &journal{}
	ctx := t.Context()
	m, _ := startedMachine(t, j)

	m.Push(ctx, stateB{newRec("B", j)}, testArgs{})

	j.entries = nil

	m.Update(ctx, testArgs{Tick: 1})
	m.Trigger(ctx, evPause, testArgs{Tick: 2})

	assert.Equal(t, []string{"B.update", "B.trigger(pause)"}, j.entries)
}

func TestArgsForwardedUnchanged(t *testing.T) {
	t.Parallel()

	j := &journal{}
	ctx := t.Context()

	var seen []int

	a := newRec("A", j)
	a.onUpdate = func(args testArgs) Transition[testArgs, testEvent] {
		seen = append(seen, args.Tick)

		return testDef.None()
	}
	a.onTrigger = func(_ testEvent, args testArgs) Transition[testArgs, testEvent] {
		seen = append(seen, args.Tick)

		return testDef.None()
	}

	m := testDef.New(stateA{a}, quietOpts()...)
	m.Start(ctx, testArgs{})
	m.Update(ctx, testArgs{Tick: 7})
	m.Trigger(ctx, evResume, testArgs{Tick: 8})

	assert.Equal(t, []int{7, 8}, seen)
}

func TestIsStateChecksBottomFrame(t *testing.T) {
	t.Parallel()

	j := &journal{}
	ctx := t.Context()
	m, _ := startedMachine(t, j)

	m.Push(ctx, stateB{newRec("B", j)}, testArgs{})
	m.Push(ctx, stateC{newRec("C", j)}, testArgs{})

	assert.True(t, IsState[stateA](m))
	assert.False(t, IsState[stateB](m))
	assert.False(t, IsState[stateC](m))

	assert.True(t, IsActiveState[stateC](m))
	assert.False(t, IsActiveState[stateA](m))
}

func TestRequestsAfterStopAreDropped(t *testing.T) {
	t.Parallel()

	j := &journal{}
	ctx := t.Context()
	m, _ := startedMachine(t, j)

	m.Stop(ctx, testArgs{})

	before := append([]string(nil), j.entries...)

	m.Update(ctx, testArgs{})
	m.Trigger(ctx, evResume, testArgs{})
	m.Push(ctx, stateB{newRec("B", j)}, testArgs{})
	m.Switch(ctx, stateC{newRec("C", j)}, testArgs{})
	m.Pop(ctx, testArgs{})
	m.Stop(ctx, testArgs{})

	assert.Equal(t, before, j.entries)
	assert.False(t, m.Running())
	assert.Equal(t, 0, m.Depth())
}

// Once Quit has unwound the stack, later requests are recorded as dropped and
// never reach a state.
func TestDispatchDroppedAfterQuit(t *testing.T) {
	t.Parallel()

	j := &journal{}
	ctx := t.Context()

	var events []ExecutionEvent

	a := newRec("A", j)
	a.onUpdate = func(testArgs) Transition[testArgs, testEvent] { return testDef.Quit() }

	m := testDef.New(stateA{a}, append(quietOpts(), WithExecutionHook(func(_ context.Context, ev ExecutionEvent) {
		events = append(events, ev)
	}))...)

	m.Start(ctx, testArgs{})
	m.Update(ctx, testArgs{})

	require.False(t, m.Running())

	m.Push(ctx, stateB{newRec("B", j)}, testArgs{})

	assert.Equal(t, []string{"A.on_start", "A.update", "A.on_stop"}, j.entries)

	last := events[len(events)-1]
	assert.Equal(t, EventRequestDropped, last.Type)
	assert.Equal(t, KindPush, last.Transition)
	assert.Equal(t, "B", last.Target)
}

func TestNilStateIgnored(t *testing.T) {
	t.Parallel()

	j := &journal{}
	ctx := t.Context()
	m, _ := startedMachine(t, j)

	m.Push(ctx, nil, testArgs{})
	m.Switch(ctx, nil, testArgs{})

	assert.Equal(t, []string{"A.on_start"}, j.entries)
	assert.Equal(t, 1, m.Depth())
}

func TestFrames(t *testing.T) {
	t.Parallel()

	j := &journal{}
	ctx := t.Context()
	m, _ := startedMachine(t, j)

	m.Push(ctx, stateB{newRec("B", j)}, testArgs{})

	assert.Equal(t, []Frame{
		{Index: 0, Name: "A", Active: false},
		{Index: 1, Name: "B", Active: true},
	}, m.Frames())

	top, ok := m.Active()
	require.True(t, ok)
	assert.Equal(t, "B", StateName(top))
}

func TestMachineIdentity(t *testing.T) {
	t.Parallel()

	m := testDef.New(stateA{newRec("A", &journal{})}, WithID("fixed"))
	assert.Equal(t, "test", m.Name())
	assert.Equal(t, "fixed", m.ID())

	other := New[testArgs, testEvent](stateA{newRec("A", &journal{})})
	assert.Equal(t, "statemachine", other.Name())
	assert.NotEmpty(t, other.ID())
	assert.NotEqual(t, m.ID(), other.ID())
}
