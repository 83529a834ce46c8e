package statemachine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type plainEvent string

func TestDefinition(t *testing.T) {
	t.Parallel()

	def := Define[testArgs]("game", plainEvent("go"), plainEvent("stop"))

	assert.Equal(t, "game", def.Name())
	assert.Equal(t, []plainEvent{"go", "stop"}, def.Events())
	assert.True(t, def.Has("go"))
	assert.False(t, def.Has("jump"))
	assert.Equal(t, "stop", def.EventName("stop"))

	events := def.Events()
	events[0] = "mutated"

	assert.True(t, def.Has("go"), "Events must return a copy")
}

func TestDefinitionEventNameUsesStringer(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pause", testDef.EventName(evPause))
	assert.Equal(t, "event(42)", testDef.EventName(testEvent(42)))
}

func TestDefinitionWithOptions(t *testing.T) {
	t.Parallel()

	def := testDef.WithOptions(WithMetrics(false), WithTracing(false), WithID("from-def"))
	m := def.New(stateA{newRec("A", &journal{})}, WithID("from-new"))

	assert.Equal(t, "test", m.Name())
	assert.Equal(t, "from-new", m.ID())
	assert.False(t, m.metrics)
	assert.False(t, m.tracing)

	// The original definition is unchanged.
	assert.Empty(t, testDef.options)
}

func TestTransitions(t *testing.T) {
	t.Parallel()

	b := stateB{newRec("B", &journal{})}

	tests := []struct {
		name     string
		trans    Transition[testArgs, testEvent]
		kind     TransitionKind
		hasState bool
		rendered string
	}{
		{"zero value", Transition[testArgs, testEvent]{}, KindNone, false, "none"},
		{"none", testDef.None(), KindNone, false, "none"},
		{"pop", testDef.Pop(), KindPop, false, "pop"},
		{"quit", testDef.Quit(), KindQuit, false, "quit"},
		{"push", testDef.Push(b), KindPush, true, "push(B)"},
		{"switch", testDef.Switch(b), KindSwitch, true, "switch(B)"},
		{"package push", Push[testArgs, testEvent](b), KindPush, true, "push(B)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.kind, tt.trans.Kind())
			assert.Equal(t, tt.kind == KindNone, tt.trans.IsNone())
			assert.Equal(t, tt.hasState, tt.trans.State() != nil)
			assert.Equal(t, tt.rendered, tt.trans.String())
		})
	}
}

func TestTransitionKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "none", KindNone.String())
	assert.Equal(t, "pop", KindPop.String())
	assert.Equal(t, "push", KindPush.String())
	assert.Equal(t, "switch", KindSwitch.String())
	assert.Equal(t, "quit", KindQuit.String())
	assert.Equal(t, "unknown", TransitionKind(99).String())
}

type unnamed struct {
	Base[testArgs, testEvent]
}

func TestStateName(t *testing.T) {
	t.Parallel()

	assert.Empty(t, StateName(nil))
	assert.Equal(t, "A", StateName(stateA{newRec("A", &journal{})}))
	assert.Equal(t, "unnamed", StateName(unnamed{}))
	assert.Equal(t, "unnamed", StateName(&unnamed{}))
}

func TestBaseIsNoop(t *testing.T) {
	t.Parallel()

	j := &journal{}
	ctx := t.Context()
	m := New[testArgs, testEvent](&unnamed{}, quietOpts()...)

	m.Start(ctx, testArgs{})
	m.Update(ctx, testArgs{})
	m.Trigger(ctx, evPause, testArgs{})

	assert.True(t, m.Running())
	assert.Equal(t, 1, m.Depth())

	m.Push(ctx, stateB{newRec("B", j)}, testArgs{})
	m.Pop(ctx, testArgs{})

	assert.Equal(t, []string{"B.on_start", "B.on_stop"}, j.entries)
	assert.True(t, IsActiveState[*unnamed](m))
}
