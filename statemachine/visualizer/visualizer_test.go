package visualizer

import (
	"context"
	"strings"
	"testing"

	"github.com/amp-labs/pushdown/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type args struct{}

type event int

type menu struct {
	statemachine.Base[args, event]
}

type level struct {
	statemachine.Base[args, event]
}

type pauseMenu struct {
	statemachine.Base[args, event]
}

func (pauseMenu) Name() string { return "Pause \"menu\"" }

func TestGenerateMermaid(t *testing.T) {
	t.Parallel()

	frames := []statemachine.Frame{
		{Index: 0, Name: "Menu"},
		{Index: 1, Name: "Level"},
		{Index: 2, Name: "Pause", Active: true},
	}

	tests := []struct {
		name           string
		opts           Options
		wantContain    []string
		wantNotContain []string
	}{
		{
			name: "defaults",
			opts: DefaultOptions(),
			wantContain: []string{
				"```mermaid\n",
				"stateDiagram-v2\n",
				"direction TB\n",
				`state "Menu" as f0`,
				"[*] --> f0\n",
				"f0 --> f1: pushed\n",
				"f1 --> f2: pushed\n",
				"class f2 active\n",
				"class f0,f1 paused\n",
				"classDef active",
			},
			wantNotContain: []string{"title:"},
		},
		{
			name: "title, index and direction",
			opts: DefaultOptions().WithTitle("game").WithShowIndex(true).WithDirection("LR"),
			wantContain: []string{
				"---\ntitle: game\n---\n",
				"direction LR\n",
				`state "2: Pause" as f2`,
			},
		},
		{
			name:           "no highlight",
			opts:           DefaultOptions().WithHighlightActive(false),
			wantContain:    []string{"f1 --> f2: pushed"},
			wantNotContain: []string{"classDef", "class f2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := GenerateMermaidWithOptions(frames, tt.opts)
			require.NoError(t, err)

			for _, want := range tt.wantContain {
				assert.Contains(t, out, want)
			}

			for _, notWant := range tt.wantNotContain {
				assert.NotContains(t, out, notWant)
			}

			assert.True(t, strings.HasSuffix(out, "```\n"))
		})
	}
}

func TestGenerateMermaidErrors(t *testing.T) {
	t.Parallel()

	_, err := GenerateMermaid(nil)
	require.ErrorIs(t, err, ErrNoFrames)

	_, err = GenerateMermaidWithOptions([]statemachine.Frame{{Name: "A", Active: true}},
		DefaultOptions().WithDirection("diagonal"))
	require.ErrorIs(t, err, ErrBadDirection)
}

func TestFromMachine(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	m := statemachine.New[args, event](menu{}, statemachine.WithMetrics(false), statemachine.WithTracing(false))
	m.Start(ctx, args{})
	m.Push(ctx, level{}, args{})
	m.Push(ctx, pauseMenu{}, args{})

	out, err := FromMachine(m, DefaultOptions())
	require.NoError(t, err)

	assert.Contains(t, out, `state "menu" as f0`)
	assert.Contains(t, out, `state "level" as f1`)
	assert.Contains(t, out, `state "Pause 'menu'" as f2`)
	assert.Contains(t, out, "class f2 active")

	m.Stop(ctx, args{})

	_, err = FromMachine(m, DefaultOptions())
	require.ErrorIs(t, err, ErrNoFrames)
}

func TestGenerateHistory(t *testing.T) {
	t.Parallel()

	var events []statemachine.ExecutionEvent

	ctx := t.Context()
	m := statemachine.New[args, event](menu{},
		statemachine.WithMetrics(false),
		statemachine.WithTracing(false),
		statemachine.WithExecutionHook(func(_ context.Context, ev statemachine.ExecutionEvent) {
			events = append(events, ev)
		}),
	)

	m.Start(ctx, args{})
	m.Switch(ctx, level{}, args{})
	m.Push(ctx, pauseMenu{}, args{})
	m.Pop(ctx, args{})
	m.Push(ctx, pauseMenu{}, args{})
	m.Stop(ctx, args{})

	out, err := GenerateHistory(events, DefaultOptions())
	require.NoError(t, err)

	assert.Contains(t, out, "[*] --> menu: start\n")
	assert.Contains(t, out, "menu --> level: switch\n")
	assert.Contains(t, out, "level --> Pause__menu_: push\n")
	assert.Contains(t, out, "Pause__menu_ --> [*]: quit\n")
	assert.Equal(t, 1, strings.Count(out, "level --> Pause__menu_: push"), "edges are deduplicated")

	_, err = GenerateHistory(nil, DefaultOptions())
	require.ErrorIs(t, err, ErrNoTransitions)
}
