package statemachine

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any

	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}

		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))

		out = append(out, entry)
	}

	return out
}

func TestDefaultLoggerLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	j := &journal{}
	ctx := t.Context()
	m := testDef.New(stateA{newRec("A", j)}, append(quietOpts(), WithLogger(NewSlogLogger(l)))...)

	m.Start(ctx, testArgs{})
	m.Push(ctx, stateB{newRec("B", j)}, testArgs{})

	// Hooks log at debug, below the handler level; only the push is written.
	lines := jsonLines(t, &buf)
	require.Len(t, lines, 1)

	assert.Equal(t, "Transition applied", lines[0]["msg"])
	assert.Equal(t, "test", lines[0]["machine"])
	assert.Equal(t, "push", lines[0]["kind"])
	assert.Equal(t, "A", lines[0]["from"])
	assert.Equal(t, "B", lines[0]["to"])
	assert.InDelta(t, 2, lines[0]["depth"], 0)
}

func TestDefaultLoggerHookLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	m := testDef.New(stateA{newRec("A", &journal{})},
		append(quietOpts(), WithLogger(NewSlogLogger(l).WithHookLevel(slog.LevelWarn)))...)

	m.Start(t.Context(), testArgs{})

	lines := jsonLines(t, &buf)
	require.Len(t, lines, 1)

	assert.Equal(t, "Lifecycle hook fired", lines[0]["msg"])
	assert.Equal(t, "WARN", lines[0]["level"])
	assert.Equal(t, "on_start", lines[0]["hook"])
	assert.Equal(t, "A", lines[0]["state"])
}

func TestDefaultLoggerDropped(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	m := testDef.New(stateA{newRec("A", &journal{})}, append(quietOpts(), WithLogger(NewSlogLogger(l)))...)
	m.Pop(t.Context(), testArgs{})

	lines := jsonLines(t, &buf)
	require.Len(t, lines, 1)

	assert.Equal(t, "Transition dropped, machine not running", lines[0]["msg"])
	assert.Equal(t, "pop", lines[0]["kind"])
}

func TestLoggerWithTestOutput(t *testing.T) {
	t.Parallel()

	j := &journal{}
	ctx := t.Context()
	m := testDef.New(stateA{newRec("A", j)}, append(quietOpts(), WithLogger(NewSlogLogger(slogt.New(t))))...)

	m.Start(ctx, testArgs{})
	m.Push(ctx, stateB{newRec("B", j)}, testArgs{})
	m.Stop(ctx, testArgs{})

	assert.Equal(t, []string{"A.on_start", "A.on_pause", "B.on_start", "B.on_stop", "A.on_stop"}, j.entries)
}
