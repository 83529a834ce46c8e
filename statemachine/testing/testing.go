// Package testing provides testing utilities for pushdown state machines.
//
//nolint:varnamelen // Short names idiomatic in test helpers
package testing

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/amp-labs/pushdown/statemachine"
	"github.com/stretchr/testify/require"
)

// TestMachine wraps a Machine with an execution trace and assertions.
type TestMachine[C any, E comparable] struct {
	*statemachine.Machine[C, E]

	t          *testing.T
	mu         sync.Mutex
	trace      []TraceEntry
	assertions []Assertion
}

// TraceEntry records one execution event observed on the machine.
type TraceEntry struct {
	Timestamp time.Time
	statemachine.ExecutionEvent
}

// Assertion records the outcome of one Assert call.
type Assertion struct {
	Name   string
	Passed bool
	Error  error
}

// NewTestMachine builds a machine around initial with metrics and tracing off.
// Extra options are applied after those defaults.
func NewTestMachine[C any, E comparable](
	t *testing.T,
	initial statemachine.State[C, E],
	opts ...statemachine.Option,
) *TestMachine[C, E] {
	t.Helper()

	tm := &TestMachine[C, E]{t: t}

	all := []statemachine.Option{
		statemachine.WithMetrics(false),
		statemachine.WithTracing(false),
		statemachine.WithExecutionHook(tm.record),
	}
	all = append(all, opts...)

	tm.Machine = statemachine.New(initial, all...)

	return tm
}

// FromDefinition builds a test machine labeled with the definition's name.
func FromDefinition[C any, E comparable](
	t *testing.T,
	def *statemachine.Definition[C, E],
	initial statemachine.State[C, E],
	opts ...statemachine.Option,
) *TestMachine[C, E] {
	t.Helper()

	tm := &TestMachine[C, E]{t: t}

	all := []statemachine.Option{
		statemachine.WithMetrics(false),
		statemachine.WithTracing(false),
		statemachine.WithExecutionHook(tm.record),
	}
	all = append(all, opts...)

	tm.Machine = def.New(initial, all...)

	return tm
}

func (tm *TestMachine[C, E]) record(_ context.Context, event statemachine.ExecutionEvent) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.trace = append(tm.trace, TraceEntry{
		Timestamp:      time.Now(),
		ExecutionEvent: event,
	})
}

// Trace returns a copy of the execution trace.
func (tm *TestMachine[C, E]) Trace() []TraceEntry {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	return slices.Clone(tm.trace)
}

// Hooks returns the lifecycle hooks fired so far as "State.hook" strings.
func (tm *TestMachine[C, E]) Hooks() []string {
	return hookEntries(tm.Trace())
}

// ResetTrace discards the trace recorded so far.
func (tm *TestMachine[C, E]) ResetTrace() {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.trace = nil
}

// Assertions returns every assertion made on this machine.
func (tm *TestMachine[C, E]) Assertions() []Assertion {
	return slices.Clone(tm.assertions)
}

func (tm *TestMachine[C, E]) check(name string, err error) {
	tm.t.Helper()

	tm.assertions = append(tm.assertions, Assertion{
		Name:   name,
		Passed: err == nil,
		Error:  err,
	})

	require.NoError(tm.t, err, name)
}

// AssertRunning checks that the machine is running.
func (tm *TestMachine[C, E]) AssertRunning() {
	tm.t.Helper()

	var err error
	if !tm.Running() {
		err = ErrNotRunning
	}

	tm.check("machine is running", err)
}

// AssertStopped checks that the machine is not running and its stack is empty.
func (tm *TestMachine[C, E]) AssertStopped() {
	tm.t.Helper()

	var err error
	if tm.Running() || tm.Depth() != 0 {
		err = fmt.Errorf("%w: running=%t depth=%d", ErrNotStopped, tm.Running(), tm.Depth())
	}

	tm.check("machine is stopped", err)
}

// AssertDepth checks the number of frames on the stack.
func (tm *TestMachine[C, E]) AssertDepth(expected int) {
	tm.t.Helper()

	var err error
	if actual := tm.Depth(); actual != expected {
		err = fmt.Errorf("%w: expected %d, got %d", ErrDepthMismatch, expected, actual)
	}

	tm.check(fmt.Sprintf("depth is %d", expected), err)
}

// AssertActive checks the display name of the top frame.
func (tm *TestMachine[C, E]) AssertActive(name string) {
	tm.t.Helper()

	actual := ""
	if top, ok := tm.Active(); ok {
		actual = statemachine.StateName(top)
	}

	var err error
	if actual != name {
		err = fmt.Errorf("%w: expected '%s', got '%s'", ErrActiveStateMismatch, name, actual)
	}

	tm.check(fmt.Sprintf("active state is '%s'", name), err)
}

// AssertHooks checks the full list of hooks fired so far, as "State.hook" strings.
func (tm *TestMachine[C, E]) AssertHooks(expected ...string) {
	tm.t.Helper()

	actual := tm.Hooks()

	var err error
	if !slices.Equal(actual, expected) {
		err = fmt.Errorf("%w: expected %v, got %v", ErrHooksMismatch, expected, actual)
	}

	tm.check("hooks fired in order", err)
}

// Expect runs matchers against the trace and fails the test on the first miss.
func (tm *TestMachine[C, E]) Expect(matchers ...Matcher) {
	tm.t.Helper()

	trace := tm.Trace()

	for _, m := range matchers {
		_, err := m.Match(trace)
		tm.check(m.Description(), err)
	}
}

func hookEntries(trace []TraceEntry) []string {
	var out []string

	for _, entry := range trace {
		if entry.Type == statemachine.EventHookFired {
			out = append(out, entry.State+"."+string(entry.Hook))
		}
	}

	return out
}
