package testing

import (
	"errors"
	"fmt"

	"github.com/amp-labs/pushdown/statemachine"
)

// Matcher errors.
var (
	ErrNotRunning          = errors.New("machine is not running")
	ErrNotStopped          = errors.New("machine is not stopped")
	ErrDepthMismatch       = errors.New("stack depth mismatch")
	ErrActiveStateMismatch = errors.New("active state mismatch")
	ErrHooksMismatch       = errors.New("hook sequence mismatch")
	ErrHookNotFired        = errors.New("hook was not fired")
	ErrHookFired           = errors.New("hook was fired")
	ErrHooksOutOfOrder     = errors.New("hooks not fired in order")
	ErrTransitionNotFound  = errors.New("transition was not applied")
	ErrNoMatchersPassed    = errors.New("no matchers passed")
)

// Matcher defines an assertion over an execution trace.
type Matcher interface {
	Match(trace []TraceEntry) (bool, error)
	Description() string
}

// HookFired matches when hook was delivered to state at least once.
func HookFired(state string, hook statemachine.Hook) Matcher {
	return &hookFiredMatcher{state: state, hook: hook}
}

type hookFiredMatcher struct {
	state string
	hook  statemachine.Hook
}

func (m *hookFiredMatcher) Match(trace []TraceEntry) (bool, error) {
	if countHook(trace, m.state, m.hook) > 0 {
		return true, nil
	}

	return false, fmt.Errorf("%w: %s.%s", ErrHookNotFired, m.state, m.hook)
}

func (m *hookFiredMatcher) Description() string {
	return fmt.Sprintf("hook '%s' should fire on '%s'", m.hook, m.state)
}

// NoHookFired matches when hook was never delivered to state.
func NoHookFired(state string, hook statemachine.Hook) Matcher {
	return &noHookFiredMatcher{state: state, hook: hook}
}

type noHookFiredMatcher struct {
	state string
	hook  statemachine.Hook
}

func (m *noHookFiredMatcher) Match(trace []TraceEntry) (bool, error) {
	if n := countHook(trace, m.state, m.hook); n > 0 {
		return false, fmt.Errorf("%w: %s.%s fired %d times", ErrHookFired, m.state, m.hook, n)
	}

	return true, nil
}

func (m *noHookFiredMatcher) Description() string {
	return fmt.Sprintf("hook '%s' should not fire on '%s'", m.hook, m.state)
}

// HooksInOrder matches when the given "State.hook" entries appear in the
// trace in this relative order. Other hooks may be interleaved.
func HooksInOrder(entries ...string) Matcher {
	return &hooksInOrderMatcher{entries: entries}
}

type hooksInOrderMatcher struct {
	entries []string
}

func (m *hooksInOrderMatcher) Match(trace []TraceEntry) (bool, error) {
	next := 0

	for _, fired := range hookEntries(trace) {
		if next < len(m.entries) && fired == m.entries[next] {
			next++
		}
	}

	if next == len(m.entries) {
		return true, nil
	}

	return false, fmt.Errorf("%w: missing '%s' after %v", ErrHooksOutOfOrder, m.entries[next], m.entries[:next])
}

func (m *hooksInOrderMatcher) Description() string {
	return fmt.Sprintf("hooks should fire in order %v", m.entries)
}

// TransitionApplied matches when a transition of kind changed the stack.
func TransitionApplied(kind statemachine.TransitionKind) Matcher {
	return &transitionMatcher{kind: kind, eventType: statemachine.EventTransitionApplied}
}

// RequestDropped matches when a transition of kind was ignored because the
// machine was not running.
func RequestDropped(kind statemachine.TransitionKind) Matcher {
	return &transitionMatcher{kind: kind, eventType: statemachine.EventRequestDropped}
}

type transitionMatcher struct {
	kind      statemachine.TransitionKind
	eventType statemachine.ExecutionEventType
}

func (m *transitionMatcher) Match(trace []TraceEntry) (bool, error) {
	for _, entry := range trace {
		if entry.Type == m.eventType && entry.Transition == m.kind {
			return true, nil
		}
	}

	return false, fmt.Errorf("%w: no %s event for '%s'", ErrTransitionNotFound, m.eventType, m.kind)
}

func (m *transitionMatcher) Description() string {
	return fmt.Sprintf("'%s' should be recorded as %s", m.kind, m.eventType)
}

// All creates a matcher that requires all sub-matchers to pass.
func All(matchers ...Matcher) Matcher {
	return &allMatcher{matchers: matchers}
}

type allMatcher struct {
	matchers []Matcher
}

func (m *allMatcher) Match(trace []TraceEntry) (bool, error) {
	for _, matcher := range m.matchers {
		matched, err := matcher.Match(trace)
		if !matched || err != nil {
			return false, err
		}
	}

	return true, nil
}

func (m *allMatcher) Description() string {
	return "all matchers should pass"
}

// Any creates a matcher that requires at least one sub-matcher to pass.
func Any(matchers ...Matcher) Matcher {
	return &anyMatcher{matchers: matchers}
}

type anyMatcher struct {
	matchers []Matcher
}

func (m *anyMatcher) Match(trace []TraceEntry) (bool, error) {
	for _, matcher := range m.matchers {
		matched, err := matcher.Match(trace)
		if matched && err == nil {
			return true, nil
		}
	}

	return false, ErrNoMatchersPassed
}

func (m *anyMatcher) Description() string {
	return "at least one matcher should pass"
}

func countHook(trace []TraceEntry, state string, hook statemachine.Hook) int {
	n := 0

	for _, entry := range trace {
		if entry.Type == statemachine.EventHookFired && entry.State == state && entry.Hook == hook {
			n++
		}
	}

	return n
}
