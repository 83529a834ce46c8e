package statemachine

// TransitionKind enumerates the changes a state can request.
type TransitionKind int

const (
	// KindNone leaves the stack unchanged.
	KindNone TransitionKind = iota
	// KindPop removes the active state and resumes the one beneath it.
	KindPop
	// KindPush pauses the active state and starts a new one on top.
	KindPush
	// KindSwitch stops the active state and starts a new one in its place.
	KindSwitch
	// KindQuit unwinds the whole stack.
	KindQuit
)

func (k TransitionKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindPop:
		return "pop"
	case KindPush:
		return "push"
	case KindSwitch:
		return "switch"
	case KindQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Transition is the request a state returns from Update or Trigger.
// The zero value requests no change. Push and Switch carry the incoming
// state, which becomes owned by the machine once the request is applied.
type Transition[C any, E comparable] struct {
	kind  TransitionKind
	state State[C, E]
}

// None requests no change.
func None[C any, E comparable]() Transition[C, E] {
	return Transition[C, E]{kind: KindNone}
}

// Pop requests that the active state be removed.
func Pop[C any, E comparable]() Transition[C, E] {
	return Transition[C, E]{kind: KindPop}
}

// Quit requests that the whole stack be unwound.
func Quit[C any, E comparable]() Transition[C, E] {
	return Transition[C, E]{kind: KindQuit}
}

// Push requests that state be layered on top of the active state.
func Push[C any, E comparable](state State[C, E]) Transition[C, E] {
	return Transition[C, E]{kind: KindPush, state: state}
}

// Switch requests that state replace the active state.
func Switch[C any, E comparable](state State[C, E]) Transition[C, E] {
	return Transition[C, E]{kind: KindSwitch, state: state}
}

// Kind returns the requested change.
func (t Transition[C, E]) Kind() TransitionKind {
	return t.kind
}

// State returns the incoming state for Push and Switch, nil otherwise.
func (t Transition[C, E]) State() State[C, E] { //nolint:ireturn
	return t.state
}

// IsNone reports whether the request leaves the stack unchanged.
func (t Transition[C, E]) IsNone() bool {
	return t.kind == KindNone
}

func (t Transition[C, E]) String() string {
	if t.kind == KindPush || t.kind == KindSwitch {
		return t.kind.String() + "(" + StateName(t.state) + ")"
	}

	return t.kind.String()
}
