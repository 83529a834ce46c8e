package statemachine

import (
	"fmt"
	"slices"
)

// undeclaredEvent labels events that were not part of a definition's event set.
const undeclaredEvent = "undeclared"

// Definition specializes the engine for one set of extra parameters C and one
// closed set of events E. It is the factory for that specialization's
// transition requests and machines, so callers never have to spell the type
// arguments:
//
//	type Args struct {
//	    Delta time.Duration
//	}
//
//	type Event int
//
//	const (
//	    EventPause Event = iota
//	    EventResume
//	)
//
//	var Game = statemachine.Define[Args]("game", EventPause, EventResume)
//
//	func (s *Level) Trigger(ctx context.Context, ev Event, args Args) statemachine.Transition[Args, Event] {
//	    if ev == EventPause {
//	        return Game.Push(&PauseMenu{})
//	    }
//
//	    return Game.None()
//	}
type Definition[C any, E comparable] struct {
	name    string
	events  []E
	options []Option
}

// Define declares a specialization named name whose events are exactly events.
func Define[C any, E comparable](name string, events ...E) *Definition[C, E] {
	return &Definition[C, E]{
		name:   name,
		events: slices.Clone(events),
	}
}

// WithOptions returns a copy of the definition whose machines are always
// built with opts (before any options passed to New).
func (d *Definition[C, E]) WithOptions(opts ...Option) *Definition[C, E] {
	return &Definition[C, E]{
		name:    d.name,
		events:  d.events,
		options: append(slices.Clone(d.options), opts...),
	}
}

// Name returns the definition name. Machines built from it carry the same name.
func (d *Definition[C, E]) Name() string {
	return d.name
}

// Events returns the declared events in declaration order.
func (d *Definition[C, E]) Events() []E {
	return slices.Clone(d.events)
}

// Has reports whether event belongs to the declared set.
func (d *Definition[C, E]) Has(event E) bool {
	return slices.Contains(d.events, event)
}

// EventName renders an event for logs and metric labels.
func (d *Definition[C, E]) EventName(event E) string {
	return eventName(event)
}

// New builds a machine with initial as its only (not yet started) frame.
func (d *Definition[C, E]) New(initial State[C, E], opts ...Option) *Machine[C, E] {
	all := make([]Option, 0, len(d.options)+len(opts)+1)
	all = append(all, WithName(d.name))
	all = append(all, d.options...)
	all = append(all, opts...)

	m := New(initial, all...)
	m.events = d

	return m
}

func (d *Definition[C, E]) None() Transition[C, E] { return None[C, E]() }

func (d *Definition[C, E]) Pop() Transition[C, E] { return Pop[C, E]() }

func (d *Definition[C, E]) Quit() Transition[C, E] { return Quit[C, E]() }

func (d *Definition[C, E]) Push(state State[C, E]) Transition[C, E] { return Push(state) }

func (d *Definition[C, E]) Switch(state State[C, E]) Transition[C, E] { return Switch(state) }

func eventName(event any) string {
	if s, ok := event.(fmt.Stringer); ok {
		return s.String()
	}

	return fmt.Sprint(event)
}
