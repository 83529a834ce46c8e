package statemachine

import (
	"context"
	"fmt"
)

type testArgs struct {
	Tick int
}

type testEvent int

const (
	evPause testEvent = iota
	evResume
	evQuit
)

func (e testEvent) String() string {
	switch e {
	case evPause:
		return "pause"
	case evResume:
		return "resume"
	case evQuit:
		return "quit"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

var testDef = Define[testArgs]("test", evPause, evResume, evQuit) //nolint:gochecknoglobals

// journal is the ordered log of every call the fixture states received.
type journal struct {
	entries []string
}

func (j *journal) add(entry string) {
	j.entries = append(j.entries, entry)
}

// recState records every call into a shared journal and returns scripted transitions.
type recState struct {
	Base[testArgs, testEvent]

	name      string
	journal   *journal
	onUpdate  func(args testArgs) Transition[testArgs, testEvent]
	onTrigger func(ev testEvent, args testArgs) Transition[testArgs, testEvent]
}

func newRec(name string, j *journal) *recState {
	return &recState{name: name, journal: j}
}

func (s *recState) Name() string { return s.name }

func (s *recState) OnStart(context.Context, testArgs)  { s.journal.add(s.name + ".on_start") }
func (s *recState) OnStop(context.Context, testArgs)   { s.journal.add(s.name + ".on_stop") }
func (s *recState) OnPause(context.Context, testArgs)  { s.journal.add(s.name + ".on_pause") }
func (s *recState) OnResume(context.Context, testArgs) { s.journal.add(s.name + ".on_resume") }

func (s *recState) Update(_ context.Context, args testArgs) Transition[testArgs, testEvent] {
	s.journal.add(s.name + ".update")

	if s.onUpdate != nil {
		return s.onUpdate(args)
	}

	return testDef.None()
}

func (s *recState) Trigger(_ context.Context, ev testEvent, args testArgs) Transition[testArgs, testEvent] {
	s.journal.add(s.name + ".trigger(" + ev.String() + ")")

	if s.onTrigger != nil {
		return s.onTrigger(ev, args)
	}

	return testDef.None()
}

// Distinct concrete types so IsState and IsActiveState can tell frames apart.
type (
	stateA struct{ *recState }
	stateB struct{ *recState }
	stateC struct{ *recState }
)

// quietOpts keeps unit tests off the global prometheus registry and tracer.
func quietOpts() []Option {
	return []Option{WithMetrics(false), WithTracing(false)}
}
