package statemachine

import (
	"context"
	"reflect"
)

// State is a single frame of the machine's stack. Only the top frame receives
// Update and Trigger; frames beneath it are paused.
//
// Every method receives the request-scoped context and the caller's extra
// parameters. Neither is retained by the machine.
type State[C any, E comparable] interface {
	OnStart(ctx context.Context, args C)
	OnStop(ctx context.Context, args C)
	OnPause(ctx context.Context, args C)
	OnResume(ctx context.Context, args C)

	Update(ctx context.Context, args C) Transition[C, E]
	Trigger(ctx context.Context, event E, args C) Transition[C, E]
}

// Named is implemented by states that want a display name other than their type name.
type Named interface {
	Name() string
}

// Base implements every State method as a no-op. Embed it in a concrete state
// and override only the hooks the state cares about.
type Base[C any, E comparable] struct{}

func (Base[C, E]) OnStart(context.Context, C)  {}
func (Base[C, E]) OnStop(context.Context, C)   {}
func (Base[C, E]) OnPause(context.Context, C)  {}
func (Base[C, E]) OnResume(context.Context, C) {}

func (Base[C, E]) Update(context.Context, C) Transition[C, E] {
	return Transition[C, E]{}
}

func (Base[C, E]) Trigger(context.Context, E, C) Transition[C, E] {
	return Transition[C, E]{}
}

// Hook identifies a lifecycle notification delivered to a state.
type Hook string

const (
	HookStart  Hook = "on_start"
	HookStop   Hook = "on_stop"
	HookPause  Hook = "on_pause"
	HookResume Hook = "on_resume"
)

// Frame describes one entry of the stack at the time it was observed.
type Frame struct {
	Index  int
	Name   string
	Active bool
}

// StateName returns the display name of a state: Name() if the state is
// Named, otherwise its concrete type name with pointers stripped.
func StateName(state any) string {
	if state == nil {
		return ""
	}

	if named, ok := state.(Named); ok {
		return named.Name()
	}

	typ := reflect.TypeOf(state)
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	if typ.Name() == "" {
		return typ.String()
	}

	return typ.Name()
}
