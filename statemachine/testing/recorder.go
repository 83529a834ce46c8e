package testing

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/amp-labs/pushdown/statemachine"
)

// Journal is an ordered, goroutine-safe log of calls received by Recorders.
// Entries look like "Menu.on_start", "Level.update" or "Level.trigger(pause)".
type Journal struct {
	mu      sync.Mutex
	entries []string
}

// NewJournal creates an empty journal.
func NewJournal() *Journal {
	return &Journal{}
}

// Add appends an entry.
func (j *Journal) Add(entry string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.entries = append(j.entries, entry)
}

// Entries returns a copy of the entries in call order.
func (j *Journal) Entries() []string {
	j.mu.Lock()
	defer j.mu.Unlock()

	return slices.Clone(j.entries)
}

// Len returns the number of entries.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()

	return len(j.entries)
}

// Reset discards every entry.
func (j *Journal) Reset() {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.entries = nil
}

// Recorder is a scriptable state that writes every call it receives to a
// Journal. Update and Trigger return None unless OnUpdate or OnTrigger is set.
type Recorder[C any, E comparable] struct {
	Label     string
	Journal   *Journal
	OnUpdate  func(args C) statemachine.Transition[C, E]
	OnTrigger func(event E, args C) statemachine.Transition[C, E]
}

// NewRecorder creates a recorder named label writing to journal.
func NewRecorder[C any, E comparable](label string, journal *Journal) *Recorder[C, E] {
	return &Recorder[C, E]{Label: label, Journal: journal}
}

func (r *Recorder[C, E]) Name() string {
	return r.Label
}

func (r *Recorder[C, E]) OnStart(context.Context, C) {
	r.record(string(statemachine.HookStart))
}

func (r *Recorder[C, E]) OnStop(context.Context, C) {
	r.record(string(statemachine.HookStop))
}

func (r *Recorder[C, E]) OnPause(context.Context, C) {
	r.record(string(statemachine.HookPause))
}

func (r *Recorder[C, E]) OnResume(context.Context, C) {
	r.record(string(statemachine.HookResume))
}

func (r *Recorder[C, E]) Update(_ context.Context, args C) statemachine.Transition[C, E] {
	r.record("update")

	if r.OnUpdate != nil {
		return r.OnUpdate(args)
	}

	return statemachine.None[C, E]()
}

func (r *Recorder[C, E]) Trigger(_ context.Context, event E, args C) statemachine.Transition[C, E] {
	r.record(fmt.Sprintf("trigger(%v)", event))

	if r.OnTrigger != nil {
		return r.OnTrigger(event, args)
	}

	return statemachine.None[C, E]()
}

func (r *Recorder[C, E]) record(call string) {
	if r.Journal != nil {
		r.Journal.Add(r.Label + "." + call)
	}
}
