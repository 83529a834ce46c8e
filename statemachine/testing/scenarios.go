package testing

import (
	"context"
	"testing"

	"github.com/amp-labs/pushdown/statemachine"
)

// Scenario is a table-driven machine test: build the initial state, drive
// the machine, then check the outcome.
type Scenario[C any, E comparable] struct {
	Name string
	// Initial builds the bottom state. Recorders should write to journal.
	Initial func(journal *Journal) statemachine.State[C, E]
	Options []statemachine.Option
	// Run drives the machine. The machine has not been started yet.
	Run func(ctx context.Context, tm *TestMachine[C, E])

	// Expectations checked after Run.
	Running bool
	Depth   int
	Journal []string
	Expect  []Matcher
}

// RunScenario executes a scenario as a subtest.
func RunScenario[C any, E comparable](t *testing.T, scenario Scenario[C, E]) {
	t.Helper()
	t.Run(scenario.Name, func(t *testing.T) {
		journal := NewJournal()
		tm := NewTestMachine(t, scenario.Initial(journal), scenario.Options...)

		if scenario.Run != nil {
			scenario.Run(t.Context(), tm)
		}

		if scenario.Running {
			tm.AssertRunning()
		} else {
			tm.AssertStopped()
		}

		tm.AssertDepth(scenario.Depth)

		if scenario.Journal != nil {
			assertJournal(t, journal, scenario.Journal)
		}

		tm.Expect(scenario.Expect...)
	})
}

func assertJournal(t *testing.T, journal *Journal, expected []string) {
	t.Helper()

	actual := journal.Entries()
	if len(actual) != len(expected) {
		t.Fatalf("journal: expected %v, got %v", expected, actual)
	}

	for i := range expected {
		if actual[i] != expected[i] {
			t.Fatalf("journal entry %d: expected '%s', got '%s' (full: %v)", i, expected[i], actual[i], actual)
		}
	}
}
