// Package visualizer renders state machine stacks and transition histories
// as Mermaid state diagrams.
//
//nolint:varnamelen // Short names idiomatic
package visualizer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/amp-labs/pushdown/statemachine"
)

// Visualizer errors.
var (
	ErrNoFrames      = errors.New("stack has no frames")
	ErrNoTransitions = errors.New("history has no applied transitions")
	ErrBadDirection  = errors.New("direction must be TB, BT, LR or RL")
)

const (
	stackEdgeLabel    = "pushed"
	historyStartLabel = "start"
)

var validDirections = map[string]bool{"TB": true, "BT": true, "LR": true, "RL": true} //nolint:gochecknoglobals

// GenerateMermaid renders a stack snapshot (bottom to top, as returned by
// Machine.Frames) as a Mermaid state diagram.
func GenerateMermaid(frames []statemachine.Frame) (string, error) {
	return GenerateMermaidWithOptions(frames, DefaultOptions())
}

// FromMachine renders the current stack of m.
func FromMachine[C any, E comparable](m *statemachine.Machine[C, E], opts Options) (string, error) {
	return GenerateMermaidWithOptions(m.Frames(), opts)
}

// GenerateMermaidWithOptions renders a stack snapshot with custom options.
// Frames become nodes linked bottom to top; the active frame is styled when
// HighlightActive is set.
func GenerateMermaidWithOptions(frames []statemachine.Frame, opts Options) (string, error) {
	if len(frames) == 0 {
		return "", ErrNoFrames
	}

	var sb strings.Builder

	if err := writeHeader(&sb, opts); err != nil {
		return "", err
	}

	for _, frame := range frames {
		fmt.Fprintf(&sb, "    state \"%s\" as %s\n", label(frame, opts), nodeID(frame.Index))
	}

	fmt.Fprintf(&sb, "    [*] --> %s\n", nodeID(frames[0].Index))

	for i := 1; i < len(frames); i++ {
		fmt.Fprintf(&sb, "    %s --> %s: %s\n", nodeID(frames[i-1].Index), nodeID(frames[i].Index), stackEdgeLabel)
	}

	if opts.HighlightActive {
		var paused []string

		for _, frame := range frames {
			if frame.Active {
				fmt.Fprintf(&sb, "    class %s active\n", nodeID(frame.Index))
			} else {
				paused = append(paused, nodeID(frame.Index))
			}
		}

		if len(paused) > 0 {
			fmt.Fprintf(&sb, "    class %s paused\n", strings.Join(paused, ","))
		}

		sb.WriteString("\n")
		sb.WriteString("    classDef active fill:#fff9c4,stroke:#f57f17,stroke-width:3px\n")
		sb.WriteString("    classDef paused fill:#eceff1,stroke:#607d8b,stroke-width:1px\n")
	}

	sb.WriteString("```\n")

	return sb.String(), nil
}

// GenerateHistory renders the transitions applied during a run, as observed
// by a statemachine.ExecutionHook, as a Mermaid state diagram. Each distinct
// state becomes one node; each applied transition becomes an edge labeled
// with its kind. Quit and popping the last frame lead to the final marker.
func GenerateHistory(events []statemachine.ExecutionEvent, opts Options) (string, error) {
	type edge struct {
		from, to, label string
	}

	var (
		edges []edge
		seen  = make(map[edge]bool)
		start string
	)

	add := func(e edge) {
		if !seen[e] {
			seen[e] = true
			edges = append(edges, e)
		}
	}

	for _, ev := range events {
		switch ev.Type {
		case statemachine.EventHookFired:
			if start == "" && ev.Hook == statemachine.HookStart {
				start = ev.State
			}
		case statemachine.EventTransitionApplied:
			switch ev.Transition {
			case statemachine.KindPush, statemachine.KindSwitch:
				add(edge{from: ev.State, to: ev.Target, label: ev.Transition.String()})
			case statemachine.KindPop, statemachine.KindQuit:
				if ev.Depth == 0 {
					add(edge{from: ev.State, to: "[*]", label: ev.Transition.String()})
				}
			case statemachine.KindNone:
			}
		case statemachine.EventHandlerCalled, statemachine.EventRequestDropped:
		}
	}

	if len(edges) == 0 {
		return "", ErrNoTransitions
	}

	var sb strings.Builder

	if err := writeHeader(&sb, opts); err != nil {
		return "", err
	}

	if start != "" {
		fmt.Fprintf(&sb, "    [*] --> %s: %s\n", sanitize(start), historyStartLabel)
	}

	for _, e := range edges {
		fmt.Fprintf(&sb, "    %s --> %s: %s\n", sanitize(e.from), sanitize(e.to), e.label)
	}

	sb.WriteString("```\n")

	return sb.String(), nil
}

func writeHeader(sb *strings.Builder, opts Options) error {
	direction := opts.Direction
	if direction == "" {
		direction = "TB"
	}

	if !validDirections[direction] {
		return fmt.Errorf("%w: %q", ErrBadDirection, opts.Direction)
	}

	sb.WriteString("```mermaid\n")

	if opts.Title != "" {
		fmt.Fprintf(sb, "---\ntitle: %s\n---\n", opts.Title)
	}

	sb.WriteString("stateDiagram-v2\n")
	fmt.Fprintf(sb, "    direction %s\n", direction)

	return nil
}

func nodeID(index int) string {
	return "f" + strconv.Itoa(index)
}

func label(frame statemachine.Frame, opts Options) string {
	name := strings.ReplaceAll(frame.Name, `"`, "'")
	if opts.ShowIndex {
		return strconv.Itoa(frame.Index) + ": " + name
	}

	return name
}

// sanitize turns a state name into a Mermaid identifier.
func sanitize(name string) string {
	if name == "[*]" {
		return name
	}

	var sb strings.Builder

	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}

	if sb.Len() == 0 {
		return "_"
	}

	return sb.String()
}
