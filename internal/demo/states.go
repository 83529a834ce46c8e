package demo

import (
	"context"
	"fmt"
	"io"

	"github.com/amp-labs/pushdown/driver"
	"github.com/amp-labs/pushdown/logger"
	"github.com/amp-labs/pushdown/statemachine"
)

// Args are the extra parameters every state receives.
type Args struct {
	Tick driver.Tick
	Out  io.Writer
}

// Event is something the player does.
type Event string

const (
	EventPlay   Event = "play"
	EventPause  Event = "pause"
	EventResume Event = "resume"
	EventMenu   Event = "menu"
	EventQuit   Event = "quit"
)

// Game declares the demo machine.
var Game = statemachine.Define[Args]("demo", //nolint:gochecknoglobals
	EventPlay, EventPause, EventResume, EventMenu, EventQuit)

// levelLength is how many ticks a level lasts before it is over.
const levelLength = 20

type transition = statemachine.Transition[Args, Event]

// chooser is implemented by states that know which events make sense for them.
type chooser interface {
	Choices() []Event
}

func say(args Args, format string, a ...any) {
	if args.Out != nil {
		_, _ = fmt.Fprintf(args.Out, format+"\n", a...)
	}
}

// Menu is the bottom state. Quitting from here ends the session.
type Menu struct {
	statemachine.Base[Args, Event]

	games int
}

func (m *Menu) Name() string { return "Menu" }

func (m *Menu) OnStart(_ context.Context, args Args) {
	say(args, "Main menu")
}

func (m *Menu) OnResume(_ context.Context, args Args) {
	say(args, "Back at the main menu (%d games played)", m.games)
}

func (m *Menu) Trigger(ctx context.Context, ev Event, _ Args) transition {
	switch ev { //nolint:exhaustive
	case EventPlay:
		m.games++
		logger.Get(ctx).Debug("Starting level", "game", m.games)

		return Game.Push(&Level{number: m.games})
	case EventQuit:
		return Game.Quit()
	default:
		return Game.None()
	}
}

func (m *Menu) Choices() []Event {
	return []Event{EventPlay, EventQuit}
}

// Level counts ticks as score. When it runs out it is replaced by GameOver.
type Level struct {
	statemachine.Base[Args, Event]

	number int
	ticks  int
}

func (l *Level) Name() string { return "Level" }

func (l *Level) OnStart(_ context.Context, args Args) {
	say(args, "Level %d started", l.number)
}

func (l *Level) OnPause(_ context.Context, args Args) {
	say(args, "Level %d paused at tick %d", l.number, l.ticks)
}

func (l *Level) OnResume(_ context.Context, args Args) {
	say(args, "Level %d resumed", l.number)
}

func (l *Level) OnStop(_ context.Context, args Args) {
	say(args, "Level %d left with score %d", l.number, l.ticks)
}

func (l *Level) Update(context.Context, Args) transition {
	l.ticks++
	if l.ticks >= levelLength {
		return Game.Switch(&GameOver{score: l.ticks})
	}

	return Game.None()
}

func (l *Level) Trigger(_ context.Context, ev Event, _ Args) transition {
	switch ev { //nolint:exhaustive
	case EventPause:
		return Game.Push(&PauseMenu{})
	case EventMenu:
		return Game.Pop()
	case EventQuit:
		return Game.Quit()
	default:
		return Game.None()
	}
}

func (l *Level) Choices() []Event {
	return []Event{EventPause, EventMenu, EventQuit}
}

// PauseMenu sits on top of a paused Level.
type PauseMenu struct {
	statemachine.Base[Args, Event]
}

func (p *PauseMenu) Name() string { return "PauseMenu" }

func (p *PauseMenu) OnStart(_ context.Context, args Args) {
	say(args, "Paused")
}

func (p *PauseMenu) Trigger(_ context.Context, ev Event, _ Args) transition {
	switch ev { //nolint:exhaustive
	case EventResume:
		return Game.Pop()
	case EventQuit:
		return Game.Quit()
	default:
		return Game.None()
	}
}

func (p *PauseMenu) Choices() []Event {
	return []Event{EventResume, EventQuit}
}

// GameOver replaces a finished Level and waits to go back to the menu.
type GameOver struct {
	statemachine.Base[Args, Event]

	score int
}

func (g *GameOver) Name() string { return "GameOver" }

func (g *GameOver) OnStart(_ context.Context, args Args) {
	say(args, "Game over, score %d", g.score)
}

func (g *GameOver) Trigger(_ context.Context, ev Event, _ Args) transition {
	switch ev { //nolint:exhaustive
	case EventMenu, EventPlay:
		return Game.Pop()
	case EventQuit:
		return Game.Quit()
	default:
		return Game.None()
	}
}

func (g *GameOver) Choices() []Event {
	return []Event{EventMenu, EventQuit}
}

// choicesFor returns the events the active state offers.
func choicesFor(state statemachine.State[Args, Event]) []Event {
	if c, ok := state.(chooser); ok {
		return c.Choices()
	}

	return nil
}
