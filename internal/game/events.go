package game

import "time"

// Event is a fire-and-forget notification for the audio collaborator.
type Event int

const (
	EventPause Event = iota
	EventLinesCleared
	EventGameOver
	EventLevelUp
)

func (e Event) String() string {
	switch e {
	case EventPause:
		return "pause"
	case EventLinesCleared:
		return "row_clear"
	case EventGameOver:
		return "game_over"
	case EventLevelUp:
		return "level_up"
	}
	return "unknown"
}

// Listener receives one call per event instance.
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

func (f ListenerFunc) OnEvent(e Event) { f(e) }

// Result is the final record of a finished game. Generation identifies
// the game within its session.
type Result struct {
	Name       string
	Score      int
	Level      int
	Timestamp  time.Time
	Generation uint64
}

// Reporter accepts finished games. Report must not block the caller.
type Reporter interface {
	Report(Result)
}

// Clock abstracts wall-clock time so the loop can be driven in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
