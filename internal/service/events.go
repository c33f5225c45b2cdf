package service

import (
	"fmt"
	"sync"
)

type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Event is one progress message of a run. Index and Total number the stage
// the event belongs to, ex. 2/5.
type Event struct {
	Stage   Stage
	Index   int
	Total   int
	Message string
	Level   Level
}

func (e Event) String() string {
	return fmt.Sprintf("[%d/%d %s] %s", e.Index, e.Total, e.Stage, e.Message)
}

// EventLog is an append-only list of the progress events of a run, it never
// affects how the run proceeds.
//
// The zero value is ready to use, a nil *EventLog discards everything.
type EventLog struct {
	// Observer, if set, is called with every event as it is appended.
	Observer func(Event)

	mutex  sync.Mutex
	events []Event
}

func (l *EventLog) append(e Event) {
	if l == nil {
		return
	}
	l.mutex.Lock()
	l.events = append(l.events, e)
	observer := l.Observer
	l.mutex.Unlock()

	if observer != nil {
		observer(e)
	}
}

// Events returns a copy of every event appended so far.
func (l *EventLog) Events() []Event {
	if l == nil {
		return nil
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}
