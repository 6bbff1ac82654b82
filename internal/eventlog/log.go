package eventlog

import (
	"context"

	"github.com/verte-zerg/keydrill/internal/model"
)

// Backend persists the whole event log.
type Backend interface {
	Load(ctx context.Context) ([]model.Event, error)
	Save(ctx context.Context, events []model.Event) error
	Close() error
}

// Appender is implemented by backends that can persist a single event
// without rewriting the log.
type Appender interface {
	Append(ctx context.Context, e model.Event) error
}

// Log is the in-memory, chronologically ordered event sequence.
type Log struct {
	events []model.Event
}

// NewLog wraps previously loaded events.
func NewLog(events []model.Event) *Log {
	l := &Log{events: make([]model.Event, len(events))}
	copy(l.events, events)
	return l
}

// Append adds an event at the end of the log.
func (l *Log) Append(e model.Event) {
	l.events = append(l.events, e)
}

// Events returns a copy of the log in append order.
func (l *Log) Events() []model.Event {
	out := make([]model.Event, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of events.
func (l *Log) Len() int {
	return len(l.events)
}
