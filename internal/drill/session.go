// Package drill runs the adaptive selection loop over the event log.
package drill

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/keydrill/internal/eventlog"
	"github.com/verte-zerg/keydrill/internal/model"
	"github.com/verte-zerg/keydrill/internal/scorer"
	"github.com/verte-zerg/keydrill/internal/selector"
	"github.com/verte-zerg/keydrill/internal/stats"
)

// ErrInterrupted is returned by a Collector when the user aborts.
var ErrInterrupted = errors.New("drill interrupted")

// ErrUnencodableKey rejects keys that cannot be written to the event log.
var ErrUnencodableKey = errors.New("key cannot be recorded")

// KeyPress is one key read from the user.
type KeyPress struct {
	Key       string
	StartedAt time.Time
	Elapsed   time.Duration
}

// Collector blocks until the user types one key.
type Collector interface {
	ReadKey() (KeyPress, error)
}

// Pick is a character chosen for drilling with the numbers behind it.
type Pick struct {
	Char   string
	Stat   model.Stat
	Reward float64
	Score  float64
}

// Session ties the universe, scorer and event log together.
type Session struct {
	universe []string
	scorer   *scorer.Scorer
	log      *eventlog.Log
	backend  eventlog.Backend
	flush    bool
}

// NewSession loads the history from backend. A parse error in the
// history is returned unchanged so callers can stop.
func NewSession(ctx context.Context, universe []string, sc *scorer.Scorer, backend eventlog.Backend, flush bool) (*Session, error) {
	if len(universe) == 0 {
		return nil, fmt.Errorf("universe is empty")
	}
	events, err := backend.Load(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("events", len(events)).Int("chars", len(universe)).Msg("history loaded")
	return &Session{
		universe: universe,
		scorer:   sc,
		log:      eventlog.NewLog(events),
		backend:  backend,
		flush:    flush,
	}, nil
}

// Universe returns the drillable characters.
func (s *Session) Universe() []string {
	return s.universe
}

// Events returns the full log including this run's attempts.
func (s *Session) Events() []model.Event {
	return s.log.Events()
}

// Stats re-aggregates the whole log.
func (s *Session) Stats() map[string]model.Stat {
	return stats.Aggregate(s.log.Events(), s.universe)
}

// Next re-scores the universe from the full log and returns up to n
// picks, best first.
func (s *Session) Next(n int) []Pick {
	st := s.Stats()
	ranked := selector.Rank(s.scorer.Score(st, s.universe))
	if n > len(ranked) {
		n = len(ranked)
	}
	if n <= 0 {
		return nil
	}
	picks := make([]Pick, 0, n)
	for _, sc := range ranked[:n] {
		picks = append(picks, Pick{
			Char:   sc.Char,
			Stat:   st[sc.Char],
			Reward: sc.Reward,
			Score:  sc.Value,
		})
	}
	return picks
}

// Record appends the attempt at typing char. When incremental flushing
// is on and the backend supports it, the event is persisted right away.
// Keys that would break the log line format are rejected with
// ErrUnencodableKey and nothing is recorded.
func (s *Session) Record(ctx context.Context, char string, kp KeyPress) (model.Event, error) {
	if !eventlog.Encodable(char) || !eventlog.Encodable(kp.Key) {
		return model.Event{}, fmt.Errorf("%w: %q", ErrUnencodableKey, kp.Key)
	}
	e := model.NewEvent(kp.StartedAt, char, kp.Key, kp.Elapsed)
	s.log.Append(e)
	if s.flush {
		if app, ok := s.backend.(eventlog.Appender); ok {
			if err := app.Append(ctx, e); err != nil {
				return e, fmt.Errorf("failed to flush event: %w", err)
			}
		}
	}
	return e, nil
}

// Save writes the full log back to the backend.
func (s *Session) Save(ctx context.Context) error {
	if err := s.backend.Save(ctx, s.log.Events()); err != nil {
		return fmt.Errorf("failed to save event log: %w", err)
	}
	log.Debug().Int("events", s.log.Len()).Msg("event log saved")
	return nil
}
