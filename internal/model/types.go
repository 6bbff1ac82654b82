// Package model defines shared data structures.
package model

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Config defines drill settings.
type Config struct {
	Rounds        int
	Next          int
	ErrorWeight   float64
	LatencyWeight float64
	Backend       string
	Flush         bool
	Paths         Paths
}

// Paths holds every file location the drill reads or writes.
type Paths struct {
	Chars   string
	Log     string
	Summary string
	DB      string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Chars       string
	CurveWindow int
}

// Event is a single keystroke attempt.
type Event struct {
	Timestamp int64
	Char      string
	Typed     string
	Elapsed   float64
}

// NewEvent builds an event with the timestamp truncated to epoch seconds
// and elapsed seconds rounded to two decimals.
func NewEvent(startedAt time.Time, char, typed string, elapsed time.Duration) Event {
	return Event{
		Timestamp: startedAt.Unix(),
		Char:      char,
		Typed:     typed,
		Elapsed:   RoundElapsed(elapsed.Seconds()),
	}
}

// RoundElapsed rounds seconds to two decimals.
func RoundElapsed(seconds float64) float64 {
	return math.Round(seconds*100) / 100
}

// IsError reports whether the typed key differs from the prompted one.
func (e Event) IsError() bool {
	return e.Typed != e.Char
}

// IsCorrect is the negation of IsError.
func (e Event) IsCorrect() bool {
	return !e.IsError()
}

// Stat is the running summary of all attempts for one character.
type Stat struct {
	Count     int
	NErrors   int
	Latencies []float64
}

// Add folds one event into the summary.
func (s *Stat) Add(e Event) {
	s.Count++
	if e.IsError() {
		s.NErrors++
	}
	s.Latencies = append(s.Latencies, e.Elapsed)
}

// ErrorRate returns NErrors/Count, or 0 for a character never attempted.
func (s Stat) ErrorRate() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.NErrors) / float64(s.Count)
}

// MedianLatency returns the median elapsed time. ok is false when the
// character has no attempts.
func (s Stat) MedianLatency() (median float64, ok bool) {
	if s.Count == 0 || len(s.Latencies) == 0 {
		return 0, false
	}
	sorted := make([]float64, len(s.Latencies))
	copy(sorted, s.Latencies)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], true
	}
	return (sorted[mid-1] + sorted[mid]) / 2, true
}

// Validate checks 0 <= NErrors <= Count.
func (s Stat) Validate() error {
	if s.Count < 0 || s.NErrors < 0 || s.NErrors > s.Count {
		return &InvariantError{Count: s.Count, NErrors: s.NErrors}
	}
	return nil
}

// InvariantError reports a summary whose error count is out of range.
type InvariantError struct {
	Char    string
	Count   int
	NErrors int
}

func (e *InvariantError) Error() string {
	if e.Char != "" {
		return fmt.Sprintf("invalid stat for %q: n_errors=%d, count=%d", e.Char, e.NErrors, e.Count)
	}
	return fmt.Sprintf("invalid stat: n_errors=%d, count=%d", e.NErrors, e.Count)
}
