package stats

import (
	"testing"

	"github.com/verte-zerg/keydrill/internal/model"
)

func TestAggregateSkipsUnknownChars(t *testing.T) {
	events := []model.Event{
		{Timestamp: 1, Char: "a", Typed: "a", Elapsed: 0.3},
		{Timestamp: 2, Char: "q", Typed: "w", Elapsed: 0.9},
		{Timestamp: 3, Char: "a", Typed: "s", Elapsed: 0.5},
		{Timestamp: 4, Char: "a", Typed: "a", Elapsed: 0.4},
	}
	stats := Aggregate(events, []string{"a", "b"})
	if len(stats) != 2 {
		t.Fatalf("expected 2 stats, got %d", len(stats))
	}
	if _, ok := stats["q"]; ok {
		t.Fatalf("expected q to be skipped")
	}
	a := stats["a"]
	if a.Count != 3 || a.NErrors != 1 {
		t.Fatalf("unexpected stat for a: %+v", a)
	}
	if len(a.Latencies) != 3 || a.Latencies[1] != 0.5 {
		t.Fatalf("expected latencies in log order, got %v", a.Latencies)
	}
	if b := stats["b"]; b.Count != 0 || b.ErrorRate() != 0 {
		t.Fatalf("expected empty stat for b: %+v", b)
	}
	if got := TotalAttempts(stats, []string{"a", "b"}); got != 3 {
		t.Fatalf("expected 3 total attempts, got %d", got)
	}
}

func TestAggregateErrorsNeverExceedCount(t *testing.T) {
	universe := []string{"a", "b", "c"}
	var events []model.Event
	for i := 0; i < 60; i++ {
		ch := universe[i%3]
		typed := ch
		if i%2 == 0 {
			typed = "x"
		}
		events = append(events, model.Event{Timestamp: int64(i), Char: ch, Typed: typed, Elapsed: 0.2})
	}
	for ch, st := range Aggregate(events, universe) {
		if err := st.Validate(); err != nil {
			t.Fatalf("invariant broken for %s: %v", ch, err)
		}
	}
}
