package drill

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/keydrill/internal/eventlog"
	"github.com/verte-zerg/keydrill/internal/model"
	"github.com/verte-zerg/keydrill/internal/scorer"
)

// scriptedCollector replays keys and reports ErrInterrupted when done.
type scriptedCollector struct {
	keys []string
	at   time.Time
}

func (c *scriptedCollector) ReadKey() (KeyPress, error) {
	if len(c.keys) == 0 {
		return KeyPress{}, ErrInterrupted
	}
	k := c.keys[0]
	c.keys = c.keys[1:]
	c.at = c.at.Add(time.Second)
	return KeyPress{Key: k, StartedAt: c.at, Elapsed: 250 * time.Millisecond}, nil
}

// memBackend records saves and appends in memory.
type memBackend struct {
	events   []model.Event
	appended []model.Event
	saves    int
}

func (m *memBackend) Load(context.Context) ([]model.Event, error) { return m.events, nil }

func (m *memBackend) Save(_ context.Context, events []model.Event) error {
	m.events = events
	m.saves++
	return nil
}

func (m *memBackend) Append(_ context.Context, e model.Event) error {
	m.appended = append(m.appended, e)
	return nil
}

func (m *memBackend) Close() error { return nil }

func newScorer(t *testing.T) *scorer.Scorer {
	t.Helper()
	sc, err := scorer.New(scorer.DefaultWeights)
	if err != nil {
		t.Fatalf("new scorer: %v", err)
	}
	return sc
}

func newSession(t *testing.T, universe []string, backend eventlog.Backend, flush bool) *Session {
	t.Helper()
	s, err := NewSession(context.Background(), universe, newScorer(t), backend, flush)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func TestNextColdStartFollowsUniverseOrder(t *testing.T) {
	s := newSession(t, []string{"k", "j", "l"}, &memBackend{}, false)
	picks := s.Next(5)
	if len(picks) != 3 {
		t.Fatalf("expected 3 picks, got %d", len(picks))
	}
	if picks[0].Char != "k" || picks[1].Char != "j" {
		t.Fatalf("unexpected order %+v", picks)
	}
	for _, p := range picks {
		if !math.IsInf(p.Score, 1) {
			t.Fatalf("expected +Inf for %q, got %v", p.Char, p.Score)
		}
	}
	if got := s.Next(0); len(got) != 0 {
		t.Fatalf("expected no picks for n=0, got %+v", got)
	}
}

func TestRunCoversEveryCharacterBeforeRepeating(t *testing.T) {
	backend := &memBackend{}
	s := newSession(t, []string{"a", "b", "c"}, backend, false)
	col := &scriptedCollector{keys: []string{"a", "x", "b", "c"}, at: time.Unix(1000, 0)}
	var out bytes.Buffer

	res, err := Run(context.Background(), s, col, &out, 3)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if want := (Result{Rounds: 3, Attempts: 4, Errors: 1}); res != want {
		t.Fatalf("result = %+v, want %+v", res, want)
	}

	events := s.Events()
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	if want := (model.Event{Timestamp: 1002, Char: "b", Typed: "x", Elapsed: 0.25}); events[1] != want {
		t.Fatalf("event = %+v, want %+v", events[1], want)
	}
	if !strings.Contains(out.String(), "Type: a\t(Attempts: 0, Errors: 0, Reward: 0.00)\r\n") {
		t.Fatalf("missing prompt in output:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "missed (typed x)") {
		t.Fatalf("missing miss line in output:\n%s", out.String())
	}
	if backend.saves != 0 {
		t.Fatalf("expected no saves during run, got %d", backend.saves)
	}

	if err := s.Save(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if backend.saves != 1 || len(backend.events) != 4 {
		t.Fatalf("unexpected backend state: saves=%d events=%d", backend.saves, len(backend.events))
	}
}

func TestRunInterruptKeepsEvents(t *testing.T) {
	s := newSession(t, []string{"a"}, &memBackend{}, false)
	col := &scriptedCollector{keys: []string{"q", "w"}, at: time.Unix(0, 0)}
	res, err := Run(context.Background(), s, col, &bytes.Buffer{}, 5)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Rounds != 0 || res.Errors != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(s.Events()) != 2 {
		t.Fatalf("expected 2 events, got %d", len(s.Events()))
	}
}

func TestRunSkipsUnencodableKeys(t *testing.T) {
	backend := &memBackend{}
	s := newSession(t, []string{"a"}, backend, true)
	col := &scriptedCollector{keys: []string{"\n", "\r", "a"}, at: time.Unix(0, 0)}
	res, err := Run(context.Background(), s, col, &bytes.Buffer{}, 1)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if want := (Result{Rounds: 1, Attempts: 1}); res != want {
		t.Fatalf("result = %+v, want %+v", res, want)
	}
	if len(s.Events()) != 1 || len(backend.appended) != 1 {
		t.Fatalf("expected only the typed key to be recorded, got %+v", s.Events())
	}
}

func TestRecordRejectsUnencodableKey(t *testing.T) {
	s := newSession(t, []string{"a"}, &memBackend{}, false)
	for _, key := range []string{"", "\n", "x\r", "a, b"} {
		_, err := s.Record(context.Background(), "a", KeyPress{Key: key, StartedAt: time.Unix(1, 0)})
		if !errors.Is(err, ErrUnencodableKey) {
			t.Fatalf("key %q: expected ErrUnencodableKey, got %v", key, err)
		}
	}
	if len(s.Events()) != 0 {
		t.Fatalf("expected nothing recorded, got %+v", s.Events())
	}
}

func TestRecordFlushesThroughAppender(t *testing.T) {
	backend := &memBackend{}
	s := newSession(t, []string{"a"}, backend, true)
	if _, err := s.Record(context.Background(), "a", KeyPress{Key: "a", StartedAt: time.Unix(5, 0), Elapsed: time.Second}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(backend.appended) != 1 {
		t.Fatalf("expected one appended event, got %d", len(backend.appended))
	}
	if backend.appended[0].Elapsed != 1.0 {
		t.Fatalf("unexpected elapsed %v", backend.appended[0].Elapsed)
	}
}

func TestSessionStopsOnCorruptHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")
	if err := os.WriteFile(path, []byte("1, a, a, 0.30\nbroken\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	_, err := NewSession(context.Background(), []string{"a"}, newScorer(t), eventlog.NewFileBackend(path), false)
	if err == nil {
		t.Fatalf("expected error for corrupt history")
	}
	if !errors.Is(err, eventlog.ErrMalformedLine) {
		t.Fatalf("expected ErrMalformedLine, got %v", err)
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Fatalf("expected raw line in error, got %v", err)
	}
}

func TestSessionFileRoundTripAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")
	backend := eventlog.NewFileBackend(path)
	s := newSession(t, []string{"a", "b"}, backend, false)
	if _, err := Run(context.Background(), s, &scriptedCollector{keys: []string{"a"}, at: time.Unix(0, 0)}, &bytes.Buffer{}, 1); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := s.Save(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}

	next := newSession(t, []string{"a", "b"}, backend, false)
	picks := next.Next(1)
	if len(picks) != 1 || picks[0].Char != "b" {
		t.Fatalf("expected b next, got %+v", picks)
	}
	if got := next.Stats()["a"].Count; got != 1 {
		t.Fatalf("expected 1 attempt for a, got %d", got)
	}
}

func TestNewSessionEmptyUniverse(t *testing.T) {
	if _, err := NewSession(context.Background(), nil, newScorer(t), &memBackend{}, false); err == nil {
		t.Fatalf("expected error for empty universe")
	}
}
