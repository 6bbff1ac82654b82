package keyinput

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/keydrill/internal/drill"
	"github.com/verte-zerg/keydrill/internal/eventlog"
	"github.com/verte-zerg/keydrill/internal/scorer"
)

func TestReadKey(t *testing.T) {
	term := NewReader(strings.NewReader("aé "))
	tick := time.Unix(100, 0)
	term.now = func() time.Time {
		tick = tick.Add(300 * time.Millisecond)
		return tick
	}
	for _, want := range []string{"a", "é", " "} {
		kp, err := term.ReadKey()
		if err != nil {
			t.Fatalf("read key: %v", err)
		}
		if kp.Key != want {
			t.Fatalf("expected %q, got %q", want, kp.Key)
		}
		if kp.Elapsed != 300*time.Millisecond {
			t.Fatalf("unexpected elapsed %v", kp.Elapsed)
		}
	}
	if _, err := term.ReadKey(); !errors.Is(err, drill.ErrInterrupted) {
		t.Fatalf("expected interrupt at EOF, got %v", err)
	}
	if err := term.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestReadKeyControlAborts(t *testing.T) {
	for _, in := range []string{"\x03", "\x1b", "\x04"} {
		if _, err := NewReader(strings.NewReader(in)).ReadKey(); !errors.Is(err, drill.ErrInterrupted) {
			t.Fatalf("expected interrupt for %q, got %v", in, err)
		}
	}
}

func TestReadKeySkipsControlsAndEscapeSequences(t *testing.T) {
	term := NewReader(strings.NewReader("\r\n\x01\x1b[A\x1b[1;5C\x1bOPa\x1bxb"))
	for _, want := range []string{"a", "b"} {
		kp, err := term.ReadKey()
		if err != nil {
			t.Fatalf("read key: %v", err)
		}
		if kp.Key != want {
			t.Fatalf("expected %q, got %q", want, kp.Key)
		}
	}
	if _, err := term.ReadKey(); !errors.Is(err, drill.ErrInterrupted) {
		t.Fatalf("expected interrupt at EOF, got %v", err)
	}
}

func TestLineBreakKeyKeepsLogLoadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")
	backend := eventlog.NewFileBackend(path)
	sc, err := scorer.New(scorer.DefaultWeights)
	if err != nil {
		t.Fatalf("new scorer: %v", err)
	}
	ctx := context.Background()
	s, err := drill.NewSession(ctx, []string{"a"}, sc, backend, false)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	var out bytes.Buffer
	res, err := drill.Run(ctx, s, NewReader(strings.NewReader("\na")), &out, 1)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Rounds != 1 || res.Attempts != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if err := s.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	reloaded, err := drill.NewSession(ctx, []string{"a"}, sc, backend, false)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	events := reloaded.Events()
	if len(events) != 1 || events[0].Typed != "a" {
		t.Fatalf("unexpected events %+v", events)
	}
}
