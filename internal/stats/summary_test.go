package stats

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/keydrill/internal/model"
)

func TestWriteSummarySortsByCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.txt")
	stats := map[string]model.Stat{
		"a": {Count: 2, NErrors: 1},
		"b": {Count: 5, NErrors: 0},
		",": {Count: 2, NErrors: 2},
		"c": {},
	}
	if err := WriteSummary(path, stats, []string{"a", "b", ",", "c"}); err != nil {
		t.Fatalf("write summary: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	want := "b, 5, 0\na, 2, 1\n,, 2, 2\nc, 0, 0\n"
	if string(raw) != want {
		t.Fatalf("unexpected summary:\n%s", raw)
	}

	rows, err := ReadSummary(path)
	if err != nil {
		t.Fatalf("read summary rows: %v", err)
	}
	if len(rows) != 4 || rows[2] != (SummaryRow{Char: ",", Count: 2, NErrors: 2}) {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestReadSummaryMissing(t *testing.T) {
	rows, err := ReadSummary(filepath.Join(t.TempDir(), "nope.txt"))
	if err != nil || rows != nil {
		t.Fatalf("expected empty result, got %v, %v", rows, err)
	}
}

func TestParseSummaryLineInvariant(t *testing.T) {
	_, err := ParseSummaryLine("a, 1, 3")
	var inv *model.InvariantError
	if !errors.As(err, &inv) {
		t.Fatalf("expected invariant error, got %v", err)
	}
	if inv.Char != "a" {
		t.Fatalf("expected char in invariant error, got %q", inv.Char)
	}
}

func TestParseSummaryLineMalformed(t *testing.T) {
	for _, line := range []string{"a, 1", "a, x, 0", "a, 1, y", "a, 1, 0, 0"} {
		if _, err := ParseSummaryLine(line); err == nil {
			t.Fatalf("expected error for %q", line)
		}
	}
}

func TestReadSummaryInvariantIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.txt")
	if err := os.WriteFile(path, []byte("a, 3, 1\nb, 1, 2\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := ReadSummary(path)
	var inv *model.InvariantError
	if !errors.As(err, &inv) {
		t.Fatalf("expected invariant error, got %v", err)
	}
}

func TestRenderSummaryRows(t *testing.T) {
	var buf bytes.Buffer
	rows := []SummaryRow{{Char: "b", Count: 12, NErrors: 3}, {Char: " ", Count: 1, NErrors: 0}}
	if err := RenderSummaryRows(&buf, rows); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %q", lines)
	}
	if lines[0] != "Char    Attempts Errors" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != "b             12      3" {
		t.Fatalf("unexpected row %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "<space>") {
		t.Fatalf("expected visible space label, got %q", lines[2])
	}

	buf.Reset()
	if err := RenderSummaryRows(&buf, nil); err != nil {
		t.Fatalf("render empty: %v", err)
	}
	if !strings.Contains(buf.String(), "No summary") {
		t.Fatalf("unexpected empty output %q", buf.String())
	}
}
