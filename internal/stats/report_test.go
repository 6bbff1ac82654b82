package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/verte-zerg/keydrill/internal/model"
	"github.com/verte-zerg/keydrill/internal/scorer"
)

func testEvents() []model.Event {
	return []model.Event{
		{Timestamp: 1, Char: "a", Typed: "a", Elapsed: 0.3},
		{Timestamp: 2, Char: "a", Typed: "a", Elapsed: 0.4},
		{Timestamp: 3, Char: "a", Typed: "s", Elapsed: 0.5},
		{Timestamp: 4, Char: "c", Typed: "c", Elapsed: 0.2},
		{Timestamp: 5, Char: "z", Typed: "z", Elapsed: 0.2},
	}
}

func TestBuildReport(t *testing.T) {
	sc, err := scorer.New(scorer.DefaultWeights)
	if err != nil {
		t.Fatalf("new scorer: %v", err)
	}
	report := BuildReport(testEvents(), []string{"a", "b", "c"}, sc)
	if len(report.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(report.Rows))
	}
	if report.Rows[0].Char != "b" || !math.IsInf(report.Rows[0].Score, 1) {
		t.Fatalf("expected unattempted b first, got %+v", report.Rows[0])
	}
	if report.Total != 4 || report.Events != 5 {
		t.Fatalf("unexpected totals: %d/%d", report.Total, report.Events)
	}
	if len(report.Errors) != 4 || report.Errors[2] != 1 {
		t.Fatalf("unexpected error series: %v", report.Errors)
	}
	if top := report.TopChars(5); len(top) != 2 || top[0] != "a" || top[1] != "c" {
		t.Fatalf("unexpected top chars: %v", top)
	}
	if _, ok := report.Row("z"); ok {
		t.Fatalf("z is outside the universe")
	}
}

func TestRenderReport(t *testing.T) {
	sc, err := scorer.New(scorer.DefaultWeights)
	if err != nil {
		t.Fatalf("new scorer: %v", err)
	}
	report := BuildReport(testEvents(), []string{"a", "b", " "}, sc)
	var buf bytes.Buffer
	if err := RenderSummary(&buf, report); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if err := RenderCharTable(&buf, report.Rows); err != nil {
		t.Fatalf("render table: %v", err)
	}
	if err := RenderTrends(&buf, report, []string{"a", "b"}, 2, 40); err != nil {
		t.Fatalf("render trends: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Attempts: 3", "Accuracy: 66.67%", "Outside universe: 2", "<space>", "inf", "Trends", "(no attempts)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{1, 3, 5, 7}, 2)
	want := []float64{1, 2, 4, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{1, 1, 1}); got != "+++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
	got := Sparkline([]float64{0, 1})
	if got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
}
