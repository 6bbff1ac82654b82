package stats

import (
	"sort"

	"github.com/verte-zerg/keydrill/internal/model"
	"github.com/verte-zerg/keydrill/internal/scorer"
	"github.com/verte-zerg/keydrill/internal/selector"
)

// Row is one character's line in a report.
type Row struct {
	Char   string
	Stat   model.Stat
	Reward float64
	Score  float64
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Rows   []Row
	Total  int
	Events int
	// Errors holds 1 for every in-universe error and 0 for every correct
	// keystroke, in log order.
	Errors []float64
}

// BuildReport aggregates events and ranks the universe the same way the
// drill does, so rows come out in selection order.
func BuildReport(events []model.Event, universe []string, sc *scorer.Scorer) Report {
	stats := Aggregate(events, universe)
	ranked := selector.Rank(sc.Score(stats, universe))
	rows := make([]Row, 0, len(ranked))
	for _, s := range ranked {
		rows = append(rows, Row{
			Char:   s.Char,
			Stat:   stats[s.Char],
			Reward: s.Reward,
			Score:  s.Value,
		})
	}
	return Report{
		Rows:   rows,
		Total:  TotalAttempts(stats, universe),
		Events: len(events),
		Errors: errorSeries(events, stats),
	}
}

// Row returns the row for char.
func (r Report) Row(char string) (Row, bool) {
	for _, row := range r.Rows {
		if row.Char == char {
			return row, true
		}
	}
	return Row{}, false
}

// TopChars returns up to n attempted characters with the most attempts.
func (r Report) TopChars(n int) []string {
	if n <= 0 {
		return nil
	}
	rows := make([]Row, len(r.Rows))
	copy(rows, r.Rows)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Stat.Count > rows[j].Stat.Count
	})
	var out []string
	for _, row := range rows {
		if row.Stat.Count == 0 || len(out) == n {
			break
		}
		out = append(out, row.Char)
	}
	return out
}

func errorSeries(events []model.Event, stats map[string]model.Stat) []float64 {
	out := make([]float64, 0, len(events))
	for _, e := range events {
		if _, ok := stats[e.Char]; !ok {
			continue
		}
		if e.IsError() {
			out = append(out, 1)
		} else {
			out = append(out, 0)
		}
	}
	return out
}
