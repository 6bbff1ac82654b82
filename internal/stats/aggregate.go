// Package stats folds the event log into per-character statistics and
// renders reports from them.
package stats

import "github.com/verte-zerg/keydrill/internal/model"

// Aggregate builds one Stat per universe character from events in log
// order. Events for characters outside the universe are skipped.
func Aggregate(events []model.Event, universe []string) map[string]model.Stat {
	stats := make(map[string]model.Stat, len(universe))
	for _, ch := range universe {
		stats[ch] = model.Stat{}
	}
	for _, e := range events {
		st, ok := stats[e.Char]
		if !ok {
			continue
		}
		st.Add(e)
		stats[e.Char] = st
	}
	return stats
}

// TotalAttempts sums attempt counts over the universe.
func TotalAttempts(stats map[string]model.Stat, universe []string) int {
	total := 0
	for _, ch := range universe {
		total += stats[ch].Count
	}
	return total
}
