// Package selector picks the next characters to drill.
package selector

import (
	"sort"

	"github.com/verte-zerg/keydrill/internal/scorer"
)

// Select returns up to n characters ordered by score, highest first.
func Select(scores []scorer.Score, n int) []string {
	if n <= 0 || len(scores) == 0 {
		return nil
	}
	ranked := Rank(scores)
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]string, 0, n)
	for _, s := range ranked[:n] {
		out = append(out, s.Char)
	}
	return out
}

// Rank sorts a copy of scores by value, highest first. Equal values,
// including several +Inf for unattempted characters, keep input order,
// which is the universe file order.
func Rank(scores []scorer.Score) []scorer.Score {
	ranked := make([]scorer.Score, len(scores))
	copy(ranked, scores)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Value > ranked[j].Value
	})
	return ranked
}
