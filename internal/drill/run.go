package drill

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/verte-zerg/keydrill/internal/stats"
)

// Result summarises one run of the loop.
type Result struct {
	Rounds   int
	Attempts int
	Errors   int
}

// Run drills rounds characters. Each round re-selects the best
// character, prompts for it and keeps reading keys until the right one
// is typed. Output lines end in CRLF because the terminal is in raw mode.
// An interrupted collector ends the loop without error.
func Run(ctx context.Context, s *Session, collector Collector, out io.Writer, rounds int) (Result, error) {
	var res Result
	for res.Rounds < rounds {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		picks := s.Next(1)
		if len(picks) == 0 {
			return res, fmt.Errorf("nothing to drill")
		}
		p := picks[0]
		if _, err := fmt.Fprintf(out, "Type: %s\t(Attempts: %d, Errors: %d, Reward: %.2f)\r\n",
			stats.CharLabel(p.Char), p.Stat.Count, p.Stat.NErrors, p.Reward); err != nil {
			return res, err
		}
		for {
			kp, err := collector.ReadKey()
			if err != nil {
				if errors.Is(err, ErrInterrupted) {
					return res, nil
				}
				return res, fmt.Errorf("failed to read key: %w", err)
			}
			e, err := s.Record(ctx, p.Char, kp)
			if errors.Is(err, ErrUnencodableKey) {
				continue
			}
			res.Attempts++
			if e.IsError() {
				res.Errors++
			}
			if err != nil {
				return res, err
			}
			if e.IsCorrect() {
				break
			}
			if _, err := fmt.Fprintf(out, "  missed (typed %s)\r\n", stats.CharLabel(kp.Key)); err != nil {
				return res, err
			}
		}
		res.Rounds++
	}
	return res, nil
}
