// Package scorer ranks characters with an upper confidence bound over
// their attempt statistics.
package scorer

import (
	"fmt"
	"math"

	"github.com/verte-zerg/keydrill/internal/model"
)

// Weights blends error rate and median latency into a reward.
type Weights struct {
	Error   float64
	Latency float64
}

// DefaultWeights favours errors five to one over latency in seconds.
var DefaultWeights = Weights{Error: 5, Latency: 1}

// Validate requires finite, non-negative weights with a positive sum.
func (w Weights) Validate() error {
	if !isFinite(w.Error) || !isFinite(w.Latency) {
		return fmt.Errorf("weights must be finite (error=%g, latency=%g)", w.Error, w.Latency)
	}
	if w.Error < 0 || w.Latency < 0 {
		return fmt.Errorf("weights must be >= 0 (error=%g, latency=%g)", w.Error, w.Latency)
	}
	if w.Error+w.Latency <= 0 {
		return fmt.Errorf("weights must not both be zero")
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Score is the ranking value of one character.
type Score struct {
	Char   string
	Value  float64
	Reward float64
}

// Scorer computes rewards and UCB scores.
type Scorer struct {
	weights Weights
}

// New returns a Scorer using w.
func New(w Weights) (*Scorer, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{weights: w}, nil
}

// Weights returns the configured weights.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Reward is the weighted mean of error rate and median latency. Higher
// means the character needs more practice. A character with no
// attempts has reward 0.
func (s *Scorer) Reward(st model.Stat) float64 {
	median, ok := st.MedianLatency()
	if !ok {
		return 0
	}
	w := s.weights
	return (w.Error*st.ErrorRate() + w.Latency*median) / (w.Error + w.Latency)
}

// UCB returns +Inf for an unattempted character, otherwise the reward
// plus the UCB1 exploration bonus sqrt(ln(total) / (2*count)).
func (s *Scorer) UCB(st model.Stat, total int) float64 {
	if st.Count == 0 {
		return math.Inf(1)
	}
	bonus := math.Sqrt(math.Log(float64(total)) / (2 * float64(st.Count)))
	return s.Reward(st) + bonus
}

// Score returns one Score per universe character, in universe order.
// total is the attempt count summed over the universe.
func (s *Scorer) Score(stats map[string]model.Stat, universe []string) []Score {
	total := 0
	for _, ch := range universe {
		total += stats[ch].Count
	}
	out := make([]Score, 0, len(universe))
	for _, ch := range universe {
		st := stats[ch]
		out = append(out, Score{
			Char:   ch,
			Value:  s.UCB(st, total),
			Reward: s.Reward(st),
		})
	}
	return out
}
