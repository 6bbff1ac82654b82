package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Tail keeps the last n values.
func Tail(values []float64, n int) []float64 {
	if n <= 0 || len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

// CharLabel makes whitespace characters visible.
func CharLabel(ch string) string {
	switch ch {
	case " ":
		return "<space>"
	case "\t":
		return "<tab>"
	default:
		return ch
	}
}

// FormatScore renders a UCB score, spelling out infinity.
func FormatScore(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.3f", v)
}

// FormatLatency renders the median latency or "-" when there is none.
func FormatLatency(row Row) string {
	median, ok := row.Stat.MedianLatency()
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.2f", median)
}

// CharTableRows formats report rows as table cells.
func CharTableRows(rows []Row) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			CharLabel(r.Char),
			fmt.Sprintf("%d", r.Stat.Count),
			fmt.Sprintf("%d", r.Stat.NErrors),
			fmt.Sprintf("%.2f%%", r.Stat.ErrorRate()*100),
			FormatLatency(r),
			fmt.Sprintf("%.3f", r.Reward),
			FormatScore(r.Score),
		})
	}
	return out
}

// CharTableHeaders are the column names of CharTableRows.
var CharTableHeaders = []string{"Char", "Attempts", "Errors", "Error Rate", "Median (s)", "Reward", "Score"}

// RenderSummary prints overall totals.
func RenderSummary(w io.Writer, report Report) error {
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	errs := 0
	for _, v := range report.Errors {
		errs += int(v)
	}
	acc := 0.0
	if len(report.Errors) > 0 {
		acc = float64(len(report.Errors)-errs) / float64(len(report.Errors))
	}
	lines := []string{
		fmt.Sprintf("Characters: %d", len(report.Rows)),
		fmt.Sprintf("Attempts: %d", report.Total),
		fmt.Sprintf("Errors: %d", errs),
		fmt.Sprintf("Accuracy: %.2f%%", acc*100),
	}
	if skipped := report.Events - len(report.Errors); skipped > 0 {
		lines = append(lines, fmt.Sprintf("Outside universe: %d", skipped))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCharTable prints per-character stats in selection order.
func RenderCharTable(w io.Writer, rows []Row) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No characters in universe.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Character (next pick first)"); err != nil {
		return err
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true}
	for _, line := range formatTable(CharTableHeaders, CharTableRows(rows), rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderTrends prints sparklines of the error rate and of each selected
// character's latency, smoothed over window attempts.
func RenderTrends(w io.Writer, report Report, chars []string, window, width int) error {
	if _, err := fmt.Fprintln(w, "Trends"); err != nil {
		return err
	}
	if len(report.Errors) == 0 {
		_, err := fmt.Fprintln(w, "No attempts recorded yet.")
		return err
	}
	errTrend := Tail(MovingAverage(report.Errors, window), width)
	if _, err := fmt.Fprintf(w, "%-9s %s  now %.1f%%\n", "errors", Sparkline(errTrend), errTrend[len(errTrend)-1]*100); err != nil {
		return err
	}
	for _, ch := range chars {
		row, ok := report.Row(ch)
		if !ok || len(row.Stat.Latencies) == 0 {
			if _, err := fmt.Fprintf(w, "%-9s (no attempts)\n", CharLabel(ch)); err != nil {
				return err
			}
			continue
		}
		lat := Tail(MovingAverage(row.Stat.Latencies, window), width)
		if _, err := fmt.Fprintf(w, "%-9s %s  now %.2fs\n", CharLabel(ch), Sparkline(lat), lat[len(lat)-1]); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
