package stats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/keydrill/internal/fileutil"
	"github.com/verte-zerg/keydrill/internal/model"
)

// SummaryRow is one line of the exported summary.
type SummaryRow struct {
	Char    string
	Count   int
	NErrors int
}

// FormatSummaryLine renders "character, count, n_errors".
func FormatSummaryLine(char string, st model.Stat) string {
	return fmt.Sprintf("%s, %d, %d", char, st.Count, st.NErrors)
}

// ParseSummaryLine decodes one summary line and checks n_errors <= count.
func ParseSummaryLine(line string) (SummaryRow, error) {
	fields := strings.Split(line, ", ")
	if len(fields) != 3 {
		return SummaryRow{}, fmt.Errorf("malformed summary line %q: expected 3 fields, got %d", line, len(fields))
	}
	count, err := strconv.Atoi(fields[1])
	if err != nil {
		return SummaryRow{}, fmt.Errorf("malformed summary line %q: bad count: %w", line, err)
	}
	nErrors, err := strconv.Atoi(fields[2])
	if err != nil {
		return SummaryRow{}, fmt.Errorf("malformed summary line %q: bad n_errors: %w", line, err)
	}
	if err := (model.Stat{Count: count, NErrors: nErrors}).Validate(); err != nil {
		var inv *model.InvariantError
		if errors.As(err, &inv) {
			inv.Char = fields[0]
		}
		return SummaryRow{}, err
	}
	return SummaryRow{Char: fields[0], Count: count, NErrors: nErrors}, nil
}

// SummaryLines orders universe characters by attempt count, descending.
// Ties keep universe order.
func SummaryLines(stats map[string]model.Stat, universe []string) []string {
	chars := make([]string, len(universe))
	copy(chars, universe)
	sort.SliceStable(chars, func(i, j int) bool {
		return stats[chars[i]].Count > stats[chars[j]].Count
	})
	lines := make([]string, len(chars))
	for i, ch := range chars {
		lines[i] = FormatSummaryLine(ch, stats[ch])
	}
	return lines
}

// WriteSummary exports the per-character summary. The file is derived
// output only and is never read back for scoring.
func WriteSummary(path string, stats map[string]model.Stat, universe []string) error {
	return fileutil.WriteLines(path, SummaryLines(stats, universe))
}

// ReadSummary loads an exported summary for display. A missing file
// yields no rows.
func ReadSummary(path string) ([]SummaryRow, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open summary: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			log.Warn().Err(cerr).Str("path", path).Msg("failed to close summary")
		}
	}()

	var rows []SummaryRow
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		row, err := ParseSummaryLine(strings.TrimSuffix(scanner.Text(), "\r"))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, lineNo, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read summary: %w", err)
	}
	return rows, nil
}

// RenderSummaryRows prints an exported summary as an aligned table.
func RenderSummaryRows(w io.Writer, rows []SummaryRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No summary exported yet.")
		return err
	}
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, []string{CharLabel(r.Char), fmt.Sprintf("%d", r.Count), fmt.Sprintf("%d", r.NErrors)})
	}
	for _, line := range formatTable([]string{"Char", "Attempts", "Errors"}, cells, map[int]bool{1: true, 2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
