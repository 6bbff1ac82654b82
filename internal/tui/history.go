package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// renderHistory draws the most recent attempts that fit in width cells,
// oldest on the left. A miss shows the key that was typed.
func renderHistory(history []attempt, width int) string {
	if len(history) == 0 || width <= 0 {
		return ""
	}
	cells := make([]string, 0, len(history))
	used := 0
	for i := len(history) - 1; i >= 0; i-- {
		a := history[i]
		label := a.char
		style := correctStyle
		if !a.ok {
			label = a.typed
			style = wrongStyle
		}
		if label == " " {
			label = "␣"
		}
		w := runewidth.StringWidth(label) + 1
		if used+w > width {
			break
		}
		used += w
		cells = append(cells, style.Render(label))
	}
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	return strings.Join(cells, " ")
}
