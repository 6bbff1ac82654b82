// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keydrill/internal/model"
	"github.com/verte-zerg/keydrill/internal/stats"
	"github.com/verte-zerg/keydrill/internal/universe"
)

const (
	tabChars = iota
	tabTrends
)

const defaultTopChars = 5

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	report stats.Report
	cfg    model.StatsConfig

	tabs      []string
	activeTab int
	charTable table.Model
	trends    viewport.Model

	width  int
	height int

	charSelection []string
	charCustom    bool
	charInputMode bool
	charInput     textinput.Model
}

// NewModel constructs a stats UI model over a prepared report.
func NewModel(report stats.Report, cfg model.StatsConfig) *Model {
	m := &Model{
		report: report,
		cfg:    cfg,
		tabs:   []string{"Characters", "Trends"},
		trends: viewport.New(0, 0),
	}
	m.charSelection = universe.Split(normalizeCharInput(cfg.Chars))
	m.charCustom = len(m.charSelection) > 0
	if !m.charCustom {
		m.charSelection = report.TopChars(defaultTopChars)
	}
	m.charInput = textinput.New()
	m.charInput.Prompt = "Chars: "
	m.charInput.Placeholder = "asdfjkl;"
	m.charInput.Cursor.SetMode(cursor.CursorBlink)
	m.charTable = buildCharTable(report.Rows, 80, 10)
	m.renderTrends()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.charInputMode {
			return m.updateCharInput(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "tab", "left", "right", "h", "l":
			m.activeTab = (m.activeTab + 1) % len(m.tabs)
			if m.activeTab == tabChars {
				m.charTable.Focus()
			} else {
				m.charTable.Blur()
			}
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.renderTrends()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.renderTrends()
			return m, nil
		case "/", "enter":
			m.charInputMode = true
			m.charInput.SetValue(strings.Join(m.charSelection, ""))
			return m, m.charInput.Focus()
		}
		var cmd tea.Cmd
		if m.activeTab == tabChars {
			m.charTable, cmd = m.charTable.Update(msg)
		} else {
			m.trends, cmd = m.trends.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateCharInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.charInputMode = false
		m.charInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.applyCharInput(m.charInput.Value())
		m.charInputMode = false
		m.charInput.Blur()
		m.activeTab = tabTrends
		m.charTable.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.charInput, cmd = m.charInput.Update(msg)
	return m, cmd
}

func (m *Model) applyCharInput(value string) {
	chars := universe.Split(normalizeCharInput(value))
	if len(chars) == 0 {
		m.charCustom = false
		m.charSelection = m.report.TopChars(defaultTopChars)
	} else {
		m.charCustom = true
		m.charSelection = chars
	}
	m.renderTrends()
}

func (m *Model) updateLayout() {
	bodyHeight := m.bodyHeight()
	m.trends.Width = m.width
	m.trends.Height = bodyHeight
	m.charTable.SetWidth(m.width)
	m.charTable.SetHeight(max(1, bodyHeight-1))
	m.charInput.Width = max(10, min(m.width-4, 80)-6-lipgloss.Width(m.charInput.Prompt))
	m.renderTrends()
}

func (m *Model) bodyHeight() int {
	tabsHeight := max(1, lipgloss.Height(activeNavStyle.Render("X")))
	return max(1, m.height-tabsHeight-2)
}

func (m *Model) renderTrends() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	var buf bytes.Buffer
	source := "top"
	if m.charCustom {
		source = "custom"
	}
	header := headerStyle.Render(fmt.Sprintf("Window: %d  Chars (%s): %s", m.cfg.CurveWindow, source, strings.Join(labels(m.charSelection), " ")))
	buf.WriteString(header + "\n\n")
	if err := stats.RenderTrends(&buf, m.report, m.charSelection, m.cfg.CurveWindow, max(10, width-30)); err != nil {
		m.trends.SetContent(fmt.Sprintf("Failed to render trends: %v", err))
		return
	}
	m.trends.SetContent(strings.TrimRight(buf.String(), "\n"))
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.charInputMode {
		box := modalStyle.Width(max(40, min(m.width-4, 80))).Render(
			"Trend characters (enter to apply, esc to cancel)\n\n" + m.charInput.View())
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	bodyHeight := m.bodyHeight()
	var body string
	switch m.activeTab {
	case tabChars:
		if len(m.report.Rows) == 0 {
			body = "No characters in universe."
		} else {
			body = tableMutedStyle.Render(m.charTable.View())
		}
	default:
		body = m.trends.View()
	}
	return strings.Join([]string{
		m.renderTabs(),
		fitLines(body, m.width, bodyHeight),
		headerStyle.Render(m.renderHelp()),
	}, "\n")
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	summary := headerStyle.Render(fmt.Sprintf("  %d attempts over %d characters", m.report.Total, len(m.report.Rows)))
	return lipgloss.JoinHorizontal(lipgloss.Center, append(parts, summary)...)
}

func (m *Model) renderHelp() string {
	return "Tab: switch  Scroll: up/down  Window: -/=  Chars: /  Quit: q"
}

func buildCharTable(rows []stats.Row, width, height int) table.Model {
	columns := make([]table.Column, len(stats.CharTableHeaders))
	for i, h := range stats.CharTableHeaders {
		columns[i] = table.Column{Title: h, Width: max(len(h), 7)}
	}
	cells := stats.CharTableRows(rows)
	tableRows := make([]table.Row, len(cells))
	for i, c := range cells {
		tableRows[i] = table.Row(c)
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(tableRows),
		table.WithHeight(max(1, height-1)),
		table.WithFocused(true),
	)
	t.SetWidth(width)
	t.SetStyles(charTableStyles())
	return t
}

func charTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func labels(chars []string) []string {
	out := make([]string, len(chars))
	for i, ch := range chars {
		out[i] = stats.CharLabel(ch)
	}
	return out
}

func normalizeCharInput(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if r == ',' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
