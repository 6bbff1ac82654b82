// Package tui provides the Bubble Tea drill interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keydrill/internal/drill"
	statsPkg "github.com/verte-zerg/keydrill/internal/stats"
)

const historySize = 40

type attempt struct {
	char  string
	typed string
	ok    bool
}

// Model implements the Bubble Tea drill UI.
type Model struct {
	ctx     context.Context
	session *drill.Session
	rounds  int
	preview int

	width  int
	height int

	current drill.Pick
	queue   []drill.Pick
	shownAt time.Time

	result  drill.Result
	history []attempt
	missed  bool
	err     error
	now     func() time.Time
}

var (
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true).Padding(1, 3).Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#C89A3A"))
	missStyle    = promptStyle.Copy().BorderForeground(lipgloss.Color("#FF4D4F"))
	correctStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FBF7F"))
	wrongStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a drill model that runs rounds rounds and shows
// preview upcoming characters in the footer.
func NewModel(ctx context.Context, session *drill.Session, rounds, preview int) *Model {
	m := &Model{
		ctx:     ctx,
		session: session,
		rounds:  rounds,
		preview: preview,
		now:     time.Now,
	}
	m.advance()
	return m
}

// Result reports rounds completed and attempts made.
func (m *Model) Result() drill.Result {
	return m.result
}

// Err returns the error that stopped the drill, if any.
func (m *Model) Err() error {
	return m.err
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
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeySpace:
			return m, m.handleKey(" ")
		case tea.KeyRunes:
			var cmd tea.Cmd
			for _, r := range msg.Runes {
				if cmd = m.handleKey(string(r)); cmd != nil {
					break
				}
			}
			return m, cmd
		default:
			return m, nil
		}
	default:
		return m, nil
	}
}

func (m *Model) handleKey(key string) tea.Cmd {
	if m.result.Rounds >= m.rounds {
		return tea.Quit
	}
	now := m.now()
	kp := drill.KeyPress{Key: key, StartedAt: m.shownAt, Elapsed: now.Sub(m.shownAt)}
	e, err := m.session.Record(m.ctx, m.current.Char, kp)
	if errors.Is(err, drill.ErrUnencodableKey) {
		return nil
	}
	m.result.Attempts++
	if e.IsError() {
		m.result.Errors++
	}
	if err != nil {
		m.err = err
		return tea.Quit
	}
	m.history = append(m.history, attempt{char: e.Char, typed: e.Typed, ok: e.IsCorrect()})
	if len(m.history) > historySize {
		m.history = m.history[len(m.history)-historySize:]
	}
	m.shownAt = now
	if e.IsError() {
		m.missed = true
		return nil
	}
	m.result.Rounds++
	if m.result.Rounds >= m.rounds {
		return tea.Quit
	}
	m.advance()
	return nil
}

func (m *Model) advance() {
	picks := m.session.Next(1 + m.preview)
	if len(picks) == 0 {
		return
	}
	m.current = picks[0]
	m.queue = picks[1:]
	m.missed = false
	m.shownAt = m.now()
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.current.Char == "" {
		return ""
	}
	style := promptStyle
	if m.missed {
		style = missStyle
	}
	body := lipgloss.JoinVertical(lipgloss.Center,
		style.Render(statsPkg.CharLabel(m.current.Char)),
		"",
		infoStyle.Render(m.renderInfo()),
		"",
		renderHistory(m.history, max(m.width-4, 10)),
	)
	footer := footerStyle.Render(m.renderFooter())
	if m.width == 0 || m.height < 3 {
		return body + "\n" + footer
	}
	bodyLine := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, body)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return bodyLine + "\n" + footerLine
}

func (m *Model) renderInfo() string {
	p := m.current
	return fmt.Sprintf("Attempts %d · Errors %d · Reward %.2f · Score %s",
		p.Stat.Count, p.Stat.NErrors, p.Reward, statsPkg.FormatScore(p.Score))
}

func (m *Model) renderFooter() string {
	segments := []string{
		fmt.Sprintf("Round %d/%d", min(m.result.Rounds+1, m.rounds), m.rounds),
		fmt.Sprintf("Keys %d", m.result.Attempts),
		fmt.Sprintf("Misses %d", m.result.Errors),
	}
	if len(m.queue) > 0 {
		next := make([]string, len(m.queue))
		for i, p := range m.queue {
			next[i] = statsPkg.CharLabel(p.Char)
		}
		segments = append(segments, "Next "+strings.Join(next, " "))
	}
	segments = append(segments, "esc quit")
	return strings.Join(segments, "  ")
}
