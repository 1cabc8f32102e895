package cli

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Timeframes offered by the interactive selector.
var Timeframes = []string{"day", "week", "month", "year"}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8E0830"))
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C91B79"))
	activeStyle = lipgloss.NewStyle().Underline(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// renderedMsg carries a drawn dashboard back to the model.
type renderedMsg struct {
	timeframe string
	view      string
}

// watchModel is the interactive time frame selector. Enter refreshes the
// dashboard for the highlighted time frame.
type watchModel struct {
	options []string
	cursor  int
	current string
	busy    bool
	view    string
	refresh func(timeframe string) string
}

func newWatchModel(initial string, refresh func(string) string) watchModel {
	options := append([]string(nil), Timeframes...)
	cursor := -1
	for i, o := range options {
		if o == initial {
			cursor = i
		}
	}
	if cursor < 0 {
		options = append(options, initial)
		cursor = len(options) - 1
	}
	return watchModel{options: options, cursor: cursor, current: initial, refresh: refresh}
}

func (m watchModel) load(timeframe string) tea.Cmd {
	return func() tea.Msg {
		return renderedMsg{timeframe: timeframe, view: m.refresh(timeframe)}
	}
}

func (m watchModel) Init() tea.Cmd {
	return m.load(m.current)
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "left", "h", "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "right", "l", "down", "j":
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
		case "enter", " ":
			m.current = m.options[m.cursor]
			m.busy = true
			return m, m.load(m.current)
		case "r":
			m.busy = true
			return m, m.load(m.current)
		}
	case renderedMsg:
		// a slower, older refresh must not replace the selected one
		if msg.timeframe == m.current {
			m.view = msg.view
			m.busy = false
		}
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("stratadash") + "  ")
	for i, o := range m.options {
		label := o
		if o == m.current {
			label = activeStyle.Render(label)
		}
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> ") + label + "  ")
		} else {
			b.WriteString("  " + label + "  ")
		}
	}
	if m.busy {
		b.WriteString(mutedStyle.Render("refreshing..."))
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("←/→ choose • enter refresh • r reload • q quit"))
	b.WriteString("\n\n")
	b.WriteString(m.view)
	return b.String()
}
