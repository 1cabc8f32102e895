package termview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	r     *lipgloss.Renderer
	title lipgloss.Style
	label lipgloss.Style
	value lipgloss.Style
	muted lipgloss.Style
	busy  lipgloss.Style

	// bar styles by chart color; guarded by the owning View's mutex
	bar map[string]lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) *styles {
	return &styles{
		r:     r,
		title: r.NewStyle().Bold(true),
		label: r.NewStyle().Foreground(lipgloss.Color("#9CA3AF")),
		value: r.NewStyle().Bold(true),
		muted: r.NewStyle().Foreground(lipgloss.Color("#6B7280")).Italic(true),
		busy:  r.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		bar:   make(map[string]lipgloss.Style),
	}
}

// series returns the bar style for a chart color such as
// "rgba(142, 8, 48, 1)".
func (s *styles) series(color string) lipgloss.Style {
	if st, ok := s.bar[color]; ok {
		return st
	}
	st := s.r.NewStyle().Foreground(ToColor(color))
	s.bar[color] = st
	return st
}

// ToColor converts a CSS rgb()/rgba() or hex color to a lipgloss color.
// Alpha is ignored. Anything else is passed through unchanged.
func ToColor(css string) lipgloss.Color {
	css = strings.TrimSpace(css)
	var r, g, b int
	for _, format := range []string{"rgba(%d, %d, %d", "rgb(%d, %d, %d"} {
		if n, err := fmt.Sscanf(css, format, &r, &g, &b); err == nil && n == 3 {
			return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", clamp(r), clamp(g), clamp(b)))
		}
	}
	return lipgloss.Color(css)
}

func clamp(c int) int {
	return min(max(c, 0), 255)
}
