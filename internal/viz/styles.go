package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles are derived from a theme whenever it changes.
type styles struct {
	canvas  lipgloss.Style
	panel   lipgloss.Style
	title   lipgloss.Style
	sub     lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	mapped  lipgloss.Style
	running lipgloss.Style
	paused  lipgloss.Style
	graph   lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas: lipgloss.NewStyle().Foreground(t.Canvas).Padding(1, 2),
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(46),
		title:   lipgloss.NewStyle().Foreground(t.Title).Bold(true),
		sub:     lipgloss.NewStyle().Foreground(t.Label).Italic(true),
		label:   lipgloss.NewStyle().Foreground(t.Label).Width(22),
		value:   lipgloss.NewStyle().Foreground(t.Value),
		mapped:  lipgloss.NewStyle().Foreground(t.Mapped).Bold(true),
		running: lipgloss.NewStyle().Foreground(t.Running).Bold(true),
		paused:  lipgloss.NewStyle().Foreground(t.Paused).Bold(true),
		graph:   lipgloss.NewStyle().Foreground(t.Graph).Padding(1, 0),
		muted:   lipgloss.NewStyle().Foreground(t.Muted),
	}
}

// Bar renders a fraction in [0, 1] as a fixed-width gauge.
func Bar(frac float64, width int) string {
	filled := int(frac*float64(width) + 0.5)
	filled = min(max(filled, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Separator draws a muted rule of the given width.
func Separator(width int) string {
	if width < 5 {
		return strings.Repeat("─", max(width, 0))
	}
	mid := width / 2
	return strings.Repeat("─", mid-2) + " ◆ " + strings.Repeat("─", width-mid-1)
}
