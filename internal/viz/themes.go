package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the palette of the lesson view.
type Theme struct {
	Name    string
	Canvas  lipgloss.Color
	Title   lipgloss.Color
	Label   lipgloss.Color
	Value   lipgloss.Color
	Mapped  lipgloss.Color
	Muted   lipgloss.Color
	Running lipgloss.Color
	Paused  lipgloss.Color
	Graph   lipgloss.Color
}

var Themes = []Theme{
	{
		Name:    "midnight",
		Canvas:  lipgloss.Color("#4fc3f7"),
		Title:   lipgloss.Color("#e1f5fe"),
		Label:   lipgloss.Color("#78909c"),
		Value:   lipgloss.Color("#eceff1"),
		Mapped:  lipgloss.Color("#ffb74d"),
		Muted:   lipgloss.Color("#455a64"),
		Running: lipgloss.Color("#81c784"),
		Paused:  lipgloss.Color("#ffd54f"),
		Graph:   lipgloss.Color("#4dd0e1"),
	},
	{
		Name:    "phosphor",
		Canvas:  lipgloss.Color("#00ff66"),
		Title:   lipgloss.Color("#ccffcc"),
		Label:   lipgloss.Color("#009933"),
		Value:   lipgloss.Color("#66ff99"),
		Mapped:  lipgloss.Color("#ffff66"),
		Muted:   lipgloss.Color("#005522"),
		Running: lipgloss.Color("#66ff99"),
		Paused:  lipgloss.Color("#ffcc00"),
		Graph:   lipgloss.Color("#00cc55"),
	},
	{
		Name:    "paper",
		Canvas:  lipgloss.Color("#37474f"),
		Title:   lipgloss.Color("#263238"),
		Label:   lipgloss.Color("#607d8b"),
		Value:   lipgloss.Color("#212121"),
		Mapped:  lipgloss.Color("#d84315"),
		Muted:   lipgloss.Color("#b0bec5"),
		Running: lipgloss.Color("#2e7d32"),
		Paused:  lipgloss.Color("#ef6c00"),
		Graph:   lipgloss.Color("#1565c0"),
	},
	{
		Name:    "sunset",
		Canvas:  lipgloss.Color("#ff6b6b"),
		Title:   lipgloss.Color("#fff5f5"),
		Label:   lipgloss.Color("#8b6b8c"),
		Value:   lipgloss.Color("#feca57"),
		Mapped:  lipgloss.Color("#ff9ff3"),
		Muted:   lipgloss.Color("#5a3b5c"),
		Running: lipgloss.Color("#5fd068"),
		Paused:  lipgloss.Color("#ffc048"),
		Graph:   lipgloss.Color("#ff9ff3"),
	},
}

// GetTheme returns the theme called name, or the first theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme returns the theme after name in [Themes].
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
