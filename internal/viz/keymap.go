package viz

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the lesson view bindings.
type KeyMap struct {
	Toggle   key.Binding
	Next     key.Binding
	Prev     key.Binding
	Direct   key.Binding
	Language key.Binding
	Faster   key.Binding
	Slower   key.Binding
	Reset    key.Binding
	MetricUp key.Binding
	MetricDn key.Binding
	RotX     key.Binding
	RotY     key.Binding
	RotZ     key.Binding
	ZoomIn   key.Binding
	ZoomOut  key.Binding
	Theme    key.Binding
	Help     key.Binding
	Back     key.Binding
	Quit     key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Next, k.Language, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Reset, k.Faster, k.Slower},
		{k.Next, k.Prev, k.Direct, k.Language},
		{k.MetricUp, k.MetricDn, k.Theme},
		{k.RotX, k.RotY, k.RotZ, k.ZoomIn, k.ZoomOut},
		{k.Help, k.Back, k.Quit},
	}
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space", "start/pause"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next scenario"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev scenario"),
		),
		Direct: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "pick scenario"),
		),
		Language: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "language"),
		),
		Faster: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "faster"),
		),
		Slower: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "slower"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		MetricUp: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next graph"),
		),
		MetricDn: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev graph"),
		),
		RotX: key.NewBinding(
			key.WithKeys("x", "X"),
			key.WithHelp("x/X", "tilt"),
		),
		RotY: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y/Y", "orbit"),
		),
		RotZ: key.NewBinding(
			key.WithKeys("z", "Z"),
			key.WithHelp("z/Z", "roll"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "zoom out"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc", "lessons"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
