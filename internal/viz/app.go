package viz

import (
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/pointerquest/internal/engine"
	"github.com/san-kum/pointerquest/internal/lessons"
)

// App is the lesson picker wrapped around a [Model]. Leaving a lesson
// returns to the picker with a fresh instance the next time it is chosen.
type App struct {
	lessons []*lessons.Lesson
	cursor  int
	lang    lessons.Language
	mount   engine.Options
	opts    Options

	// mu guards live against Close from a host goroutine.
	mu            sync.Mutex
	live          *Model
	width, height int
	quitting      bool
	err           error
}

// NewApp lists every lesson of r. If start names a lesson it is mounted
// right away.
func NewApp(r *lessons.Registry, mount engine.Options, opts Options, start string) (*App, error) {
	a := &App{lessons: r.List(), lang: mount.Language, mount: mount, opts: opts}
	if a.lang == "" {
		a.lang = lessons.English
	}
	if start == "" {
		return a, nil
	}
	for i, l := range a.lessons {
		if l.ID == start {
			a.cursor = i
			if err := a.open(); err != nil {
				return nil, err
			}
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", lessons.ErrUnknownLesson, start)
}

func (a *App) open() error {
	mount := a.mount
	mount.Language = a.lang
	l := a.lessons[a.cursor]
	if _, ok := l.Scenario(mount.Scenario); !ok {
		mount.Scenario = ""
	}
	inst, err := engine.New(l, mount)
	if err != nil {
		return err
	}
	m := NewModel(inst, a.opts)
	if a.width > 0 {
		m.resize(a.width, a.height)
	}
	a.live = &m
	return nil
}

// Err returns the error that ended the app, if any.
func (a *App) Err() error { return a.err }

func (a *App) Init() tea.Cmd {
	if a.live != nil {
		return a.live.Init()
	}
	return nil
}

// Close finishes the open lesson's session, if any. It is safe to call
// from another goroutine and more than once.
func (a *App) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.live != nil {
		a.live.Close()
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		a.width, a.height = ws.Width, ws.Height
	}
	if a.live != nil {
		next, cmd := a.live.Update(msg)
		m := next.(Model)
		a.live = &m
		switch {
		case m.Quitting():
			a.quitting = true
			return a, tea.Quit
		case m.BackToMenu():
			a.lang = m.Instance().Language()
			a.live = nil
			return a, nil
		}
		return a, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		a.quitting = true
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.lessons)-1 {
			a.cursor++
		}
	case "l":
		a.lang = a.lang.Next()
	case "enter", " ":
		if len(a.lessons) == 0 {
			return a, nil
		}
		if err := a.open(); err != nil {
			a.err = err
			return a, tea.Quit
		}
		return a, a.live.Init()
	}
	return a, nil
}

func (a *App) View() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.quitting {
		return ""
	}
	if a.live != nil {
		return a.live.View()
	}

	accent := lipgloss.NewStyle().Foreground(lipgloss.Color("#4fc3f7")).Bold(true)
	sub := lipgloss.NewStyle().Foreground(lipgloss.Color("#78909c"))
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("#455a64"))
	hot := lipgloss.NewStyle().Foreground(lipgloss.Color("#ffb74d"))

	var b strings.Builder
	b.WriteString("\n\n    " + accent.Render("POINTERQUEST") + "\n")
	b.WriteString("    " + sub.Render(lessons.T("memory management, animated", "gestión de memoria, animada").In(a.lang)) + "\n")
	b.WriteString("    " + dim.Render(strings.Repeat("─", 28)) + "\n\n")

	for i, l := range a.lessons {
		title := fmt.Sprintf("%-28s", l.Title.In(a.lang))
		n := fmt.Sprintf("%d %s", len(l.Scenarios), lessons.T("scenarios", "escenarios").In(a.lang))
		if i == a.cursor {
			b.WriteString("    " + accent.Render("▸ ") + lipgloss.NewStyle().Bold(true).Render(title) + " " + hot.Render(n) + "\n")
			b.WriteString("      " + sub.Render(l.Summary.In(a.lang)) + "\n")
		} else {
			b.WriteString("      " + dim.Render(title) + " " + dim.Render(n) + "\n")
		}
	}

	hint := lessons.T("j/k navigate  enter open  l language  q quit", "j/k navegar  enter abrir  l idioma  q salir").In(a.lang)
	b.WriteString("\n    " + sub.Render(hint) + "\n")
	return b.String()
}

// Run starts the app in the alternate screen and blocks until it exits.
func Run(a *App, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	_, err := tea.NewProgram(a, opts...).Run()
	a.Close()
	if err != nil {
		return err
	}
	return a.Err()
}
