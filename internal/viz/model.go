package viz

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/pointerquest/internal/engine"
	"github.com/san-kum/pointerquest/internal/lessons"
	"github.com/san-kum/pointerquest/internal/progress"
	"github.com/san-kum/pointerquest/internal/scene"
)

const (
	defaultFPS      = 60
	historyCapacity = 240
	panelWidth      = 50
	speedStep       = 1.25
)

// TickMsg drives one frame. Gen ties it to the model whose loop armed it,
// so a tick still in flight when a lesson is replaced is dropped.
type TickMsg struct {
	Time time.Time
	Gen  uint64
}

var generations atomic.Uint64

// SessionRecorder is told when a lesson view opens and closes.
type SessionRecorder interface {
	Begin(ctx context.Context, lesson, scenario, host string) (string, error)
	Finish(ctx context.Context, id string, sum progress.Summary) error
}

type Options struct {
	FPS       int
	Theme     string
	AutoStart bool
	Host      string
	Recorder  SessionRecorder
	Logger    *log.Logger
}

// Model is the Bubble Tea view of one mounted lesson.
type Model struct {
	inst    *engine.Instance
	keys    KeyMap
	help    help.Model
	canvas  *Canvas
	camera  *Camera
	theme   Theme
	styles  styles
	fps     int
	gen     uint64
	last    time.Time
	graph   int
	history map[string][]float64

	showHelp bool
	quitting bool
	back     bool

	recorder  SessionRecorder
	sessionID string
	switches  int
	logger    *log.Logger
}

// NewModel wraps inst. The recorder, if any, is told about the session
// immediately.
func NewModel(inst *engine.Instance, opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = defaultFPS
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Host == "" {
		opts.Host = "tui"
	}
	theme := GetTheme(opts.Theme)
	m := Model{
		inst:     inst,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		canvas:   NewCanvas(56, 22),
		camera:   NewCamera(),
		theme:    theme,
		styles:   newStyles(theme),
		fps:      opts.FPS,
		gen:      generations.Add(1),
		history:  make(map[string][]float64),
		recorder: opts.Recorder,
		logger:   opts.Logger,
	}
	if m.recorder != nil {
		id, err := m.recorder.Begin(context.Background(), inst.Lesson().ID, inst.Scenario(), opts.Host)
		if err != nil {
			m.logger.Warn("could not record session", "lesson", inst.Lesson().ID, "error", err)
		}
		m.sessionID = id
	}
	if opts.AutoStart {
		inst.Start()
	}
	return m
}

func (m Model) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg{Time: t, Gen: gen} })
}

func (m Model) Init() tea.Cmd { return m.tick() }

// Instance exposes the mounted lesson.
func (m Model) Instance() *engine.Instance { return m.inst }

// BackToMenu reports whether the user asked to leave this lesson.
func (m Model) BackToMenu() bool { return m.back }

func (m Model) Quitting() bool { return m.quitting }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case TickMsg:
		if m.quitting || m.back || msg.Gen != m.gen {
			return m, nil
		}
		now := msg.Time
		var delta time.Duration
		if !m.last.IsZero() {
			delta = now.Sub(m.last)
		}
		m.last = now
		st := m.inst.Frame(delta)
		if st.Running {
			m.record(st)
		}
		return m, m.tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) resize(w, h int) {
	cw := max(w-panelWidth-6, 20)
	ch := max(h-4, 8)
	m.canvas.Resize(cw, ch)
	m.help.Width = w
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		m.finish()
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, k.Back):
		m.finish()
		m.back = true
	case key.Matches(msg, k.Toggle):
		m.inst.Toggle()
	case key.Matches(msg, k.Next):
		m.switchTo(func() { m.inst.CycleScenario(1) })
	case key.Matches(msg, k.Prev):
		m.switchTo(func() { m.inst.CycleScenario(-1) })
	case key.Matches(msg, k.Direct):
		ids := m.inst.Lesson().ScenarioIDs()
		if i := int(msg.String()[0] - '1'); i < len(ids) {
			m.switchTo(func() { _ = m.inst.SelectScenario(ids[i]) })
		}
	case key.Matches(msg, k.Language):
		_ = m.inst.SetLanguage(m.inst.Language().Next())
	case key.Matches(msg, k.Faster):
		m.inst.SetSpeed(m.inst.Speed() * speedStep)
	case key.Matches(msg, k.Slower):
		m.inst.SetSpeed(m.inst.Speed() / speedStep)
	case key.Matches(msg, k.Reset):
		m.inst.Reset()
		m.history = make(map[string][]float64)
	case key.Matches(msg, k.MetricUp):
		m.graph++
	case key.Matches(msg, k.MetricDn):
		m.graph--
	case key.Matches(msg, k.RotX):
		m.camera.RotateX(rotStep(msg))
	case key.Matches(msg, k.RotY):
		m.camera.RotateY(rotStep(msg))
	case key.Matches(msg, k.RotZ):
		m.camera.RotateZ(rotStep(msg))
	case key.Matches(msg, k.ZoomIn):
		m.camera.ZoomIn()
	case key.Matches(msg, k.ZoomOut):
		m.camera.ZoomOut()
	case key.Matches(msg, k.Theme):
		m.theme = NextTheme(m.theme.Name)
		m.styles = newStyles(m.theme)
	case key.Matches(msg, k.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	}
	return m, nil
}

// rotStep turns lower-case keys one way and upper-case the other.
func rotStep(msg tea.KeyMsg) float64 {
	if s := msg.String(); s != strings.ToLower(s) {
		return -0.1
	}
	return 0.1
}

func (m *Model) switchTo(fn func()) {
	before := m.inst.Scenario()
	fn()
	if m.inst.Scenario() != before {
		m.switches++
		m.history = make(map[string][]float64)
	}
}

func (m *Model) record(st scene.UIState) {
	for _, r := range st.Readings {
		h := append(m.history[r.ID], r.Value)
		if len(h) > historyCapacity {
			h = h[len(h)-historyCapacity:]
		}
		m.history[r.ID] = h
	}
}

// Close reports the session as finished if it is still open. Hosts call it
// when the program ends without a quit key, e.g. a dropped connection.
func (m *Model) Close() { m.finish() }

// finish reports the session once.
func (m *Model) finish() {
	if m.recorder == nil || m.sessionID == "" {
		return
	}
	sum := progress.Summary{
		Scenario: m.inst.Scenario(),
		Frames:   m.inst.Frames(),
		Elapsed:  m.inst.Elapsed(),
		Switches: m.switches,
	}
	if err := m.recorder.Finish(context.Background(), m.sessionID, sum); err != nil {
		m.logger.Warn("could not finish session", "id", m.sessionID, "error", err)
	}
	m.sessionID = ""
}

// graphed returns the numeric reading selected for the sparkline.
func (m Model) graphed(st scene.UIState) (scene.Reading, bool) {
	var numeric []scene.Reading
	for _, r := range st.Readings {
		if r.Kind != lessons.KindFlag {
			numeric = append(numeric, r)
		}
	}
	if len(numeric) == 0 {
		return scene.Reading{}, false
	}
	n := len(numeric)
	return numeric[((m.graph%n)+n)%n], true
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	st := m.inst.Snapshot()
	lang := st.Language
	s := m.styles

	m.canvas.Clear()
	Render3D(m.canvas, SceneWireframe(m.inst.Graph()), m.camera)
	canvasView := s.canvas.Render(m.canvas.String())

	var b strings.Builder
	b.WriteString(s.title.Render(strings.ToUpper(st.LessonTitle)) + "\n")
	b.WriteString(s.sub.Render(m.inst.Lesson().Summary.In(lang)) + "\n\n")

	ids := m.inst.Lesson().ScenarioIDs()
	for i, id := range ids {
		label := id
		if sc, ok := m.inst.Lesson().Scenario(id); ok {
			label = sc.Label.In(lang)
		}
		line := fmt.Sprintf("%d %s", i+1, label)
		if id == st.Scenario {
			b.WriteString(s.mapped.Render("▸ "+line) + "\n")
		} else {
			b.WriteString(s.muted.Render("  "+line) + "\n")
		}
	}
	b.WriteString("\n")

	if st.Running {
		b.WriteString(s.running.Render(lessons.T("● RUNNING", "● EN MARCHA").In(lang)))
	} else {
		b.WriteString(s.paused.Render(lessons.T("❚❚ PAUSED", "❚❚ EN PAUSA").In(lang)))
	}
	b.WriteString(s.muted.Render(fmt.Sprintf("  t=%.2fs  %.2fx  %s", st.Elapsed, st.Speed, strings.ToUpper(string(lang)))) + "\n\n")

	sel, hasGraph := m.graphed(st)
	for _, r := range st.Readings {
		label := s.label.Render(r.Label)
		value := s.value.Render(r.Display)
		if r.Mapped {
			value = s.mapped.Render(r.Display)
		}
		marker := "  "
		if hasGraph && r.ID == sel.ID {
			marker = s.mapped.Render("› ")
		}
		b.WriteString(marker + label + value + "\n")
	}

	if hist := m.history[sel.ID]; hasGraph && len(hist) > 1 {
		chart := asciigraph.Plot(hist, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption(sel.Label))
		b.WriteString(s.graph.Render(chart) + "\n")
	}

	b.WriteString("\n" + s.muted.Render(Separator(panelWidth-6)) + "\n")
	b.WriteString(m.help.View(m.keys))

	panel := s.panel.Render(b.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panel)
}
