package engine

import (
	"fmt"
	"time"

	"github.com/san-kum/pointerquest/internal/clock"
	"github.com/san-kum/pointerquest/internal/lessons"
	"github.com/san-kum/pointerquest/internal/metrics"
	"github.com/san-kum/pointerquest/internal/scene"
)

// State is the animation state of an instance.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Observer receives every state an instance publishes.
type Observer interface {
	OnFrame(st scene.UIState)
}

// ObserverFunc adapts a function to [Observer].
type ObserverFunc func(scene.UIState)

func (f ObserverFunc) OnFrame(st scene.UIState) { f(st) }

type Options struct {
	// Scenario to mount; empty selects the lesson's first scenario.
	Scenario string
	// Language for published labels; empty selects English.
	Language lessons.Language
	// Speed multiplier; zero means 1.
	Speed float64
	// MaxStep caps the wall time a single frame may advance.
	MaxStep time.Duration
	// ValidateGraph checks the graph after every applied frame and records
	// the first failure, see [Instance.Err].
	ValidateGraph bool
}

// Instance is one mounted lesson.
type Instance struct {
	lesson   *lessons.Lesson
	gen      *metrics.Generator
	binder   *scene.Binder
	clock    *clock.Clock
	graph    *scene.Graph
	lang     lessons.Language
	scenario string
	frame    uint64
	rec      metrics.Record
	state    scene.UIState

	observers []Observer
	validate  bool
	err       error
}

// New mounts l in the Idle state with the record for t=0 applied and
// published.
func New(l *lessons.Lesson, opts Options) (*Instance, error) {
	if l == nil || len(l.Scenarios) == 0 {
		return nil, fmt.Errorf("%w: no lesson to mount", ErrUnknownLesson)
	}

	scenario := opts.Scenario
	if scenario == "" {
		scenario = l.Scenarios[0].ID
	}
	if _, ok := l.Scenario(scenario); !ok {
		return nil, fmt.Errorf("%w: %s has no scenario %q", ErrUnknownScenario, l.ID, scenario)
	}

	lang := opts.Language
	if lang == "" {
		lang = lessons.English
	}
	if _, ok := lessons.ParseLanguage(string(lang)); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
	}

	copts := []clock.Option{clock.WithMaxStep(opts.MaxStep)}
	if opts.Speed != 0 {
		copts = append(copts, clock.WithSpeed(opts.Speed))
	}

	inst := &Instance{
		lesson:   l,
		gen:      metrics.NewGenerator(l),
		clock:    clock.New(copts...),
		lang:     lang,
		validate: opts.ValidateGraph,
	}
	inst.mount(scenario)
	return inst, nil
}

// AddObserver registers o for every subsequently published state.
func (i *Instance) AddObserver(o Observer) { i.observers = append(i.observers, o) }

// mount rebuilds binder and graph for scenario and refreshes the scene at the
// current elapsed time.
func (i *Instance) mount(scenario string) {
	i.scenario = scenario
	i.binder = scene.NewBinder(i.lesson, scenario)
	i.graph = i.binder.Build()
	i.refresh()
}

func (i *Instance) refresh() {
	i.rec = i.gen.Generate(i.scenario, i.clock.Elapsed())
	i.apply()
	i.publish()
}

func (i *Instance) apply() {
	i.binder.Apply(i.rec, i.graph)
	if i.validate && i.err == nil {
		if err := i.graph.Valid(); err != nil {
			i.err = &FrameError{Frame: i.frame, Time: i.rec.Time, Scenario: i.scenario, Wrapped: err}
		}
	}
}

func (i *Instance) publish() scene.UIState {
	i.state = i.binder.Publish(i.rec, scene.Meta{
		Language: i.lang,
		Running:  i.clock.Running(),
		Speed:    i.clock.Speed(),
		Frame:    i.frame,
	})
	for _, o := range i.observers {
		o.OnFrame(i.state)
	}
	return i.state
}

// Frame advances the instance by one host frame of wall duration delta.
// While running it regenerates, applies and publishes; while idle the scene
// is left untouched and the held record is republished.
func (i *Instance) Frame(delta time.Duration) scene.UIState {
	if !i.clock.Running() {
		return i.publish()
	}
	t := i.clock.Tick(delta)
	i.rec = i.gen.Generate(i.scenario, t)
	i.apply()
	i.frame++
	return i.publish()
}

func (i *Instance) Start()  { i.clock.Start(); i.publish() }
func (i *Instance) Pause()  { i.clock.Pause(); i.publish() }
func (i *Instance) Toggle() { i.clock.Toggle(); i.publish() }

func (i *Instance) Running() bool { return i.clock.Running() }

func (i *Instance) State() State {
	if i.clock.Running() {
		return Running
	}
	return Idle
}

// Reset rewinds elapsed time and the frame counter and rebuilds the scene.
// The running state is kept.
func (i *Instance) Reset() {
	i.clock.Reset()
	i.frame = 0
	i.err = nil
	i.mount(i.scenario)
}

// SelectScenario switches to id and recomputes immediately at the current
// elapsed time. An unknown id leaves the instance unchanged.
func (i *Instance) SelectScenario(id string) error {
	if _, ok := i.lesson.Scenario(id); !ok {
		return fmt.Errorf("%w: %s has no scenario %q", ErrUnknownScenario, i.lesson.ID, id)
	}
	i.mount(id)
	return nil
}

// CycleScenario moves delta positions through the lesson's scenario list.
func (i *Instance) CycleScenario(delta int) {
	ids := i.lesson.ScenarioIDs()
	cur := 0
	for k, id := range ids {
		if id == i.scenario {
			cur = k
		}
	}
	n := len(ids)
	_ = i.SelectScenario(ids[((cur+delta)%n+n)%n])
}

func (i *Instance) SetLanguage(lang lessons.Language) error {
	if _, ok := lessons.ParseLanguage(string(lang)); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
	}
	i.lang = lang
	i.publish()
	return nil
}

// SetSpeed changes the time multiplier; see [clock.Clock.SetSpeed].
func (i *Instance) SetSpeed(f float64) {
	i.clock.SetSpeed(f)
	i.publish()
}

func (i *Instance) Speed() float64             { return i.clock.Speed() }
func (i *Instance) Elapsed() float64           { return i.clock.Elapsed() }
func (i *Instance) Language() lessons.Language { return i.lang }
func (i *Instance) Scenario() string           { return i.scenario }
func (i *Instance) Lesson() *lessons.Lesson    { return i.lesson }
func (i *Instance) Graph() *scene.Graph        { return i.graph }
func (i *Instance) Record() metrics.Record     { return i.rec }
func (i *Instance) Snapshot() scene.UIState    { return i.state }
func (i *Instance) Binder() *scene.Binder      { return i.binder }
func (i *Instance) Frames() uint64             { return i.frame }

// Err returns the first graph validation failure, if ValidateGraph is set.
func (i *Instance) Err() error { return i.err }
