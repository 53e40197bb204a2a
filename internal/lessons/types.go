package lessons

// Language selects which half of a bilingual [Text] is displayed.
type Language string

const (
	English Language = "en"
	Spanish Language = "es"
)

// Languages lists the supported display languages in cycling order.
var Languages = []Language{English, Spanish}

// ParseLanguage returns the language for s, or false if unsupported.
func ParseLanguage(s string) (Language, bool) {
	for _, l := range Languages {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

// Next returns the language after l in [Languages].
func (l Language) Next() Language {
	for i, c := range Languages {
		if c == l {
			return Languages[(i+1)%len(Languages)]
		}
	}
	return English
}

// Text is a bilingual label.
type Text struct {
	En string `yaml:"en" json:"en"`
	Es string `yaml:"es" json:"es"`
}

// In returns the text for lang, falling back to English.
func (t Text) In(lang Language) string {
	if lang == Spanish && t.Es != "" {
		return t.Es
	}
	return t.En
}

// T builds a Text.
func T(en, es string) Text { return Text{En: en, Es: es} }

type Kind string

const (
	KindCount   Kind = "count"
	KindPercent Kind = "percent"
	KindScalar  Kind = "scalar"
	KindFlag    Kind = "flag"
)

type Wave string

const (
	Sin Wave = "sin"
	Cos Wave = "cos"
)

// Term is one harmonic: Amp * wave(Freq*t + Phase).
type Term struct {
	Wave  Wave    `yaml:"wave" json:"wave"`
	Amp   float64 `yaml:"amp" json:"amp"`
	Freq  float64 `yaml:"freq" json:"freq"`
	Phase float64 `yaml:"phase" json:"phase"`
}

// Formula is Base plus a sum of harmonics.
type Formula struct {
	Base  float64 `yaml:"base" json:"base"`
	Terms []Term  `yaml:"terms" json:"terms"`
}

// MetricDef declares one metric of a scenario and the domain its values
// are clamped to.
type MetricDef struct {
	ID      string  `yaml:"id" json:"id"`
	Label   Text    `yaml:"label" json:"label"`
	Unit    string  `yaml:"unit" json:"unit"`
	Kind    Kind    `yaml:"kind" json:"kind"`
	Min     float64 `yaml:"min" json:"min"`
	Max     float64 `yaml:"max" json:"max"`
	Formula Formula `yaml:"formula" json:"formula"`
}

type Scenario struct {
	ID      string      `yaml:"id" json:"id"`
	Label   Text        `yaml:"label" json:"label"`
	Metrics []MetricDef `yaml:"metrics" json:"metrics"`
	Layout  *Layout     `yaml:"layout,omitempty" json:"layout,omitempty"`
}

// Metric returns the definition of id within the scenario.
func (s *Scenario) Metric(id string) (MetricDef, bool) {
	for _, m := range s.Metrics {
		if m.ID == id {
			return m, true
		}
	}
	return MetricDef{}, false
}

type Shape string

const (
	ShapeCube   Shape = "cube"
	ShapeSphere Shape = "sphere"
	ShapeRing   Shape = "ring"
	ShapeArrow  Shape = "arrow"
	ShapeGroup  Shape = "group"
)

type Channel string

const (
	ChannelSpin     Channel = "spin"
	ChannelScale    Channel = "scale"
	ChannelOpacity  Channel = "opacity"
	ChannelHeight   Channel = "height"
	ChannelVisible  Channel = "visible"
	ChannelReplicas Channel = "replicas"
	// ChannelPulse sets the pulse rate of a node and its replicas.
	ChannelPulse Channel = "pulse"
)

// MemoryKind tags a block with the region it lives in. A tagged node that
// leaves Shape or Color empty takes the region's.
type MemoryKind string

const (
	MemoryStack  MemoryKind = "stack"
	MemoryHeap   MemoryKind = "heap"
	MemoryGlobal MemoryKind = "global"
)

var memoryStyles = map[MemoryKind]struct {
	shape Shape
	color string
}{
	MemoryStack:  {ShapeCube, "#4fc3f7"},
	MemoryHeap:   {ShapeSphere, "#ffb74d"},
	MemoryGlobal: {ShapeRing, "#ba68c8"},
}

func (k MemoryKind) Valid() bool {
	_, ok := memoryStyles[k]
	return k == "" || ok
}

func (k MemoryKind) Shape() Shape  { return memoryStyles[k].shape }
func (k MemoryKind) Color() string { return memoryStyles[k].color }

// NodeSpec describes one object of a layout. A node with Replicas > 0 is a
// group whose children are Replicas copies of Shape placed on a circle of
// Radius around the group origin. Pulse is in cycles per lesson second;
// zero leaves the node still.
type NodeSpec struct {
	Name     string     `yaml:"name" json:"name"`
	Parent   string     `yaml:"parent,omitempty" json:"parent,omitempty"`
	Shape    Shape      `yaml:"shape" json:"shape"`
	Color    string     `yaml:"color" json:"color"`
	Position [3]float64 `yaml:"position" json:"position"`
	Size     float64    `yaml:"size" json:"size"`
	Replicas int        `yaml:"replicas,omitempty" json:"replicas,omitempty"`
	Radius   float64    `yaml:"radius,omitempty" json:"radius,omitempty"`
	Spin     float64    `yaml:"spin,omitempty" json:"spin,omitempty"`
	Memory   MemoryKind `yaml:"memory,omitempty" json:"memory,omitempty"`
	Pulse    float64    `yaml:"pulse,omitempty" json:"pulse,omitempty"`
}

// Style returns the shape and color the node is drawn with, filling blanks
// from its memory region.
func (n NodeSpec) Style() (Shape, string) {
	shape, color := n.Shape, n.Color
	if shape == "" {
		shape = n.Memory.Shape()
	}
	if color == "" {
		color = n.Memory.Color()
	}
	return shape, color
}

// Binding maps a metric onto a node property.
type Binding struct {
	Metric  string  `yaml:"metric" json:"metric"`
	Node    string  `yaml:"node" json:"node"`
	Channel Channel `yaml:"channel" json:"channel"`
	Gain    float64 `yaml:"gain" json:"gain"`
	Offset  float64 `yaml:"offset" json:"offset"`
}

type Layout struct {
	Nodes    []NodeSpec `yaml:"nodes" json:"nodes"`
	Bindings []Binding  `yaml:"bindings" json:"bindings"`
}

// Node returns the node declaration named name.
func (l Layout) Node(name string) (NodeSpec, bool) {
	for _, n := range l.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return NodeSpec{}, false
}

type Lesson struct {
	ID        string     `yaml:"id" json:"id"`
	Title     Text       `yaml:"title" json:"title"`
	Summary   Text       `yaml:"summary" json:"summary"`
	Scenarios []Scenario `yaml:"scenarios" json:"scenarios"`
	Layout    Layout     `yaml:"layout" json:"layout"`
}

// Scenario looks up a scenario by ID.
func (l *Lesson) Scenario(id string) (*Scenario, bool) {
	for i := range l.Scenarios {
		if l.Scenarios[i].ID == id {
			return &l.Scenarios[i], true
		}
	}
	return nil, false
}

func (l *Lesson) ScenarioIDs() []string {
	ids := make([]string, len(l.Scenarios))
	for i, s := range l.Scenarios {
		ids[i] = s.ID
	}
	return ids
}

// LayoutFor returns the scenario's own layout when it has one, otherwise
// the lesson layout.
func (l *Lesson) LayoutFor(scenario string) Layout {
	if s, ok := l.Scenario(scenario); ok && s.Layout != nil {
		return *s.Layout
	}
	return l.Layout
}

// MetricIDs returns every metric ID declared by any scenario, in first-seen
// order.
func (l *Lesson) MetricIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, s := range l.Scenarios {
		for _, m := range s.Metrics {
			if !seen[m.ID] {
				seen[m.ID] = true
				ids = append(ids, m.ID)
			}
		}
	}
	return ids
}

// MetricLabel finds the first label declared for a metric ID.
func (l *Lesson) MetricLabel(id string) (MetricDef, bool) {
	for i := range l.Scenarios {
		if m, ok := l.Scenarios[i].Metric(id); ok {
			return m, true
		}
	}
	return MetricDef{}, false
}
