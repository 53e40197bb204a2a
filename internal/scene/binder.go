package scene

import (
	"math"

	"github.com/san-kum/pointerquest/internal/lessons"
	"github.com/san-kum/pointerquest/internal/metrics"
)

// Binder applies metric records to a graph built from the same layout and
// publishes them for display.
type Binder struct {
	lesson   *lessons.Lesson
	layout   lessons.Layout
	mapped   map[string]bool
	scenario string
}

// NewBinder binds the layout the lesson declares for scenario.
func NewBinder(l *lessons.Lesson, scenario string) *Binder {
	layout := l.LayoutFor(scenario)
	mapped := make(map[string]bool, len(layout.Bindings))
	for _, b := range layout.Bindings {
		mapped[b.Metric] = true
	}
	return &Binder{lesson: l, layout: layout, mapped: mapped, scenario: scenario}
}

func (b *Binder) Layout() lessons.Layout { return b.layout }

// Build creates a fresh graph for the binder's layout.
func (b *Binder) Build() *Graph { return Build(b.layout) }

// Mapped reports whether metric id drives any node property.
func (b *Binder) Mapped(id string) bool { return b.mapped[id] }

// Apply advances per-frame spin, writes every bound metric onto g and then
// sets pulse progress from rec.Time. A nil graph is left alone. Metrics
// missing from rec leave their nodes untouched.
func (b *Binder) Apply(rec metrics.Record, g *Graph) *Graph {
	if g == nil || g.Root == nil {
		return g
	}

	g.Walk(func(n *Node, _ func(Vec3) Vec3) {
		if n.Spin != 0 {
			n.Rotation.Y = wrap(n.Rotation.Y + n.Spin)
		}
	})

	for _, bind := range b.layout.Bindings {
		n := g.Find(bind.Node)
		if n == nil {
			continue
		}
		v, ok := rec.Get(bind.Metric)
		if !ok {
			continue
		}
		x := v.Normalized()

		switch bind.Channel {
		case lessons.ChannelSpin:
			n.Rotation.Y = wrap(n.Rotation.Y + bind.Gain*x)
		case lessons.ChannelScale:
			s := math.Max(bind.Offset+bind.Gain*x, MinScale)
			n.Scale = Vec3{s, s, s}
		case lessons.ChannelOpacity:
			n.Opacity = clamp01(bind.Offset + bind.Gain*x)
		case lessons.ChannelHeight:
			n.Position.Y = n.base.Y + bind.Offset + bind.Gain*x
		case lessons.ChannelVisible:
			n.Visible = x > 0.5
		case lessons.ChannelReplicas:
			k := int(math.Round(v.Float()))
			k = min(max(k, 0), len(n.Children))
			for i, c := range n.Children {
				c.Visible = i < k
			}
		case lessons.ChannelPulse:
			rate := math.Max(bind.Offset+bind.Gain*x, 0)
			n.Pulse = rate
			for _, c := range n.Children {
				c.Pulse = rate
			}
		}
	}

	g.Walk(func(n *Node, _ func(Vec3) Vec3) {
		n.Progress, n.Thickness = PulseAt(n.Pulse, rec.Time)
	})
	return g
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(math.Max(v, 0), 1)
}

// wrap keeps accumulated rotation within (-2π, 2π) so long sessions do not
// lose precision.
func wrap(a float64) float64 {
	return math.Mod(a, 2*math.Pi)
}
