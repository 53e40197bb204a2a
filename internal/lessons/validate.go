package lessons

import (
	"fmt"
	"math"
)

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func invalid(lesson, format string, args ...any) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidLesson, lesson, fmt.Sprintf(format, args...))
}

// Validate checks the structural rules the generator and binder rely on.
func (l *Lesson) Validate() error {
	if l == nil {
		return fmt.Errorf("%w: nil lesson", ErrInvalidLesson)
	}
	if l.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidLesson)
	}
	if len(l.Scenarios) == 0 {
		return invalid(l.ID, "no scenarios")
	}

	seen := make(map[string]bool)
	for i := range l.Scenarios {
		sc := &l.Scenarios[i]
		if sc.ID == "" {
			return invalid(l.ID, "scenario %d has empty id", i)
		}
		if seen[sc.ID] {
			return invalid(l.ID, "duplicate scenario %q", sc.ID)
		}
		seen[sc.ID] = true
		if err := validateMetrics(l.ID, sc); err != nil {
			return err
		}
		if sc.Layout != nil {
			if err := validateLayout(l.ID, *sc.Layout, sc); err != nil {
				return err
			}
		}
	}

	for i := range l.Scenarios {
		if l.Scenarios[i].Layout != nil {
			continue
		}
		if err := validateLayout(l.ID, l.Layout, &l.Scenarios[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateMetrics(lesson string, sc *Scenario) error {
	ids := make(map[string]bool)
	for _, m := range sc.Metrics {
		if m.ID == "" {
			return invalid(lesson, "scenario %q has a metric with empty id", sc.ID)
		}
		if ids[m.ID] {
			return invalid(lesson, "scenario %q: duplicate metric %q", sc.ID, m.ID)
		}
		ids[m.ID] = true

		if !finite(m.Min, m.Max, m.Formula.Base) {
			return invalid(lesson, "metric %q: non-finite bounds", m.ID)
		}
		for _, t := range m.Formula.Terms {
			if !finite(t.Amp, t.Freq, t.Phase) {
				return invalid(lesson, "metric %q: non-finite term", m.ID)
			}
			if t.Wave != Sin && t.Wave != Cos {
				return invalid(lesson, "metric %q: unknown wave %q", m.ID, t.Wave)
			}
		}
		if m.Min > m.Max {
			return invalid(lesson, "metric %q: min %g > max %g", m.ID, m.Min, m.Max)
		}

		switch m.Kind {
		case KindPercent:
			if m.Min < 0 || m.Max > 100 {
				return invalid(lesson, "metric %q: percent domain [%g,%g] outside [0,100]", m.ID, m.Min, m.Max)
			}
		case KindCount:
			if m.Min < 0 {
				return invalid(lesson, "metric %q: count minimum %g < 0", m.ID, m.Min)
			}
		case KindScalar, KindFlag:
		default:
			return invalid(lesson, "metric %q: unknown kind %q", m.ID, m.Kind)
		}
	}
	return nil
}

func validateLayout(lesson string, layout Layout, sc *Scenario) error {
	names := make(map[string]bool)
	for _, n := range layout.Nodes {
		if n.Name == "" {
			return invalid(lesson, "layout node with empty name")
		}
		if names[n.Name] {
			return invalid(lesson, "duplicate node %q", n.Name)
		}
		if n.Parent != "" && !names[n.Parent] {
			return invalid(lesson, "node %q: parent %q must be declared before it", n.Name, n.Parent)
		}
		if n.Replicas < 0 {
			return invalid(lesson, "node %q: negative replicas", n.Name)
		}
		if !finite(n.Size, n.Radius, n.Spin, n.Pulse, n.Position[0], n.Position[1], n.Position[2]) {
			return invalid(lesson, "node %q: non-finite geometry", n.Name)
		}
		if n.Pulse < 0 {
			return invalid(lesson, "node %q: negative pulse rate %g", n.Name, n.Pulse)
		}
		if !n.Memory.Valid() {
			return invalid(lesson, "node %q: unknown memory region %q", n.Name, n.Memory)
		}
		if shape, _ := n.Style(); shape == "" {
			return invalid(lesson, "node %q: no shape", n.Name)
		}
		names[n.Name] = true
	}

	for _, b := range layout.Bindings {
		if !names[b.Node] {
			return invalid(lesson, "binding %s->%s: unknown node", b.Metric, b.Node)
		}
		if _, ok := sc.Metric(b.Metric); !ok {
			return invalid(lesson, "scenario %q: binding names unknown metric %q", sc.ID, b.Metric)
		}
		if !finite(b.Gain, b.Offset) {
			return invalid(lesson, "binding %s->%s: non-finite gain", b.Metric, b.Node)
		}
		switch b.Channel {
		case ChannelSpin, ChannelScale, ChannelOpacity, ChannelHeight, ChannelVisible, ChannelPulse:
		case ChannelReplicas:
			if n, _ := layout.Node(b.Node); n.Replicas == 0 {
				return invalid(lesson, "binding %s->%s: replicas channel on node without replicas", b.Metric, b.Node)
			}
		default:
			return invalid(lesson, "binding %s->%s: unknown channel %q", b.Metric, b.Node, b.Channel)
		}
	}
	return nil
}
