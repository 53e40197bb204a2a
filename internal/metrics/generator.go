package metrics

import (
	"math"

	"github.com/san-kum/pointerquest/internal/lessons"
)

// Generator evaluates the formula table of one lesson. It keeps no state
// between calls: the same (scenario, t) always yields the same record.
type Generator struct {
	lesson *lessons.Lesson
}

func NewGenerator(l *lessons.Lesson) *Generator {
	return &Generator{lesson: l}
}

func (g *Generator) Lesson() *lessons.Lesson { return g.lesson }

// Generate computes the metric record of scenario at elapsed time t.
// Negative t is treated as 0. An unknown scenario yields [Generator.Baseline].
func (g *Generator) Generate(scenario string, t float64) Record {
	if t < 0 || math.IsNaN(t) {
		t = 0
	}
	sc, ok := g.lesson.Scenario(scenario)
	if !ok {
		return g.Baseline(scenario, t)
	}
	rec := Record{
		Lesson:   g.lesson.ID,
		Scenario: sc.ID,
		Time:     t,
		Values:   make([]Value, len(sc.Metrics)),
	}
	for i, def := range sc.Metrics {
		rec.Values[i] = Eval(def, t)
	}
	return rec
}

// Baseline returns the inert record used when the scenario is not part of
// the lesson: every metric the lesson declares, at its lowest non-negative
// value, with flags cleared.
func (g *Generator) Baseline(scenario string, t float64) Record {
	ids := g.lesson.MetricIDs()
	rec := Record{
		Lesson:   g.lesson.ID,
		Scenario: scenario,
		Time:     t,
		Values:   make([]Value, 0, len(ids)),
		Baseline: true,
	}
	for _, id := range ids {
		def, _ := g.lesson.MetricLabel(id)
		rec.Values = append(rec.Values, Value{
			ID:     id,
			Kind:   def.Kind,
			Number: zeroed(def),
			Min:    def.Min,
			Max:    def.Max,
		})
	}
	return rec
}

func zeroed(def lessons.MetricDef) float64 {
	if def.Kind == lessons.KindFlag {
		return 0
	}
	if def.Min > 0 {
		return def.Min
	}
	return clamp(0, def.Min, def.Max)
}
