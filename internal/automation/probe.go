package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/pointerquest/internal/lessons"
	"github.com/san-kum/pointerquest/internal/metrics"
	"github.com/san-kum/pointerquest/internal/scene"
)

// ProbeConfig drives a randomized check of a lesson's formulas: every
// scenario is evaluated at Trials random times in [0, MaxTime).
type ProbeConfig struct {
	Trials  int
	MaxTime float64
	Seed    int64
}

// ProbeResult counts what went wrong for one scenario.
type ProbeResult struct {
	Lesson     string
	Scenario   string
	Trials     int
	Violations []string
}

func (r ProbeResult) OK() bool { return len(r.Violations) == 0 }

// Probe evaluates every scenario of l at random times and checks that each
// value stays inside its declared domain and that the bound scene stays
// renderable.
func Probe(ctx context.Context, l *lessons.Lesson, cfg ProbeConfig) ([]ProbeResult, error) {
	if cfg.Trials <= 0 || cfg.MaxTime <= 0 {
		return nil, fmt.Errorf("probe needs positive trials and max time")
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	gen := metrics.NewGenerator(l)

	out := make([]ProbeResult, 0, len(l.Scenarios))
	for _, id := range l.ScenarioIDs() {
		res := ProbeResult{Lesson: l.ID, Scenario: id, Trials: cfg.Trials}
		binder := scene.NewBinder(l, id)
		graph := binder.Build()
		for trial := 0; trial < cfg.Trials; trial++ {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			t := rng.Float64() * cfg.MaxTime
			rec := gen.Generate(id, t)
			for _, v := range rec.Values {
				if bad := outOfDomain(v); bad != "" {
					res.Violations = append(res.Violations, fmt.Sprintf("t=%.3f %s: %s", t, v.ID, bad))
				}
			}
			binder.Apply(rec, graph)
			if err := graph.Valid(); err != nil {
				res.Violations = append(res.Violations, fmt.Sprintf("t=%.3f: %v", t, err))
			}
		}
		out = append(out, res)
	}
	return out, nil
}

func outOfDomain(v metrics.Value) string {
	switch {
	case math.IsNaN(v.Number) || math.IsInf(v.Number, 0):
		return "not finite"
	case v.Number < v.Min || v.Number > v.Max:
		return fmt.Sprintf("%g outside [%g, %g]", v.Number, v.Min, v.Max)
	case v.Kind == lessons.KindCount && v.Number != math.Round(v.Number):
		return fmt.Sprintf("count %g is fractional", v.Number)
	case v.Kind == lessons.KindFlag && v.Flag != (v.Number == 1):
		return "flag and number disagree"
	}
	return ""
}

// Summarize returns how many results passed and failed.
func Summarize(results []ProbeResult) (passed, failed int) {
	for _, r := range results {
		if r.OK() {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}
