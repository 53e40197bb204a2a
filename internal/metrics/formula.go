package metrics

import (
	"math"

	"github.com/san-kum/pointerquest/internal/lessons"
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func wave(w lessons.Wave, x float64) float64 {
	if w == lessons.Cos {
		return math.Cos(x)
	}
	return math.Sin(x)
}

// Signal evaluates the raw formula at t without clamping.
func Signal(f lessons.Formula, t float64) float64 {
	v := f.Base
	for _, term := range f.Terms {
		v += term.Amp * wave(term.Wave, term.Freq*t+term.Phase)
	}
	return v
}

// Eval computes one metric at t. Numeric kinds are clamped to the declared
// domain and counts are rounded to whole numbers. Flags are true while the
// signal is positive. A non-finite signal collapses to the domain minimum.
func Eval(def lessons.MetricDef, t float64) Value {
	v := Value{ID: def.ID, Kind: def.Kind, Min: def.Min, Max: def.Max}
	sig := Signal(def.Formula, t)
	if math.IsNaN(sig) || math.IsInf(sig, 0) {
		v.Number = def.Min
		return v
	}

	switch def.Kind {
	case lessons.KindFlag:
		v.Flag = sig > 0
		if v.Flag {
			v.Number = 1
		}
	case lessons.KindCount:
		v.Number = clamp(math.Round(clamp(sig, def.Min, def.Max)), math.Ceil(def.Min), math.Floor(def.Max))
	default:
		v.Number = clamp(sig, def.Min, def.Max)
	}
	return v
}
