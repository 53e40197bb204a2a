package metrics

import "github.com/san-kum/pointerquest/internal/lessons"

// Value is one metric sample within a [Record].
type Value struct {
	ID     string
	Kind   lessons.Kind
	Number float64
	Flag   bool
	Min    float64
	Max    float64
}

// Normalized maps the value onto [0,1] within its domain. Flags map to 0 or
// 1; a degenerate domain maps to 0.
func (v Value) Normalized() float64 {
	if v.Kind == lessons.KindFlag {
		if v.Flag {
			return 1
		}
		return 0
	}
	span := v.Max - v.Min
	if span <= 0 {
		return 0
	}
	return clamp((v.Number-v.Min)/span, 0, 1)
}

// Float returns the numeric view of v, with flags as 0/1.
func (v Value) Float() float64 {
	if v.Kind == lessons.KindFlag {
		if v.Flag {
			return 1
		}
		return 0
	}
	return v.Number
}

// Record is the metric snapshot for one (scenario, time) pair. It carries
// no identity; a new one is produced every frame.
type Record struct {
	Lesson   string
	Scenario string
	Time     float64
	Values   []Value
	// Baseline marks the zeroed record returned for an unknown scenario.
	Baseline bool
}

func (r Record) Get(id string) (Value, bool) {
	for _, v := range r.Values {
		if v.ID == id {
			return v, true
		}
	}
	return Value{}, false
}

func (r Record) Number(id string) float64 {
	v, _ := r.Get(id)
	return v.Number
}

func (r Record) Flag(id string) bool {
	v, _ := r.Get(id)
	return v.Flag
}

// Map flattens the record into name -> float64|bool.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.Values))
	for _, v := range r.Values {
		if v.Kind == lessons.KindFlag {
			m[v.ID] = v.Flag
		} else {
			m[v.ID] = v.Number
		}
	}
	return m
}
