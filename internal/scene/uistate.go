package scene

import (
	"fmt"

	"github.com/san-kum/pointerquest/internal/lessons"
	"github.com/san-kum/pointerquest/internal/metrics"
)

// Reading is one metric as shown next to the canvas.
type Reading struct {
	ID      string       `json:"id"`
	Label   string       `json:"label"`
	Unit    string       `json:"unit,omitempty"`
	Kind    lessons.Kind `json:"kind"`
	Value   float64      `json:"value"`
	Flag    bool         `json:"flag"`
	Mapped  bool         `json:"mapped"`
	Display string       `json:"display"`
}

// UIState is the snapshot a host renders after each frame.
type UIState struct {
	Lesson        string           `json:"lesson"`
	LessonTitle   string           `json:"lessonTitle"`
	Scenario      string           `json:"scenario"`
	ScenarioLabel string           `json:"scenarioLabel"`
	Language      lessons.Language `json:"language"`
	Running       bool             `json:"running"`
	Elapsed       float64          `json:"elapsed"`
	Speed         float64          `json:"speed"`
	Frame         uint64           `json:"frame"`
	Baseline      bool             `json:"baseline,omitempty"`
	Readings      []Reading        `json:"readings"`
}

// Reading returns the reading for id.
func (s UIState) Reading(id string) (Reading, bool) {
	for _, r := range s.Readings {
		if r.ID == id {
			return r, true
		}
	}
	return Reading{}, false
}

// Meta is the host-side context published alongside a record.
type Meta struct {
	Language lessons.Language
	Running  bool
	Speed    float64
	Frame    uint64
}

// Publish converts rec into display readings. Every value of rec appears,
// whether or not a binding maps it.
func (b *Binder) Publish(rec metrics.Record, meta Meta) UIState {
	st := UIState{
		Lesson:      b.lesson.ID,
		LessonTitle: b.lesson.Title.In(meta.Language),
		Scenario:    rec.Scenario,
		Language:    meta.Language,
		Running:     meta.Running,
		Elapsed:     rec.Time,
		Speed:       meta.Speed,
		Frame:       meta.Frame,
		Baseline:    rec.Baseline,
		Readings:    make([]Reading, 0, len(rec.Values)),
	}
	if sc, ok := b.lesson.Scenario(rec.Scenario); ok {
		st.ScenarioLabel = sc.Label.In(meta.Language)
	} else {
		st.ScenarioLabel = rec.Scenario
	}

	for _, v := range rec.Values {
		def, _ := b.lesson.MetricLabel(v.ID)
		label := def.Label.In(meta.Language)
		if label == "" {
			label = v.ID
		}
		st.Readings = append(st.Readings, Reading{
			ID:      v.ID,
			Label:   label,
			Unit:    def.Unit,
			Kind:    v.Kind,
			Value:   v.Float(),
			Flag:    v.Flag,
			Mapped:  b.mapped[v.ID],
			Display: Format(v, def.Unit, meta.Language),
		})
	}
	return st
}

// Format renders a value for display.
func Format(v metrics.Value, unit string, lang lessons.Language) string {
	switch v.Kind {
	case lessons.KindFlag:
		if v.Flag {
			return lessons.T("yes", "sí").In(lang)
		}
		return "no"
	case lessons.KindCount:
		if unit != "" {
			return fmt.Sprintf("%d %s", int64(v.Number), unit)
		}
		return fmt.Sprintf("%d", int64(v.Number))
	case lessons.KindPercent:
		return fmt.Sprintf("%.1f%%", v.Number)
	default:
		if unit != "" {
			return fmt.Sprintf("%.2f %s", v.Number, unit)
		}
		return fmt.Sprintf("%.2f", v.Number)
	}
}
