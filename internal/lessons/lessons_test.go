package lessons

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()

	ids := r.IDs()
	if len(ids) != 5 {
		t.Fatalf("expected 5 built-in lessons, got %d: %v", len(ids), ids)
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] > ids[i] {
			t.Errorf("IDs not sorted: %v", ids)
		}
	}

	l, err := r.Get("raii_guards")
	if err != nil {
		t.Fatalf("get raii_guards: %v", err)
	}
	if _, ok := l.Scenario("basic_guards"); !ok {
		t.Error("raii_guards missing basic_guards scenario")
	}

	if _, err := r.Get("nope"); !errors.Is(err, ErrUnknownLesson) {
		t.Errorf("expected ErrUnknownLesson, got %v", err)
	}
}

func TestBuiltinLessonsValidate(t *testing.T) {
	for _, l := range Builtin() {
		t.Run(l.ID, func(t *testing.T) {
			if err := l.Validate(); err != nil {
				t.Fatalf("validate: %v", err)
			}
			if len(l.Scenarios) < 2 {
				t.Errorf("expected several scenarios, got %d", len(l.Scenarios))
			}
			for _, sc := range l.Scenarios {
				if sc.Label.En == "" || sc.Label.Es == "" {
					t.Errorf("scenario %s lacks a bilingual label", sc.ID)
				}
			}
		})
	}
}

func TestValidateRejects(t *testing.T) {
	base := func() *Lesson { return raiiGuards() }

	tests := []struct {
		name   string
		mutate func(l *Lesson)
	}{
		{"empty id", func(l *Lesson) { l.ID = "" }},
		{"no scenarios", func(l *Lesson) { l.Scenarios = nil }},
		{"duplicate scenario", func(l *Lesson) { l.Scenarios[1].ID = l.Scenarios[0].ID }},
		{"min above max", func(l *Lesson) { l.Scenarios[0].Metrics[0].Min = 10 }},
		{"nan base", func(l *Lesson) { l.Scenarios[0].Metrics[1].Formula.Base = math.NaN() }},
		{"percent above 100", func(l *Lesson) {
			l.Scenarios[0].Metrics = append(l.Scenarios[0].Metrics, MetricDef{ID: "p", Kind: KindPercent, Min: 0, Max: 120})
		}},
		{"negative count min", func(l *Lesson) { l.Scenarios[0].Metrics[0].Min = -1 }},
		{"unknown kind", func(l *Lesson) { l.Scenarios[0].Metrics[0].Kind = "ratio" }},
		{"unknown wave", func(l *Lesson) { l.Scenarios[0].Metrics[0].Formula.Terms[0].Wave = "tan" }},
		{"binding unknown node", func(l *Lesson) { l.Layout.Bindings[0].Node = "ghost" }},
		{"binding unknown metric", func(l *Lesson) { l.Layout.Bindings[0].Metric = "ghost" }},
		{"replicas on plain node", func(l *Lesson) {
			l.Layout.Bindings = append(l.Layout.Bindings, Binding{Metric: "guardsActive", Node: "scope", Channel: ChannelReplicas})
		}},
		{"parent after child", func(l *Lesson) { l.Layout.Nodes[0].Parent = "halo" }},
		{"negative pulse", func(l *Lesson) { l.Layout.Nodes[0].Pulse = -1 }},
		{"infinite pulse", func(l *Lesson) { l.Layout.Nodes[0].Pulse = math.Inf(1) }},
		{"unknown memory region", func(l *Lesson) { l.Layout.Nodes[0].Memory = "register" }},
		{"no shape", func(l *Lesson) { l.Layout.Nodes[0].Shape, l.Layout.Nodes[0].Memory = "", "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := base()
			tt.mutate(l)
			if err := l.Validate(); !errors.Is(err, ErrInvalidLesson) {
				t.Errorf("expected ErrInvalidLesson, got %v", err)
			}
		})
	}
}

func TestLayoutFor(t *testing.T) {
	l := raiiGuards()
	override := &Layout{Nodes: []NodeSpec{{Name: "solo", Shape: ShapeCube, Size: 1}}}
	l.Scenarios[2].Layout = override

	if got := l.LayoutFor("basic_guards"); len(got.Nodes) != len(l.Layout.Nodes) {
		t.Errorf("basic_guards should use lesson layout")
	}
	if got := l.LayoutFor("exception_unwind"); len(got.Nodes) != 1 || got.Nodes[0].Name != "solo" {
		t.Errorf("exception_unwind should use its override, got %+v", got.Nodes)
	}
	if err := l.Validate(); err != nil {
		t.Errorf("override layout without bindings should validate: %v", err)
	}
}

func TestNodeStyle(t *testing.T) {
	tests := []struct {
		name  string
		spec  NodeSpec
		shape Shape
		color string
	}{
		{"explicit", NodeSpec{Shape: ShapeArrow, Color: "#fff", Memory: MemoryHeap}, ShapeArrow, "#fff"},
		{"stack defaults", NodeSpec{Memory: MemoryStack}, ShapeCube, MemoryStack.Color()},
		{"heap color only", NodeSpec{Shape: ShapeCube, Memory: MemoryHeap}, ShapeCube, MemoryHeap.Color()},
		{"global shape only", NodeSpec{Color: "#123456", Memory: MemoryGlobal}, ShapeRing, "#123456"},
		{"untagged", NodeSpec{Shape: ShapeSphere}, ShapeSphere, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape, color := tt.spec.Style()
			if shape != tt.shape || color != tt.color {
				t.Errorf("Style() = %s %q, want %s %q", shape, color, tt.shape, tt.color)
			}
		})
	}
	if MemoryStack.Color() == MemoryHeap.Color() || MemoryHeap.Color() == MemoryGlobal.Color() {
		t.Error("memory regions share a color")
	}
}

func TestBuiltinMemoryRegions(t *testing.T) {
	seen := map[MemoryKind]bool{}
	pulsing := 0
	for _, l := range Builtin() {
		for _, n := range l.Layout.Nodes {
			if n.Memory != "" {
				seen[n.Memory] = true
			}
			if n.Pulse > 0 {
				pulsing++
			}
		}
	}
	for _, k := range []MemoryKind{MemoryStack, MemoryHeap, MemoryGlobal} {
		if !seen[k] {
			t.Errorf("no built-in block lives in %s memory", k)
		}
	}
	if pulsing == 0 {
		t.Error("no built-in pointer pulses")
	}
}

func TestTextFallback(t *testing.T) {
	txt := T("Guards", "")
	if txt.In(Spanish) != "Guards" {
		t.Errorf("expected English fallback, got %q", txt.In(Spanish))
	}
	if T("a", "b").In(Spanish) != "b" {
		t.Error("expected Spanish text")
	}
	if English.Next() != Spanish || Spanish.Next() != English {
		t.Error("language cycling broken")
	}
	if _, ok := ParseLanguage("fr"); ok {
		t.Error("fr should not parse")
	}
}

const catalogYAML = `
lessons:
  - id: move_semantics
    title: {en: Move semantics, es: Semántica de movimiento}
    scenarios:
      - id: copy_vs_move
        label: {en: Copy vs move}
        metrics:
          - id: copies
            kind: count
            min: 0
            max: 4
            formula:
              base: 2
              terms:
                - {wave: sin, amp: 2, freq: 0.5, phase: 0}
          - id: stolen
            kind: flag
            formula:
              base: 0
              terms:
                - {wave: cos, amp: 1, freq: 0.3}
    layout:
      nodes:
        - {name: buffer, shape: cube, size: 1, replicas: 4, radius: 2}
        - {name: source, memory: heap, size: 1}
        - {name: handle, shape: arrow, memory: stack, size: 1, pulse: 0.5}
      bindings:
        - {metric: copies, node: buffer, channel: replicas}
`

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(catalogYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	r := Default()
	n, err := LoadInto(r, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 lesson, got %d", n)
	}

	l, err := r.Get("move_semantics")
	if err != nil {
		t.Fatal(err)
	}
	sc, ok := l.Scenario("copy_vs_move")
	if !ok {
		t.Fatal("scenario missing")
	}
	m, _ := sc.Metric("copies")
	if m.Kind != KindCount || m.Max != 4 || len(m.Formula.Terms) != 1 {
		t.Errorf("metric decoded wrong: %+v", m)
	}
	src, _ := l.Layout.Node("source")
	if shape, color := src.Style(); src.Memory != MemoryHeap || shape != ShapeSphere || color != MemoryHeap.Color() {
		t.Errorf("source decoded as %+v", src)
	}
	if h, _ := l.Layout.Node("handle"); h.Pulse != 0.5 || h.Memory != MemoryStack {
		t.Errorf("handle decoded as %+v", h)
	}
	if l.Title.In(Spanish) != "Semántica de movimiento" {
		t.Errorf("title = %q", l.Title.In(Spanish))
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	_, err := Parse([]byte("lessons:\n  - id: broken\n"))
	if !errors.Is(err, ErrInvalidLesson) {
		t.Errorf("expected ErrInvalidLesson, got %v", err)
	}
}
