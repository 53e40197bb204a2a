package scene

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/pointerquest/internal/lessons"
	"github.com/san-kum/pointerquest/internal/metrics"
)

func raii(t *testing.T) *lessons.Lesson {
	t.Helper()
	l, err := lessons.Default().Get("raii_guards")
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func visibleChildren(n *Node) int {
	k := 0
	for _, c := range n.Children {
		if c.Visible {
			k++
		}
	}
	return k
}

func TestBuild(t *testing.T) {
	l := raii(t)
	g := Build(l.Layout)

	// root + scope + guards(9) + resources(10) + halo
	if got, want := g.Len(), 1+1+1+9+1+10+1; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
	guards := g.Find("guards")
	if guards == nil || len(guards.Children) != 9 {
		t.Fatalf("guards group malformed: %+v", guards)
	}
	if g.Find("guards/3") != guards.Children[3] {
		t.Error("replica not indexed by name")
	}
	for _, c := range guards.Children {
		if r := math.Hypot(c.Position.X, c.Position.Z); math.Abs(r-3) > 1e-9 {
			t.Errorf("%s at radius %g, want 3", c.Name, r)
		}
	}
	if err := g.Valid(); err != nil {
		t.Errorf("fresh graph invalid: %v", err)
	}
}

func TestBuildParent(t *testing.T) {
	l, _ := lessons.Default().Get("memory_pools")
	g := Build(l.Layout)
	pool := g.Find("pool")
	if pool == nil || len(pool.Children) != 1 || pool.Children[0].Name != "fill" {
		t.Fatalf("fill should be a child of pool")
	}
}

func TestApplyNilGraph(t *testing.T) {
	l := raii(t)
	b := NewBinder(l, "basic_guards")
	rec := metrics.NewGenerator(l).Generate("basic_guards", 1)
	if got := b.Apply(rec, nil); got != nil {
		t.Error("nil graph should stay nil")
	}
	if got := b.Apply(rec, &Graph{}); got == nil || got.Root != nil {
		t.Error("empty graph should be returned untouched")
	}
}

func TestApplyBindings(t *testing.T) {
	l := raii(t)
	b := NewBinder(l, "basic_guards")
	g := b.Build()
	gen := metrics.NewGenerator(l)

	for i := 0; i < 200; i++ {
		rec := gen.Generate("basic_guards", float64(i)*0.1)
		b.Apply(rec, g)

		if got, want := visibleChildren(g.Find("guards")), int(rec.Number("guardsActive")); got != want {
			t.Fatalf("frame %d: %d guards visible, want %d", i, got, want)
		}
		if got, want := visibleChildren(g.Find("resources")), int(rec.Number("resourcesHeld")); got != want {
			t.Fatalf("frame %d: %d resources visible, want %d", i, got, want)
		}
		if g.Find("halo").Visible != rec.Flag("exceptionSafe") {
			t.Fatalf("frame %d: halo visibility not synced", i)
		}
		if err := g.Valid(); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}
}

func TestApplySpinAdvances(t *testing.T) {
	l := raii(t)
	b := NewBinder(l, "basic_guards")
	g := b.Build()
	rec := metrics.NewGenerator(l).Generate("basic_guards", 0)

	before := g.Find("scope").Rotation.Y
	b.Apply(rec, g)
	after := g.Find("scope").Rotation.Y
	if after <= before {
		t.Errorf("scope rotation did not advance: %g -> %g", before, after)
	}
	if g.Find("halo").Rotation.Y != 0 {
		t.Error("halo has no spin and no spin binding")
	}
}

func TestBuildMemoryRegions(t *testing.T) {
	g := Build(raii(t).Layout)
	scope := g.Find("scope")
	if scope.Memory != lessons.MemoryStack || scope.Shape != lessons.ShapeCube || scope.Color != lessons.MemoryStack.Color() {
		t.Errorf("scope = %s %s %s", scope.Memory, scope.Shape, scope.Color)
	}
	if r := g.Find("resources/4"); r.Memory != lessons.MemoryHeap || r.Color != lessons.MemoryHeap.Color() {
		t.Errorf("replica did not inherit its region: %s %s", r.Memory, r.Color)
	}
	if halo := g.Find("halo"); halo.Memory != "" || halo.Thickness != BaseThickness {
		t.Errorf("untagged halo = %s, thickness %g", halo.Memory, halo.Thickness)
	}
}

func TestPulseAt(t *testing.T) {
	tests := []struct {
		rate, t             float64
		progress, thickness float64
	}{
		{0, 3, 0, BaseThickness},
		{1, 0, 0, BaseThickness},
		{1, 0.25, 0.25, BaseThickness + ThicknessSwing},
		{1, 0.75, 0.75, BaseThickness - ThicknessSwing},
		{1, 2.25, 0.25, BaseThickness + ThicknessSwing},
		{2, 0.125, 0.25, BaseThickness + ThicknessSwing},
		{0.5, 1, 0.5, BaseThickness},
	}
	for _, tt := range tests {
		p, th := PulseAt(tt.rate, tt.t)
		if math.Abs(p-tt.progress) > 1e-9 || math.Abs(th-tt.thickness) > 1e-9 {
			t.Errorf("PulseAt(%g, %g) = %g, %g; want %g, %g", tt.rate, tt.t, p, th, tt.progress, tt.thickness)
		}
	}
}

func TestApplyPulse(t *testing.T) {
	l, err := lessons.Default().Get("smart_pointers")
	if err != nil {
		t.Fatal(err)
	}
	b := NewBinder(l, "reference_counting")
	g := b.Build()
	gen := metrics.NewGenerator(l)

	for i := 0; i < 120; i++ {
		tm := float64(i) * 0.05
		rec := gen.Generate("reference_counting", tm)
		b.Apply(rec, g)
		// a second apply of the same record must not move the pulse
		b.Apply(rec, g)

		owner := g.Find("owners/0")
		if _, want := PulseAt(1, tm); math.Abs(owner.Thickness-want) > 1e-9 {
			t.Fatalf("t=%g: owner thickness %g, want %g", tm, owner.Thickness, want)
		}
		if owner.Thickness < BaseThickness-ThicknessSwing || owner.Thickness > BaseThickness+ThicknessSwing {
			t.Fatalf("t=%g: thickness %g out of range", tm, owner.Thickness)
		}

		v, _ := rec.Get("weakCount")
		rate := 0.25 + 1.5*v.Normalized()
		obs := g.Find("observers/2")
		if math.Abs(obs.Pulse-rate) > 1e-9 || g.Find("observers").Pulse != obs.Pulse {
			t.Fatalf("t=%g: observer rate %g, want %g", tm, obs.Pulse, rate)
		}
		if _, want := PulseAt(rate, tm); math.Abs(obs.Thickness-want) > 1e-9 {
			t.Fatalf("t=%g: observer thickness %g, want %g", tm, obs.Thickness, want)
		}
		if g.Find("object").Thickness != BaseThickness {
			t.Fatal("still node changed thickness")
		}
		if err := g.Valid(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestValidRejectsThickness(t *testing.T) {
	g := Build(raii(t).Layout)
	g.Find("halo").Thickness = 0
	if err := g.Valid(); err == nil {
		t.Error("zero thickness accepted")
	}
}

func minimumRecord(l *lessons.Lesson, sc *lessons.Scenario) metrics.Record {
	rec := metrics.Record{Lesson: l.ID, Scenario: sc.ID}
	for _, d := range sc.Metrics {
		rec.Values = append(rec.Values, metrics.Value{ID: d.ID, Kind: d.Kind, Number: d.Min, Min: d.Min, Max: d.Max})
	}
	return rec
}

func TestApplyMinimumDomainKeepsGraphValid(t *testing.T) {
	for _, l := range lessons.Builtin() {
		for i := range l.Scenarios {
			sc := &l.Scenarios[i]
			b := NewBinder(l, sc.ID)
			g := b.Build()
			rec := minimumRecord(l, sc)
			for f := 0; f < 3; f++ {
				b.Apply(rec, g)
			}
			if err := g.Valid(); err != nil {
				t.Errorf("%s/%s: %v", l.ID, sc.ID, err)
			}
			g.Walk(func(n *Node, _ func(Vec3) Vec3) {
				if n.Scale.X < MinScale {
					t.Errorf("%s/%s: %s scale %g below MinScale", l.ID, sc.ID, n.Name, n.Scale.X)
				}
			})
		}
	}
}

func TestPublishPassesThroughUnmapped(t *testing.T) {
	l, _ := lessons.Default().Get("smart_pointers")
	b := NewBinder(l, "reference_counting")
	rec := metrics.NewGenerator(l).Generate("reference_counting", 2)

	st := b.Publish(rec, Meta{Language: lessons.Spanish, Running: true, Speed: 1, Frame: 7})
	if len(st.Readings) != len(rec.Values) {
		t.Fatalf("%d readings for %d values", len(st.Readings), len(rec.Values))
	}
	for i, r := range st.Readings {
		v := rec.Values[i]
		if r.ID != v.ID || r.Value != v.Float() {
			t.Errorf("reading %d = %+v, want value of %s", i, r, v.ID)
		}
		if r.Mapped != b.Mapped(v.ID) {
			t.Errorf("%s: mapped = %v", r.ID, r.Mapped)
		}
	}
	if st.ScenarioLabel != "Conteo de referencias" {
		t.Errorf("scenario label = %q", st.ScenarioLabel)
	}
	if !st.Running || st.Frame != 7 || st.Elapsed != 2 {
		t.Errorf("meta not carried: %+v", st)
	}
	if r, _ := st.Reading("threadSafety"); !strings.HasSuffix(r.Display, "%") {
		t.Errorf("percent display = %q", r.Display)
	}
}

func TestPublishBaseline(t *testing.T) {
	l := raii(t)
	b := NewBinder(l, "missing")
	rec := metrics.NewGenerator(l).Generate("missing", 3)
	st := b.Publish(rec, Meta{Language: lessons.English})
	if !st.Baseline || st.ScenarioLabel != "missing" {
		t.Errorf("baseline publish = %+v", st)
	}
	g := b.Build()
	b.Apply(rec, g)
	if err := g.Valid(); err != nil {
		t.Errorf("baseline apply: %v", err)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		v    metrics.Value
		unit string
		lang lessons.Language
		want string
	}{
		{metrics.Value{Kind: lessons.KindCount, Number: 4}, "", lessons.English, "4"},
		{metrics.Value{Kind: lessons.KindCount, Number: 16}, "B", lessons.English, "16 B"},
		{metrics.Value{Kind: lessons.KindPercent, Number: 85.25}, "%", lessons.English, "85.2%"},
		{metrics.Value{Kind: lessons.KindScalar, Number: 2.5}, "µs", lessons.English, "2.50 µs"},
		{metrics.Value{Kind: lessons.KindFlag, Flag: true}, "", lessons.Spanish, "sí"},
		{metrics.Value{Kind: lessons.KindFlag, Flag: true}, "", lessons.English, "yes"},
		{metrics.Value{Kind: lessons.KindFlag}, "", lessons.Spanish, "no"},
	}
	for _, tt := range tests {
		if got := Format(tt.v, tt.unit, tt.lang); got != tt.want {
			t.Errorf("Format(%+v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestNodeLocal(t *testing.T) {
	n := newNode("n", lessons.ShapeCube, "", 1, Vec3{1, 0, 0})
	n.Scale = Vec3{2, 2, 2}
	n.Rotation = Vec3{0, math.Pi / 2, 0}
	got := n.Local(Vec3{1, 0, 0})
	want := Vec3{1, 0, -2}
	if got.Sub(want).Length() > 1e-9 {
		t.Errorf("Local = %v, want %v", got, want)
	}
}
