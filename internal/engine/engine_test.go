package engine

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/san-kum/pointerquest/internal/clock"
	"github.com/san-kum/pointerquest/internal/lessons"
	"github.com/san-kum/pointerquest/internal/metrics"
	"github.com/san-kum/pointerquest/internal/scene"
)

const frame = 16 * time.Millisecond

func mount(t *testing.T, lesson string, opts Options) *Instance {
	t.Helper()
	l, err := lessons.Default().Get(lesson)
	if err != nil {
		t.Fatal(err)
	}
	inst, err := New(l, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return inst
}

func TestNewDefaults(t *testing.T) {
	inst := mount(t, "smart_pointers", Options{})

	if inst.Scenario() != "unique_ownership" {
		t.Errorf("scenario = %q, want first scenario", inst.Scenario())
	}
	if inst.State() != Idle {
		t.Errorf("state = %v, want idle", inst.State())
	}
	if inst.Language() != lessons.English || inst.Speed() != 1 {
		t.Errorf("language %q speed %g", inst.Language(), inst.Speed())
	}
	st := inst.Snapshot()
	if len(st.Readings) == 0 || st.Elapsed != 0 || st.Frame != 0 {
		t.Errorf("initial snapshot = %+v", st)
	}
}

func TestNewErrors(t *testing.T) {
	l, _ := lessons.Default().Get("raii_guards")
	tests := []struct {
		name   string
		lesson *lessons.Lesson
		opts   Options
		want   error
	}{
		{"nil lesson", nil, Options{}, ErrUnknownLesson},
		{"unknown scenario", l, Options{Scenario: "weak_cycles"}, ErrUnknownScenario},
		{"unknown language", l, Options{Language: "fr"}, ErrUnknownLanguage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.lesson, tt.opts); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestIdleFrameLeavesSceneStatic(t *testing.T) {
	inst := mount(t, "raii_guards", Options{})
	scope := inst.Graph().Find("scope")
	rot := scope.Rotation

	for i := 0; i < 10; i++ {
		st := inst.Frame(time.Second)
		if st.Running || st.Elapsed != 0 {
			t.Fatalf("idle frame published %+v", st)
		}
	}
	if scope.Rotation != rot {
		t.Error("idle frames rotated the scene")
	}
	if inst.Frames() != 0 {
		t.Errorf("frames = %d, want 0", inst.Frames())
	}
}

func TestRunningFrameMatchesGenerator(t *testing.T) {
	inst := mount(t, "memory_pools", Options{})
	inst.Start()
	for i := 0; i < 10; i++ {
		inst.Frame(frame)
	}

	if inst.Frames() != 10 {
		t.Errorf("frames = %d, want 10", inst.Frames())
	}
	if math.Abs(inst.Elapsed()-0.16) > 1e-9 {
		t.Errorf("elapsed = %g, want 0.16", inst.Elapsed())
	}
	want := metrics.NewGenerator(inst.Lesson()).Generate(inst.Scenario(), inst.Elapsed())
	got := inst.Record()
	for i, v := range want.Values {
		if got.Values[i] != v {
			t.Errorf("%s = %+v, want %+v", v.ID, got.Values[i], v)
		}
	}
}

func TestPauseResumeContinuity(t *testing.T) {
	inst := mount(t, "custom_deleters", Options{})
	inst.Start()
	for i := 0; i < 30; i++ {
		inst.Frame(frame)
	}
	inst.Pause()
	held := inst.Snapshot()

	for i := 0; i < 5; i++ {
		st := inst.Frame(10 * time.Second)
		if st.Elapsed != held.Elapsed {
			t.Fatalf("elapsed moved while paused: %g -> %g", held.Elapsed, st.Elapsed)
		}
		for k, r := range st.Readings {
			if r.Value != held.Readings[k].Value {
				t.Fatalf("%s changed while paused", r.ID)
			}
		}
	}

	inst.Start()
	st := inst.Frame(10 * time.Second)
	if jump := st.Elapsed - held.Elapsed; jump <= 0 || jump > inst.clock.MaxStep().Seconds()+1e-9 {
		t.Errorf("resume jumped %gs", jump)
	}
}

func TestSelectScenario(t *testing.T) {
	inst := mount(t, "smart_pointers", Options{})
	inst.Start()
	for i := 0; i < 20; i++ {
		inst.Frame(frame)
	}
	at := inst.Elapsed()
	before := inst.Graph()

	if err := inst.SelectScenario("weak_observers"); err != nil {
		t.Fatal(err)
	}
	rec := inst.Record()
	if rec.Scenario != "weak_observers" || rec.Time != at {
		t.Errorf("record after switch = %s@%g, want weak_observers@%g", rec.Scenario, rec.Time, at)
	}
	if !inst.Running() {
		t.Error("switch must not pause")
	}
	if inst.Graph() == before {
		t.Error("graph not rebuilt")
	}
	if inst.Snapshot().Scenario != "weak_observers" {
		t.Error("switch not published")
	}

	err := inst.SelectScenario("arena")
	if !errors.Is(err, ErrUnknownScenario) {
		t.Errorf("err = %v", err)
	}
	if inst.Scenario() != "weak_observers" {
		t.Error("failed switch changed scenario")
	}
}

func TestSelectScenarioWhilePaused(t *testing.T) {
	inst := mount(t, "raii_guards", Options{})
	if err := inst.SelectScenario("exception_unwind"); err != nil {
		t.Fatal(err)
	}
	if inst.Running() {
		t.Error("switch started the clock")
	}
	if got := inst.Snapshot().ScenarioLabel; got != "Exception unwinding" {
		t.Errorf("label = %q", got)
	}
}

func TestCycleScenario(t *testing.T) {
	inst := mount(t, "sanitizers", Options{})
	ids := inst.Lesson().ScenarioIDs()

	inst.CycleScenario(-1)
	if inst.Scenario() != ids[len(ids)-1] {
		t.Errorf("cycle back from first = %q", inst.Scenario())
	}
	inst.CycleScenario(1)
	if inst.Scenario() != ids[0] {
		t.Errorf("cycle forward = %q", inst.Scenario())
	}
}

func TestSetLanguage(t *testing.T) {
	inst := mount(t, "smart_pointers", Options{})
	if err := inst.SetLanguage(lessons.Spanish); err != nil {
		t.Fatal(err)
	}
	if got := inst.Snapshot().LessonTitle; got != "Punteros inteligentes" {
		t.Errorf("title = %q", got)
	}
	if err := inst.SetLanguage("de"); !errors.Is(err, ErrUnknownLanguage) {
		t.Errorf("err = %v", err)
	}
	if inst.Language() != lessons.Spanish {
		t.Error("failed SetLanguage changed language")
	}
}

func TestSetSpeedClamped(t *testing.T) {
	inst := mount(t, "raii_guards", Options{Speed: 2})
	if inst.Speed() != 2 {
		t.Errorf("speed = %g", inst.Speed())
	}
	inst.SetSpeed(50)
	if inst.Snapshot().Speed != 5 {
		t.Errorf("published speed = %g, want 5", inst.Snapshot().Speed)
	}
}

func TestReset(t *testing.T) {
	inst := mount(t, "memory_pools", Options{})
	inst.Start()
	for i := 0; i < 5; i++ {
		inst.Frame(frame)
	}
	inst.Reset()
	if inst.Elapsed() != 0 || inst.Frames() != 0 {
		t.Errorf("after reset elapsed %g frames %d", inst.Elapsed(), inst.Frames())
	}
	if !inst.Running() {
		t.Error("reset paused the instance")
	}
}

func TestObserver(t *testing.T) {
	inst := mount(t, "raii_guards", Options{})
	var got []scene.UIState
	inst.AddObserver(ObserverFunc(func(st scene.UIState) { got = append(got, st) }))

	inst.Start()
	inst.Frame(frame)
	inst.Pause()
	inst.Frame(frame)

	if len(got) != 4 {
		t.Fatalf("observed %d states, want 4", len(got))
	}
	if !got[1].Running || got[3].Running {
		t.Errorf("running flags = %v %v", got[1].Running, got[3].Running)
	}
}

func TestValidateGraph(t *testing.T) {
	inst := mount(t, "sanitizers", Options{ValidateGraph: true})
	inst.Start()
	for i := 0; i < 500; i++ {
		inst.Frame(50 * time.Millisecond)
	}
	if err := inst.Err(); err != nil {
		t.Errorf("graph became invalid: %v", err)
	}
}

func TestRun(t *testing.T) {
	inst := mount(t, "custom_deleters", Options{})
	res, err := Run(context.Background(), inst, RunConfig{Duration: 1, Dt: 100 * time.Millisecond})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Frames < 10 {
		t.Errorf("frames = %d, want >= 10", res.Frames)
	}
	if len(res.Records) != int(res.Frames)+1 || len(res.Times) != len(res.Records) {
		t.Errorf("%d records, %d times for %d frames", len(res.Records), len(res.Times), res.Frames)
	}
	if last := res.Times[len(res.Times)-1]; last < 1 {
		t.Errorf("stopped at t=%g", last)
	}
	if inst.Running() {
		t.Error("run left the instance running")
	}
}

func TestRunInvalidConfig(t *testing.T) {
	inst := mount(t, "raii_guards", Options{})
	for _, cfg := range []RunConfig{
		{Duration: 1},
		{Dt: time.Millisecond},
		{Duration: -1, Dt: time.Millisecond},
	} {
		if _, err := Run(context.Background(), inst, cfg); !errors.Is(err, ErrInvalidRun) {
			t.Errorf("Run(%+v) err = %v", cfg, err)
		}
	}
}

func TestRunCanceled(t *testing.T) {
	inst := mount(t, "raii_guards", Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := Run(ctx, inst, RunConfig{Duration: 10, Dt: frame})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
	if res == nil || res.Frames != 0 {
		t.Errorf("canceled run result = %+v", res)
	}
}

func TestRunAll(t *testing.T) {
	jobs := AllJobs(lessons.Default())
	if len(jobs) != 15 {
		t.Fatalf("%d jobs, want 15", len(jobs))
	}
	results, err := RunAll(context.Background(), jobs, RunConfig{Duration: 2, Dt: 50 * time.Millisecond, ValidateGraph: true}, 4)
	if err != nil {
		t.Fatal(err)
	}
	for i, res := range results {
		if res.Lesson != jobs[i].Lesson.ID || res.Scenario != jobs[i].Scenario {
			t.Errorf("result %d is %s/%s", i, res.Lesson, res.Scenario)
		}
	}
}

func TestRunAllCoarseStep(t *testing.T) {
	l, _ := lessons.Default().Get("smart_pointers")
	dt := 2 * clock.DefaultMaxStep
	results, err := RunAll(context.Background(), []Job{{Lesson: l}}, RunConfig{Duration: 1, Dt: dt}, 1)
	if err != nil {
		t.Fatal(err)
	}
	res := results[0]
	for i := 1; i < len(res.Times); i++ {
		if step := res.Times[i] - res.Times[i-1]; math.Abs(step-dt.Seconds()) > 1e-9 {
			t.Fatalf("step %d = %g, want %g", i, step, dt.Seconds())
		}
	}
	if res.Frames < 5 || res.Frames > 6 {
		t.Errorf("frames = %d, want 5 or 6", res.Frames)
	}
}

func TestRunRestoresMaxStep(t *testing.T) {
	inst := mount(t, "raii_guards", Options{})
	if _, err := Run(context.Background(), inst, RunConfig{Duration: 1, Dt: 250 * time.Millisecond}); err != nil {
		t.Fatal(err)
	}
	if got := inst.clock.MaxStep(); got != clock.DefaultMaxStep {
		t.Errorf("max step after run = %v", got)
	}
	if got := inst.Elapsed(); got != 1 {
		t.Errorf("elapsed = %g, want 1", got)
	}
}

func BenchmarkFrame(b *testing.B) {
	l, _ := lessons.Default().Get("smart_pointers")
	inst, _ := New(l, Options{})
	inst.Start()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		inst.Frame(frame)
	}
}
