package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/pointerquest/internal/engine"
	"github.com/san-kum/pointerquest/internal/lessons"
)

func recordRun(t *testing.T, lesson, scenario string, cfg engine.RunConfig) *engine.Result {
	t.Helper()
	l, err := lessons.Default().Get(lesson)
	if err != nil {
		t.Fatal(err)
	}
	inst, err := engine.New(l, engine.Options{Scenario: scenario})
	if err != nil {
		t.Fatal(err)
	}
	res, err := engine.Run(context.Background(), inst, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return res
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := engine.RunConfig{Duration: 2, Dt: 50 * time.Millisecond}
	res := recordRun(t, "raii_guards", "nested_scopes", cfg)

	runID, err := st.Save(res, cfg)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "raii_guards_nested_scopes_") {
		t.Errorf("run id = %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Lesson != "raii_guards" || meta.Scenario != "nested_scopes" || meta.Frames != res.Frames {
		t.Errorf("metadata = %+v", meta)
	}
	if meta.Dt != 0.05 || meta.Speed != 1 {
		t.Errorf("dt %g speed %g", meta.Dt, meta.Speed)
	}
	guards := meta.Metrics["guardsActive"]
	if guards.Min < 1 || guards.Max > 9 || guards.Mean < guards.Min || guards.Mean > guards.Max {
		t.Errorf("guardsActive stats = %+v", guards)
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		t.Fatalf("load series failed: %v", err)
	}
	if len(series.Rows) != len(res.Records) {
		t.Fatalf("expected %d rows, got %d", len(res.Records), len(series.Rows))
	}
	for i, rec := range res.Records {
		for j, id := range series.Columns {
			v, _ := rec.Get(id)
			if math.Abs(series.Rows[i][j]-v.Float()) > 1e-6 {
				t.Fatalf("row %d %s = %g, want %g", i, id, series.Rows[i][j], v.Float())
			}
		}
	}
	safe, ok := series.Column("exceptionSafe")
	if !ok {
		t.Fatal("flag column missing")
	}
	for _, v := range safe {
		if v != 0 && v != 1 {
			t.Fatalf("flag stored as %g", v)
		}
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	base := time.Unix(1_700_000_000, 0)
	n := 0
	st.now = func() time.Time { n++; return base.Add(time.Duration(-n) * time.Hour) }

	cfg := engine.RunConfig{Duration: 0.5, Dt: 100 * time.Millisecond}
	first, _ := st.Save(recordRun(t, "sanitizers", "", cfg), cfg)
	second, _ := st.Save(recordRun(t, "memory_pools", "arena", cfg), cfg)

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].ID != second || runs[1].ID != first {
		t.Errorf("list order = %v", runs)
	}
}

func TestStoreSaveFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	at := time.Unix(1_700_000_000, 0)
	st.now = func() time.Time { return at }

	cfg := engine.RunConfig{Duration: 0.5, Dt: 100 * time.Millisecond}
	res := recordRun(t, "sanitizers", "", cfg)
	blocker := filepath.Join(dir, fmt.Sprintf("%s_%s_%d", res.Lesson, res.Scenario, at.UnixMilli()))
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := st.Save(res, cfg); err == nil {
		t.Fatal("save over an existing file succeeded")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != filepath.Base(blocker) {
		t.Errorf("left behind %v", entries)
	}
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("list = %v, %v", runs, err)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(t.TempDir() + "/absent").List()
	if err != nil || len(runs) != 0 {
		t.Errorf("List() = %v, %v", runs, err)
	}
}

func TestStoreNotFound(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load err = %v", err)
	}
	if _, err := st.LoadSeries("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadSeries err = %v", err)
	}
}

func TestReadCSVSkipsBadRows(t *testing.T) {
	in := "time,a,b\n0.0,1,2\nbogus,3,4\n0.5,5\n"
	s, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Rows) != 2 || s.Rows[1][0] != 5 || s.Rows[1][1] != 0 {
		t.Errorf("rows = %v", s.Rows)
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	cfg := engine.RunConfig{Duration: 1, Dt: 100 * time.Millisecond}
	id, err := st.Save(recordRun(t, "custom_deleters", "lambda_deleter", cfg), cfg)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, id); err != nil {
		t.Fatal(err)
	}
	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatal(err)
	}
	if data.Meta.ID != id || len(data.Columns) != len(data.Meta.Columns) {
		t.Errorf("export = %+v", data.Meta)
	}
	for c, vals := range data.Columns {
		if len(vals) != len(data.Times) {
			t.Errorf("column %s has %d values for %d times", c, len(vals), len(data.Times))
		}
	}
}
