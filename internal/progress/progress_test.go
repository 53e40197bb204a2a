package progress

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "progress.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// fakeClock advances one second per call.
func fakeClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestOpenCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "p.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestBeginFinish(t *testing.T) {
	s := openTest(t)
	s.now = fakeClock(time.Unix(1_700_000_000, 0))
	ctx := context.Background()

	id, err := s.Begin(ctx, "smart_pointers", "unique_ownership", "tui")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("id %q is not a uuid: %v", id, err)
	}

	err = s.Finish(ctx, id, Summary{Scenario: "weak_observers", Frames: 600, Elapsed: 10, Switches: 2})
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.Recent(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d sessions", len(got))
	}
	ses := got[0]
	if ses.Scenario != "weak_observers" || ses.Frames != 600 || ses.Elapsed != 10 || ses.Switches != 2 || ses.Host != "tui" {
		t.Errorf("session = %+v", ses)
	}
	if ses.Duration() != time.Second {
		t.Errorf("duration = %v, want 1s", ses.Duration())
	}
}

func TestFinishKeepsScenarioWhenEmpty(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	id, _ := s.Begin(ctx, "raii_guards", "basic_guards", "ssh")
	if err := s.Finish(ctx, id, Summary{Frames: 1}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Recent(ctx, 1)
	if got[0].Scenario != "basic_guards" {
		t.Errorf("scenario = %q", got[0].Scenario)
	}
}

func TestFinishUnknown(t *testing.T) {
	s := openTest(t)
	err := s.Finish(context.Background(), "nope", Summary{})
	if !errors.Is(err, ErrUnknownSession) {
		t.Errorf("err = %v, want ErrUnknownSession", err)
	}
}

func TestRecentOrderAndLimit(t *testing.T) {
	s := openTest(t)
	s.now = fakeClock(time.Unix(1_700_000_000, 0))
	ctx := context.Background()

	var ids []string
	for _, l := range []string{"raii_guards", "memory_pools", "sanitizers"} {
		id, err := s.Begin(ctx, l, "x", "ws")
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}
	got, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != ids[2] || got[1].ID != ids[1] {
		t.Errorf("recent = %+v", got)
	}
	if !got[0].EndedAt.IsZero() || got[0].Duration() != 0 {
		t.Error("open session reported an end")
	}
}

func TestStats(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		id, _ := s.Begin(ctx, "memory_pools", "arena", "tui")
		if err := s.Finish(ctx, id, Summary{Frames: 100, Elapsed: 1.5}); err != nil {
			t.Fatal(err)
		}
	}
	s.Begin(ctx, "sanitizers", "leak_sanitizer", "tui")

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 1 {
		t.Fatalf("stats = %+v, open sessions must not count", stats)
	}
	st := stats[0]
	if st.Lesson != "memory_pools" || st.Sessions != 3 || st.Frames != 300 || st.Elapsed != 4.5 {
		t.Errorf("stats = %+v", st)
	}
}
