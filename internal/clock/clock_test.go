package clock

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

const frame = time.Second / 60

func TestTickOnlyWhileRunning(t *testing.T) {
	c := New()
	if got := c.Tick(frame); got != 0 {
		t.Fatalf("paused clock advanced to %g", got)
	}

	c.Start()
	got := c.Tick(frame)
	if math.Abs(got-frame.Seconds()) > 1e-12 {
		t.Errorf("elapsed = %g, want %g", got, frame.Seconds())
	}

	c.Pause()
	held := c.Elapsed()
	for i := 0; i < 10; i++ {
		if c.Tick(frame) != held {
			t.Fatal("paused clock must hold its value")
		}
	}
}

func TestTickMonotonic(t *testing.T) {
	c := New()
	c.Start()
	prev := 0.0
	for _, d := range []time.Duration{frame, 0, -frame, 3 * frame, time.Hour} {
		got := c.Tick(d)
		if got < prev {
			t.Fatalf("elapsed decreased from %g to %g on delta %v", prev, got, d)
		}
		prev = got
	}
}

func TestTickCapsStalls(t *testing.T) {
	c := New(WithMaxStep(50 * time.Millisecond))
	c.Start()
	got := c.Tick(10 * time.Second)
	if math.Abs(got-0.05) > 1e-12 {
		t.Errorf("stalled tick advanced %g, want 0.05", got)
	}
}

func TestSetMaxStep(t *testing.T) {
	c := New()
	c.SetMaxStep(0)
	if c.MaxStep() != DefaultMaxStep {
		t.Errorf("zero max step accepted: %v", c.MaxStep())
	}
	c.SetMaxStep(250 * time.Millisecond)
	c.Start()
	if got := c.Tick(time.Second); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("tick advanced %g, want 0.25", got)
	}
}

func TestPauseResumeContinuity(t *testing.T) {
	c := New()
	c.Start()
	for i := 0; i < 30; i++ {
		c.Tick(frame)
	}
	before := c.Elapsed()

	c.Pause()
	for i := 0; i < 100; i++ {
		c.Tick(frame)
	}
	c.Start()
	// The host measured the whole pause as one delta.
	after := c.Tick(100 * frame)
	if jump := after - before; jump > DefaultMaxStep.Seconds()+1e-12 {
		t.Errorf("resume jumped %g seconds", jump)
	}
}

func TestSpeed(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1, 1},
		{2.5, 2.5},
		{0, MinSpeed},
		{-3, MinSpeed},
		{50, MaxSpeed},
		{math.NaN(), 1},
	}
	for _, tt := range tests {
		c := New(WithSpeed(tt.in))
		if c.Speed() != tt.want {
			t.Errorf("speed(%g) = %g, want %g", tt.in, c.Speed(), tt.want)
		}
	}

	c := New(WithSpeed(2))
	c.Start()
	if got := c.Tick(frame); math.Abs(got-2*frame.Seconds()) > 1e-12 {
		t.Errorf("2x tick = %g", got)
	}
}

func TestToggleReset(t *testing.T) {
	c := New()
	c.Toggle()
	if !c.Running() {
		t.Fatal("toggle should start")
	}
	c.Tick(frame)
	c.Reset()
	if c.Elapsed() != 0 {
		t.Error("reset should zero elapsed")
	}
	if !c.Running() {
		t.Error("reset must not change running")
	}
	c.Toggle()
	if c.Running() {
		t.Error("toggle should pause")
	}
}

func TestLoopStopsOnFalse(t *testing.T) {
	l := NewLoop(1000)
	n := 0
	err := l.Run(context.Background(), func(d time.Duration) bool {
		n++
		return n < 5
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if n != 5 {
		t.Errorf("frames = %d, want 5", n)
	}
}

func TestLoopCancel(t *testing.T) {
	l := NewLoop(1000)
	ctx, cancel := context.WithCancel(context.Background())
	frames := 0
	err := l.Run(ctx, func(d time.Duration) bool {
		frames++
		if frames == 3 {
			cancel()
		}
		return true
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestLoopDeltaFromNow(t *testing.T) {
	base := time.Unix(0, 0)
	calls := 0
	l := &Loop{FPS: 1000, Now: func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * 20 * time.Millisecond)
	}}
	var got []time.Duration
	_ = l.Run(context.Background(), func(d time.Duration) bool {
		got = append(got, d)
		return len(got) < 3
	})
	for _, d := range got {
		if d != 20*time.Millisecond {
			t.Errorf("delta = %v, want 20ms", d)
		}
	}
}
