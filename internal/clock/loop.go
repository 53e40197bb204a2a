package clock

import (
	"context"
	"time"
)

// Loop calls a frame function at a fixed rate with the measured wall delta.
type Loop struct {
	FPS int
	Now func() time.Time
}

func NewLoop(fps int) *Loop {
	if fps <= 0 {
		fps = 60
	}
	return &Loop{FPS: fps, Now: time.Now}
}

// Interval is the target time between frames.
func (l *Loop) Interval() time.Duration {
	fps := l.FPS
	if fps <= 0 {
		fps = 60
	}
	return time.Second / time.Duration(fps)
}

// Run blocks, invoking frame once per tick until ctx is done or frame
// returns false. It returns ctx.Err() on cancellation and nil otherwise.
func (l *Loop) Run(ctx context.Context, frame func(delta time.Duration) bool) error {
	now := l.Now
	if now == nil {
		now = time.Now
	}
	ticker := time.NewTicker(l.Interval())
	defer ticker.Stop()

	last := now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t := now()
			delta := t.Sub(last)
			last = t
			if !frame(delta) {
				return nil
			}
		}
	}
}
