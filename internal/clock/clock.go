// Package clock supplies the per-frame elapsed time that drives a lesson.
//
// A [Clock] only advances while running and never by more than its max step
// per tick, so a host that stalls (hidden tab, suspended terminal) resumes
// where it left off instead of jumping ahead. [Loop] is the host adapter for
// callers without their own frame callback.
package clock

import (
	"math"
	"time"
)

const (
	MinSpeed       = 0.1
	MaxSpeed       = 5.0
	DefaultMaxStep = 100 * time.Millisecond
)

// Clock accumulates elapsed simulation seconds. It is not safe for
// concurrent use; each lesson instance owns one.
type Clock struct {
	elapsed float64
	running bool
	speed   float64
	maxStep time.Duration
}

type Option func(*Clock)

// WithSpeed sets the time multiplier, clamped to [MinSpeed, MaxSpeed].
func WithSpeed(s float64) Option { return func(c *Clock) { c.SetSpeed(s) } }

// WithMaxStep caps how much wall time a single tick may consume.
func WithMaxStep(d time.Duration) Option {
	return func(c *Clock) { c.SetMaxStep(d) }
}

func New(opts ...Option) *Clock {
	c := &Clock{speed: 1, maxStep: DefaultMaxStep}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Tick advances the clock by delta (scaled by speed, capped at the max step)
// when running and returns the elapsed time in seconds. A paused clock
// returns its held value.
func (c *Clock) Tick(delta time.Duration) float64 {
	if !c.running {
		return c.elapsed
	}
	if delta < 0 {
		delta = 0
	}
	if delta > c.maxStep {
		delta = c.maxStep
	}
	c.elapsed += delta.Seconds() * c.speed
	return c.elapsed
}

func (c *Clock) Start()                 { c.running = true }
func (c *Clock) Pause()                 { c.running = false }
func (c *Clock) Toggle()                { c.running = !c.running }
func (c *Clock) Running() bool          { return c.running }
func (c *Clock) Elapsed() float64       { return c.elapsed }
func (c *Clock) Reset()                 { c.elapsed = 0 }
func (c *Clock) Speed() float64         { return c.speed }
func (c *Clock) MaxStep() time.Duration { return c.maxStep }

// SetMaxStep replaces the per-tick cap; non-positive values are ignored.
func (c *Clock) SetMaxStep(d time.Duration) {
	if d > 0 {
		c.maxStep = d
	}
}

// SetSpeed changes the multiplier, clamped to [MinSpeed, MaxSpeed].
func (c *Clock) SetSpeed(s float64) {
	if math.IsNaN(s) {
		s = 1
	}
	c.speed = min(max(s, MinSpeed), MaxSpeed)
}
