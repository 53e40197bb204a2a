// Package automation runs lessons without a host: scripted tours through
// several scenarios, and randomized probes of the metric generator.
package automation

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/pointerquest/internal/clock"
	"github.com/san-kum/pointerquest/internal/engine"
	"github.com/san-kum/pointerquest/internal/lessons"
)

// Tour is a scripted sequence of headless lesson runs.
type Tour struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is one run of a tour. Zero Speed and FPS fall back to 1 and 60.
type Step struct {
	Lesson   string  `yaml:"lesson"`
	Scenario string  `yaml:"scenario"`
	Language string  `yaml:"language"`
	Speed    float64 `yaml:"speed"`
	Duration float64 `yaml:"duration"`
	FPS      int     `yaml:"fps"`
	// Save marks runs the caller should persist.
	Save bool `yaml:"save"`
}

// StepResult pairs a step with its run.
type StepResult struct {
	Step   Step
	Config engine.RunConfig
	Result *engine.Result
}

func LoadTour(path string) (*Tour, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTour(data)
}

func ParseTour(data []byte) (*Tour, error) {
	var t Tour
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse tour: %w", err)
	}
	if len(t.Steps) == 0 {
		return nil, fmt.Errorf("tour %q has no steps", t.Name)
	}
	return &t, nil
}

func (s Step) runConfig() engine.RunConfig {
	fps := s.FPS
	if fps <= 0 {
		fps = 60
	}
	return engine.RunConfig{
		Duration:      s.Duration,
		Dt:            time.Second / time.Duration(fps),
		Speed:         s.Speed,
		ValidateGraph: true,
	}
}

func (s Step) mount(r *lessons.Registry) (*engine.Instance, error) {
	l, err := r.Get(s.Lesson)
	if err != nil {
		return nil, err
	}
	opts := engine.Options{
		Scenario: s.Scenario,
		Speed:    s.Speed,
		MaxStep:  max(s.runConfig().Dt, clock.DefaultMaxStep),
	}
	if s.Language != "" {
		lang, ok := lessons.ParseLanguage(s.Language)
		if !ok {
			return nil, fmt.Errorf("%w: %s", engine.ErrUnknownLanguage, s.Language)
		}
		opts.Language = lang
	}
	return engine.New(l, opts)
}

// RunTour executes every step in order. progress, if non-nil, is called
// before each step. Results of steps completed before a failure are
// returned along with the error.
func RunTour(ctx context.Context, t *Tour, r *lessons.Registry, progress func(i int, s Step)) ([]StepResult, error) {
	results := make([]StepResult, 0, len(t.Steps))
	for i, step := range t.Steps {
		if progress != nil {
			progress(i, step)
		}
		inst, err := step.mount(r)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		cfg := step.runConfig()
		res, err := engine.Run(ctx, inst, cfg)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		results = append(results, StepResult{Step: step, Config: cfg, Result: res})
	}
	return results, nil
}
