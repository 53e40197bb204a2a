package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/pointerquest/internal/clock"
	"github.com/san-kum/pointerquest/internal/lessons"
	"github.com/san-kum/pointerquest/internal/metrics"
)

// RunConfig describes a headless run: fixed frame deltas until Duration
// simulated seconds have elapsed.
type RunConfig struct {
	Duration float64
	Dt       time.Duration
	Speed    float64
	// ValidateGraph stops the run on the first unrenderable graph.
	ValidateGraph bool
}

func (c RunConfig) validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidRun, c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidRun, c.Duration)
	}
	return nil
}

type Result struct {
	Lesson   string
	Scenario string
	Times    []float64
	Records  []metrics.Record
	Frames   uint64
	Wall     time.Duration
}

// Run drives inst from its current state until cfg.Duration is reached,
// collecting every generated record. The instance is left paused.
func Run(ctx context.Context, inst *Instance, cfg RunConfig) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Speed != 0 {
		inst.SetSpeed(cfg.Speed)
	}
	inst.validate = inst.validate || cfg.ValidateGraph

	// Fixed deltas are never stalls; a coarse Dt must not be capped or the
	// recorded step drifts from cfg.Dt.
	if prev := inst.clock.MaxStep(); cfg.Dt > prev {
		inst.clock.SetMaxStep(cfg.Dt)
		defer inst.clock.SetMaxStep(prev)
	}

	res := &Result{
		Lesson:   inst.lesson.ID,
		Scenario: inst.scenario,
		Times:    []float64{inst.rec.Time},
		Records:  []metrics.Record{inst.rec},
	}

	start := time.Now()
	inst.Start()
	defer inst.Pause()

	for inst.Elapsed() < cfg.Duration {
		select {
		case <-ctx.Done():
			res.Wall = time.Since(start)
			return res, ctx.Err()
		default:
		}

		inst.Frame(cfg.Dt)
		if err := inst.Err(); err != nil && cfg.ValidateGraph {
			res.Wall = time.Since(start)
			return res, err
		}
		res.Times = append(res.Times, inst.rec.Time)
		res.Records = append(res.Records, inst.rec)
		res.Frames++
	}
	res.Wall = time.Since(start)
	return res, nil
}

// Job names one lesson scenario for [RunAll].
type Job struct {
	Lesson   *lessons.Lesson
	Scenario string
}

// RunAll runs every job on its own instance, at most workers at a time.
// Results keep the order of jobs. The first error cancels the rest.
func RunAll(ctx context.Context, jobs []Job, cfg RunConfig, workers int) ([]*Result, error) {
	results := make([]*Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for idx, job := range jobs {
		g.Go(func() error {
			inst, err := New(job.Lesson, Options{
				Scenario:      job.Scenario,
				MaxStep:       max(cfg.Dt, clock.DefaultMaxStep),
				ValidateGraph: cfg.ValidateGraph,
			})
			if err != nil {
				return err
			}
			results[idx], err = Run(ctx, inst, cfg)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// AllJobs lists every scenario of every lesson in r.
func AllJobs(r *lessons.Registry) []Job {
	var jobs []Job
	for _, l := range r.List() {
		for _, id := range l.ScenarioIDs() {
			jobs = append(jobs, Job{Lesson: l, Scenario: id})
		}
	}
	return jobs
}
