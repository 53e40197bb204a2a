package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/san-kum/pointerquest/internal/analysis"
	"github.com/san-kum/pointerquest/internal/automation"
	"github.com/san-kum/pointerquest/internal/engine"
	"github.com/san-kum/pointerquest/internal/export"
	"github.com/san-kum/pointerquest/internal/viz"
)

func analyzeRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := openRuns(cfg)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}

	n := len(series.Times)
	if n < 2 {
		return fmt.Errorf("run %s has too few samples", meta.ID)
	}
	// lesson seconds per sample
	step := (series.Times[n-1] - series.Times[0]) / float64(n-1)

	fmt.Printf("run: %s (%s / %s), %s samples\n\n", meta.ID, meta.Lesson, meta.Scenario, humanize.Comma(int64(n)))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tDOMINANT\tPERIOD\tMIN\tMAX\tMEAN")
	for _, name := range series.Columns {
		values, _ := series.Column(name)
		dom := "-"
		if f, ok := analysis.Dominant(values, step); ok {
			dom = fmt.Sprintf("%.3f Hz", f)
		}
		per := "-"
		if p, ok := analysis.Period(series.Times, values); ok {
			per = fmt.Sprintf("%.2fs", p)
		}
		s := meta.Metrics[name]
		fmt.Fprintf(w, "%s\t%s\t%s\t%.3g\t%.3g\t%.3g\n", name, dom, per, s.Min, s.Max, s.Mean)
	}
	return w.Flush()
}

func phasePlot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	series, err := openRuns(cfg).LoadSeries(args[0])
	if err != nil {
		return err
	}
	xs, ok := series.Column(args[1])
	if !ok {
		return fmt.Errorf("run %s has no metric %q", args[0], args[1])
	}
	ys, ok := series.Column(args[2])
	if !ok {
		return fmt.Errorf("run %s has no metric %q", args[0], args[2])
	}
	fmt.Printf("%s (y) against %s (x)\n\n", args[2], args[1])
	fmt.Print(analysis.Portrait(xs, ys, termWidth()-4, plotHeight*2))
	return nil
}

func runTour(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr, "tour")
	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	tour, err := automation.LoadTour(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting tour", "name", tour.Name, "steps", len(tour.Steps))
	results, err := automation.RunTour(ctx, tour, reg, func(i int, s automation.Step) {
		logger.Info("step", "n", i+1, "lesson", s.Lesson, "scenario", s.Scenario, "duration", s.Duration)
	})
	if err != nil {
		return err
	}

	st := openRuns(cfg)
	if err := st.Init(); err != nil {
		return err
	}
	for _, r := range results {
		if !r.Step.Save {
			continue
		}
		id, err := st.Save(r.Result, r.Config)
		if err != nil {
			return err
		}
		fmt.Println(id)
	}
	return nil
}

func probeLessons(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	list := reg.List()
	if len(args) == 1 {
		l, err := reg.Get(args[0])
		if err != nil {
			return err
		}
		list = list[:0]
		list = append(list, l)
	}

	pc := automation.ProbeConfig{Trials: probeN, MaxTime: probeMax, Seed: probeSeed}
	var all []automation.ProbeResult
	for _, l := range list {
		res, err := automation.Probe(cmd.Context(), l, pc)
		if err != nil {
			return err
		}
		all = append(all, res...)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LESSON\tSCENARIO\tTRIALS\tVIOLATIONS\tFIRST")
	for _, r := range all {
		first := ""
		if !r.OK() {
			first = r.Violations[0]
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", r.Lesson, r.Scenario, humanize.Comma(int64(r.Trials)), len(r.Violations), first)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if _, failed := automation.Summarize(all); failed > 0 {
		return fmt.Errorf("%d scenarios out of domain", failed)
	}
	return nil
}

func snapshotLesson(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	l, err := reg.Get(args[0])
	if err != nil {
		return err
	}
	inst, err := engine.New(l, mountOptions(cfg))
	if err != nil {
		return err
	}
	if snapshotAt > 0 {
		rc := engine.RunConfig{Duration: snapshotAt, Dt: time.Second / time.Duration(cfg.Record.FPS), Speed: 1}
		if _, err := engine.Run(cmd.Context(), inst, rc); err != nil {
			return err
		}
	}
	svg := export.SceneToSVG(inst.Graph(), 80, 32, viz.GetTheme(cfg.Theme))
	return writeOut(svg)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	series, err := openRuns(cfg).LoadSeries(args[0])
	if err != nil {
		return err
	}
	values, ok := series.Column(args[1])
	if !ok {
		return fmt.Errorf("run %s has no metric %q", args[0], args[1])
	}
	return writeOut(export.SeriesToSVG(series.Times, values, 800, 300, "#4fc3f7"))
}

func writeOut(s string) error {
	if outFile == "" || outFile == "-" {
		_, err := fmt.Println(s)
		return err
	}
	return os.WriteFile(outFile, []byte(s+"\n"), 0o644)
}
