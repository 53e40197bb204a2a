package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/san-kum/pointerquest/internal/config"
	"github.com/san-kum/pointerquest/internal/engine"
	"github.com/san-kum/pointerquest/internal/metrics"
	"github.com/san-kum/pointerquest/internal/remote"
	"github.com/san-kum/pointerquest/internal/storage"
)

func tuiLogFile(cfg *config.Config) (*os.File, error) {
	dir := filepath.Dir(config.ExpandPath(cfg.DBPath))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "pointerquest.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// termWidth falls back to 80 columns when stdout is not a terminal.
func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

func listLessons(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	lang := config.ResolveLanguage(cfg.Language)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LESSON\tSCENARIO\tTITLE\tMETRICS")
	for _, l := range reg.List() {
		for i, sc := range l.Scenarios {
			id, title := "", sc.Label.In(lang)
			if i == 0 {
				id = l.ID
				title = l.Title.In(lang) + ": " + title
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", id, sc.ID, title, len(sc.Metrics))
		}
	}
	return w.Flush()
}

func recordRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr, "record")
	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	st := openRuns(cfg)
	if err := st.Init(); err != nil {
		return err
	}

	rc := engine.RunConfig{
		Duration:      cfg.Record.Duration,
		Dt:            time.Second / time.Duration(cfg.Record.FPS),
		Speed:         cfg.Speed,
		ValidateGraph: true,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var jobs []engine.Job
	switch {
	case allRuns:
		jobs = engine.AllJobs(reg)
	case len(args) == 1:
		l, err := reg.Get(args[0])
		if err != nil {
			return err
		}
		jobs = []engine.Job{{Lesson: l, Scenario: cfg.Scenario}}
	case cfg.Lesson != "":
		l, err := reg.Get(cfg.Lesson)
		if err != nil {
			return err
		}
		jobs = []engine.Job{{Lesson: l, Scenario: cfg.Scenario}}
	default:
		return fmt.Errorf("record needs a lesson or --all")
	}

	logger.Info("recording", "runs", len(jobs), "duration", rc.Duration, "dt", rc.Dt)
	results, err := engine.RunAll(ctx, jobs, rc, workers)
	if err != nil {
		return err
	}
	for _, res := range results {
		id, err := st.Save(res, rc)
		if err != nil {
			return err
		}
		logger.Info("saved", "run", id, "frames", res.Frames, "wall", res.Wall.Round(time.Microsecond))
		fmt.Println(id)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	runs, err := openRuns(cfg).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no recordings found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLESSON\tSCENARIO\tRECORDED\tDURATION\tFRAMES\tSPEED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1fs\t%s\t%.2gx\n",
			run.ID,
			run.Lesson,
			run.Scenario,
			humanize.Time(run.Timestamp),
			run.Duration,
			humanize.Comma(int64(run.Frames)),
			run.Speed,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
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
	if len(series.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	columns := series.Columns
	if len(args) == 2 {
		if _, ok := series.Column(args[1]); !ok {
			return fmt.Errorf("run %s has no metric %q (have %s)", meta.ID, args[1], strings.Join(series.Columns, ", "))
		}
		columns = []string{args[1]}
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("lesson: %s / %s\n", meta.Lesson, meta.Scenario)
	fmt.Printf("samples: %s\n\n", humanize.Comma(int64(len(series.Times))))

	width := termWidth() - 12
	for _, name := range columns {
		data, _ := series.Column(name)
		stats := meta.Metrics[name]
		graph := asciigraph.Plot(data,
			asciigraph.Height(plotHeight),
			asciigraph.Width(width),
			asciigraph.Caption(fmt.Sprintf("%s  min %.3g  max %.3g  mean %.3g", name, stats.Min, stats.Max, stats.Mean)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	series, err := openRuns(cfg).LoadSeries(args[0])
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, series)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return openRuns(cfg).ExportJSON(os.Stdout, args[0])
}

func serveSSH(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr, "pointerquest-ssh")
	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	store := openProgress(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	srv, err := remote.NewSSHServer(reg, store, remote.SSHConfig{
		Addr:         cfg.Serve.SSHAddr,
		HostKeyPath:  cfg.Serve.HostKey,
		IdleTimeout:  cfg.Serve.IdleTimeout,
		PasswordHash: cfg.Serve.PasswordHash,
		FPS:          cfg.FPS,
		Theme:        cfg.Theme,
		Mount:        mountOptions(cfg),
	}, logger)
	if err != nil {
		return err
	}
	return srv.ListenAndServe()
}

func serveStream(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr, "pointerquest-ws")
	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	store := openProgress(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := remote.NewStreamServer(reg, store, remote.StreamConfig{
		Addr:    cfg.Serve.StreamAddr,
		Origins: cfg.Serve.Origins,
		FPS:     cfg.FPS,
		Mount:   mountOptions(cfg),
	}, logger)
	return srv.ListenAndServe(ctx)
}

func listSessions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr, "sessions")
	store := openProgress(cfg, logger)
	if store == nil {
		return fmt.Errorf("no progress database at %s", cfg.DBPath)
	}
	defer store.Close()
	ctx := context.Background()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if showStats {
		stats, err := store.Stats(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "LESSON\tSESSIONS\tFRAMES\tLESSON TIME\tLAST SEEN")
		for _, s := range stats {
			fmt.Fprintf(w, "%s\t%d\t%s\t%.1fs\t%s\n",
				s.Lesson, s.Sessions, humanize.Comma(int64(s.Frames)), s.Elapsed, humanize.Time(s.LastSeen))
		}
		return w.Flush()
	}

	sessions, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("no sessions recorded")
		return nil
	}
	fmt.Fprintln(w, "STARTED\tLESSON\tSCENARIO\tHOST\tLENGTH\tFRAMES\tSWITCHES")
	for _, s := range sessions {
		length := "open"
		if !s.EndedAt.IsZero() {
			length = s.Duration().Round(time.Second).String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			humanize.Time(s.StartedAt), s.Lesson, s.Scenario, s.Host, length, humanize.Comma(int64(s.Frames)), s.Switches)
	}
	return w.Flush()
}

// benchGenerate times metric generation alone, outside any host.
func benchGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	if iterations <= 0 {
		return fmt.Errorf("-n must be positive")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LESSON\tSCENARIO\tRECORDS\tTOTAL\tPER RECORD")
	var sink metrics.Record
	for _, l := range reg.List() {
		gen := metrics.NewGenerator(l)
		for _, id := range l.ScenarioIDs() {
			start := time.Now()
			for i := 0; i < iterations; i++ {
				sink = gen.Generate(id, float64(i)/60)
			}
			total := time.Since(start)
			fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%v\n",
				l.ID, id, humanize.Comma(int64(iterations)), total.Round(time.Microsecond), total/time.Duration(iterations))
		}
	}
	_ = sink
	return w.Flush()
}

func hashPassword(cmd *cobra.Command, args []string) error {
	var pw string
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(os.Stderr, "password: ")
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return err
		}
		pw = string(b)
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return err
		}
		pw = strings.TrimRight(line, "\r\n")
	}
	h, err := remote.HashPassword(pw)
	if err != nil {
		return err
	}
	fmt.Println(h)
	return nil
}
