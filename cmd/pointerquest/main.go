package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/pointerquest/internal/config"
	"github.com/san-kum/pointerquest/internal/engine"
	"github.com/san-kum/pointerquest/internal/lessons"
	"github.com/san-kum/pointerquest/internal/progress"
	"github.com/san-kum/pointerquest/internal/storage"
	"github.com/san-kum/pointerquest/internal/viz"
)

var (
	configFile string
	dataDir    string
	dbPath     string
	logLevel   string
	langFlag   string
	presetName string

	scenario  string
	fps       int
	speed     float64
	duration  float64
	catalog   string
	theme     string
	autoStart bool
	allRuns   bool
	workers   int

	addr    string
	hostKey string
	origins []string

	limit      int
	showStats  bool
	iterations int
	plotHeight int
	probeSeed  int64
	probeN     int
	probeMax   float64
	snapshotAt float64
	outFile    string
)

// main registers the commands. With no subcommand it opens the lesson
// picker in the terminal.
func main() {
	rootCmd := &cobra.Command{
		Use:           "pointerquest",
		Short:         "animated lessons on C++ memory management",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, "")
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (yaml or toml)")
	pf.StringVar(&dataDir, "data", "", "recordings directory")
	pf.StringVar(&dbPath, "db", "", "progress database path")
	pf.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&langFlag, "lang", "", "lesson language: en, es or auto")
	pf.StringVar(&presetName, "preset", "", "apply a named preset")

	rootCmd.Flags().StringVar(&theme, "theme", "", "color theme")

	lessonsCmd := &cobra.Command{
		Use:   "lessons",
		Short: "list lessons and their scenarios",
		Args:  cobra.NoArgs,
		RunE:  listLessons,
	}

	runCmd := &cobra.Command{
		Use:   "run [lesson]",
		Short: "open a lesson in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, args[0])
		},
	}
	runCmd.Flags().StringVar(&scenario, "scenario", "", "starting scenario")
	runCmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "frames per second")
	runCmd.Flags().Float64Var(&speed, "speed", config.DefaultSpeed, "time multiplier (0.1 to 5)")
	runCmd.Flags().StringVar(&catalog, "catalog", "", "extra lesson catalog (yaml)")
	runCmd.Flags().StringVar(&theme, "theme", "", "color theme")
	runCmd.Flags().BoolVar(&autoStart, "start", false, "start playing immediately")

	recordCmd := &cobra.Command{
		Use:   "record [lesson]",
		Short: "record a headless run to the data directory",
		Args:  cobra.RangeArgs(0, 1),
		RunE:  recordRun,
	}
	recordCmd.Flags().StringVar(&scenario, "scenario", "", "scenario to record")
	recordCmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "recorded frames per second")
	recordCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "lesson seconds to record")
	recordCmd.Flags().Float64Var(&speed, "speed", config.DefaultSpeed, "time multiplier")
	recordCmd.Flags().StringVar(&catalog, "catalog", "", "extra lesson catalog (yaml)")
	recordCmd.Flags().BoolVar(&allRuns, "all", false, "record every scenario of every lesson")
	recordCmd.Flags().IntVar(&workers, "workers", 4, "parallel runs with --all")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recordings",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id] [metric]",
		Short: "plot a recording",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotHeight, "height", 10, "plot height in rows")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write a recording as CSV to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write a recording as JSON to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve lessons over SSH",
		Args:  cobra.NoArgs,
		RunE:  serveSSH,
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (default "+config.DefaultSSHAddr+")")
	serveCmd.Flags().StringVar(&hostKey, "host-key", "", "host key path")
	serveCmd.Flags().StringVar(&catalog, "catalog", "", "extra lesson catalog (yaml)")

	streamCmd := &cobra.Command{
		Use:   "stream",
		Short: "stream lesson frames over WebSocket",
		Args:  cobra.NoArgs,
		RunE:  serveStream,
	}
	streamCmd.Flags().StringVar(&addr, "addr", "", "listen address (default "+config.DefaultWSAddr+")")
	streamCmd.Flags().StringSliceVar(&origins, "origin", nil, "allowed browser origins")
	streamCmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "frames per second")
	streamCmd.Flags().StringVar(&catalog, "catalog", "", "extra lesson catalog (yaml)")

	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "show recent lesson sessions",
		Args:  cobra.NoArgs,
		RunE:  listSessions,
	}
	sessionsCmd.Flags().IntVar(&limit, "limit", 20, "sessions to show")
	sessionsCmd.Flags().BoolVar(&showStats, "stats", false, "show totals per lesson instead")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time metric generation for every scenario",
		Args:  cobra.NoArgs,
		RunE:  benchGenerate,
	}
	benchCmd.Flags().IntVar(&iterations, "n", 100000, "records per scenario")

	passwdCmd := &cobra.Command{
		Use:   "passwd",
		Short: "print a bcrypt hash for serve.password_hash",
		Args:  cobra.NoArgs,
		RunE:  hashPassword,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list config presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Println(p)
			}
		},
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and period of every metric in a recording",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id] [metric_x] [metric_y]",
		Short: "plot one metric against another",
		Args:  cobra.ExactArgs(3),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&plotHeight, "height", 10, "half the plot height in rows")

	tourCmd := &cobra.Command{
		Use:   "tour [file]",
		Short: "run a scripted tour of lessons (yaml)",
		Args:  cobra.ExactArgs(1),
		RunE:  runTour,
	}
	tourCmd.Flags().StringVar(&catalog, "catalog", "", "extra lesson catalog (yaml)")

	probeCmd := &cobra.Command{
		Use:   "probe [lesson]",
		Short: "check lesson formulas at random times",
		Args:  cobra.RangeArgs(0, 1),
		RunE:  probeLessons,
	}
	probeCmd.Flags().IntVar(&probeN, "n", 1000, "samples per scenario")
	probeCmd.Flags().Float64Var(&probeMax, "max-time", 3600, "latest lesson time sampled")
	probeCmd.Flags().Int64Var(&probeSeed, "seed", 0, "random seed (0 picks one)")
	probeCmd.Flags().StringVar(&catalog, "catalog", "", "extra lesson catalog (yaml)")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [lesson]",
		Short: "render a lesson scene to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  snapshotLesson,
	}
	snapshotCmd.Flags().StringVar(&scenario, "scenario", "", "scenario to render")
	snapshotCmd.Flags().Float64Var(&snapshotAt, "at", 0, "lesson time to render")
	snapshotCmd.Flags().StringVar(&theme, "theme", "", "color theme")
	snapshotCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id] [metric]",
		Short: "draw one metric of a recording as SVG",
		Args:  cobra.ExactArgs(2),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	rootCmd.AddCommand(lessonsCmd, runCmd, recordCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd,
		serveCmd, streamCmd, sessionsCmd, benchCmd, passwdCmd, presetsCmd,
		analyzeCmd, phaseCmd, tourCmd, probeCmd, snapshotCmd, exportSVGCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig resolves the config file, the preset and the flags that were
// set, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, err
		}
	}
	if presetName != "" && !cfg.ApplyPreset(presetName) {
		return nil, fmt.Errorf("unknown preset %q (available: %v)", presetName, config.ListPresets())
	}

	flags := cmd.Flags()
	set := func(name string, fn func()) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			fn()
		}
	}
	set("data", func() { cfg.DataDir = dataDir })
	set("db", func() { cfg.DBPath = dbPath })
	set("log-level", func() { cfg.LogLevel = logLevel })
	set("lang", func() { cfg.Language = langFlag })
	set("scenario", func() { cfg.Scenario = scenario })
	set("fps", func() { cfg.FPS = fps; cfg.Record.FPS = fps })
	set("speed", func() { cfg.Speed = speed })
	set("time", func() { cfg.Record.Duration = duration })
	set("catalog", func() { cfg.Catalog = catalog })
	set("theme", func() { cfg.Theme = theme })
	set("host-key", func() { cfg.Serve.HostKey = hostKey })
	set("origin", func() { cfg.Serve.Origins = origins })
	if cmd.Name() == "serve" {
		set("addr", func() { cfg.Serve.SSHAddr = addr })
	}
	if cmd.Name() == "stream" {
		set("addr", func() { cfg.Serve.StreamAddr = addr })
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadRegistry(cfg *config.Config) (*lessons.Registry, error) {
	r := lessons.Default()
	if cfg.Catalog != "" {
		if _, err := lessons.LoadInto(r, config.ExpandPath(cfg.Catalog)); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// openProgress opens the session database, or returns nil with a warning
// so that lessons still run without it.
func openProgress(cfg *config.Config, logger *log.Logger) *progress.Store {
	store, err := progress.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open progress database", "path", cfg.DBPath, "error", err)
		return nil
	}
	return store
}

func openRuns(cfg *config.Config) *storage.Store {
	return storage.New(config.ExpandPath(cfg.DataDir))
}

func mountOptions(cfg *config.Config) engine.Options {
	return engine.Options{
		Scenario: cfg.Scenario,
		Language: config.ResolveLanguage(cfg.Language),
		Speed:    cfg.Speed,
		MaxStep:  cfg.MaxStep,
	}
}

func runTUI(cmd *cobra.Command, lesson string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logFile, err := tuiLogFile(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := cfg.NewLogger(logFile, "pointerquest")

	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	if lesson == "" {
		lesson = cfg.Lesson
	}
	opts := viz.Options{
		FPS:       cfg.FPS,
		Theme:     cfg.Theme,
		AutoStart: autoStart,
		Host:      "tui",
		Logger:    logger,
	}
	if store := openProgress(cfg, logger); store != nil {
		defer store.Close()
		opts.Recorder = store
	}
	app, err := viz.NewApp(reg, mountOptions(cfg), opts, lesson)
	if err != nil {
		return err
	}
	return viz.Run(app)
}
