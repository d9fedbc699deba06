package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"narrationgen/pkg/config"
	"narrationgen/pkg/db"
	"narrationgen/pkg/db/maintenance"
	"narrationgen/pkg/installer"
	"narrationgen/pkg/logging"
	"narrationgen/pkg/narration"
	"narrationgen/pkg/probe"
	"narrationgen/pkg/progress"
	"narrationgen/pkg/store"
	"narrationgen/pkg/tracker"
	"narrationgen/pkg/tts"
	"narrationgen/pkg/tts/azure"
	"narrationgen/pkg/tts/command"
	"narrationgen/pkg/tts/edgetts"
	"narrationgen/pkg/tts/elevenlabs"
	"narrationgen/pkg/version"
)

const defaultConfigPath = "configs/narrationgen.yaml"

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const lastRunStateKey = "last_run_id"

type options struct {
	video       string
	output      string
	configPath  string
	engine      string
	installDeps bool
	initConfig  bool
	strict      bool
	progress    bool
	version     bool
	history     int
	lastRun     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	flags := flag.NewFlagSet("narrationgen", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&opts.video, "video", "", "Path to the source video (required)")
	flags.StringVar(&opts.output, "output", "", "Directory receiving intro_<lang>.mp3 files (required)")
	flags.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to the YAML config file")
	flags.StringVar(&opts.engine, "engine", "", "Override tts.engine (edge-tts-cli, edge-tts, azure-speech, elevenlabs)")
	flags.BoolVar(&opts.installDeps, "install-deps", false, "Install the Python dependencies with pip and exit")
	flags.BoolVar(&opts.initConfig, "init-config", false, "Generate default config file and exit")
	flags.BoolVar(&opts.strict, "strict", false, "Exit with status 1 if any language failed")
	flags.BoolVar(&opts.progress, "progress", false, "Show a progress bar on stderr")
	flags.BoolVar(&opts.version, "version", false, "Print version and exit")
	flags.IntVar(&opts.history, "history", 0, "List the N most recent jobs from the history db and exit")
	flags.BoolVar(&opts.lastRun, "last-run", false, "List the jobs of the last recorded run and exit")
	flags.Usage = func() {
		fmt.Fprintln(flags.Output(), "Usage: narrationgen --video <path> --output <dir> [options]")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if flags.NArg() > 0 {
		flags.Usage()
		return nil, fmt.Errorf("unexpected arguments: %v", flags.Args())
	}

	if opts.version || opts.initConfig || opts.installDeps || opts.history > 0 || opts.lastRun {
		return opts, nil
	}
	if opts.video == "" || opts.output == "" {
		fmt.Fprintln(stderr, "error: the following arguments are required: --video, --output")
		flags.Usage()
		return nil, errors.New("missing required arguments")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		return exitUsage
	}

	if opts.version {
		fmt.Fprintf(stdout, "narrationgen %s\n", version.Version)
		return exitOK
	}

	if opts.initConfig {
		if err := config.GenerateDefault(opts.configPath); err != nil {
			fmt.Fprintf(stderr, "Failed to generate config: %v\n", err)
			return exitError
		}
		fmt.Fprintf(stdout, "Config file generated: %s\n", opts.configPath)
		return exitOK
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(stderr, "Warning: failed to load .env: %v\n", err)
	}

	appCfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "CRITICAL ERROR: failed to load config: %v\n", err)
		return exitError
	}
	if opts.engine != "" {
		appCfg.TTS.Engine = opts.engine
		if err := appCfg.Validate(); err != nil {
			fmt.Fprintf(stderr, "CRITICAL ERROR: %v\n", err)
			return exitError
		}
	}

	logging.Console = stdout
	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		fmt.Fprintf(stderr, "CRITICAL ERROR: failed to initialize logging: %v\n", err)
		return exitError
	}
	defer cleanupLogs()

	if opts.history > 0 || opts.lastRun {
		if err := showHistory(ctx, appCfg, opts, stdout); err != nil {
			fmt.Fprintf(stderr, "CRITICAL ERROR: %v\n", err)
			return exitError
		}
		return exitOK
	}

	if opts.installDeps {
		if err := installer.InstallDependencies(ctx, appCfg.Installer.Python, appCfg.Installer.Packages, stdout, stderr); err != nil {
			slog.Error("Dependency installation failed", "error", err)
			return exitError
		}
		return exitOK
	}

	if err := generate(ctx, appCfg, opts, stdout, stderr); err != nil {
		if errors.Is(err, errFailures) {
			return exitError
		}
		fmt.Fprintf(stderr, "CRITICAL ERROR: %v\n", err)
		return exitError
	}
	return exitOK
}

// errFailures marks a completed --strict run with failed languages.
var errFailures = errors.New("one or more languages failed")

func generate(ctx context.Context, appCfg *config.Config, opts *options, stdout, stderr io.Writer) error {
	tts.SetLogPath(appCfg.History.TTS.Path)
	tts.SetEnabled(appCfg.History.TTS.Enabled)

	slog.Info("narrationgen started", "version", version.Version, "engine", appCfg.TTS.Engine)

	tr := tracker.New()
	provider, probes, err := newProvider(appCfg, tr)
	if err != nil {
		return err
	}

	probes = append(probes, probe.OutputDir(opts.output))
	if err := probe.AnalyzeResults(probe.Run(ctx, probes)); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	table := narration.NewTable(appCfg.Narration)
	gen := narration.NewGenerator(table, provider)
	gen.SetTracker(tr)
	runID := uuid.NewString()
	gen.SetRunID(func() string { return runID })

	var st store.Store
	if appCfg.History.DB.Enabled {
		dbConn, s, err := initDB(appCfg)
		if err != nil {
			return err
		}
		defer dbConn.Close()
		st = s
		maintenance.Run(ctx, st, dbConn, appCfg.History.DB.Retention.Std(), time.Now())
		gen.SetRecorder(st)
	}

	if opts.progress {
		gen.SetListener(progress.New(stderr, table.Len()))
	}

	report, err := gen.Generate(ctx, opts.video, opts.output)
	if st != nil {
		if serr := st.SetState(context.WithoutCancel(ctx), lastRunStateKey, runID); serr != nil {
			slog.Warn("Failed to store last run", "error", serr)
		}
	}
	if err != nil {
		return fmt.Errorf("interrupted: %w", err)
	}

	printSummary(stdout, report, tr)

	if opts.strict && len(report.Failed()) > 0 {
		return errFailures
	}
	return nil
}

// newProvider builds the configured engine along with its non-critical startup probes.
func newProvider(cfg *config.Config, tr *tracker.Tracker) (tts.Provider, []probe.Probe, error) {
	switch cfg.TTS.Engine {
	case config.EngineCommand:
		p := command.NewProvider(cfg.TTS.Command, tr)
		return p, []probe.Probe{probe.Tool(p.Binary(), p.Available)}, nil
	case config.EngineEdgeTTS:
		p := edgetts.NewProvider(cfg.TTS.EdgeTTS, tr)
		return p, []probe.Probe{probe.Credentials(cfg.TTS.Engine, p.Configured)}, nil
	case config.EngineAzure:
		p := azure.NewProvider(cfg.TTS.AzureSpeech, tr)
		return p, []probe.Probe{probe.Credentials(cfg.TTS.Engine, p.Configured)}, nil
	case config.EngineElevenLabs:
		p := elevenlabs.NewProvider(cfg.TTS.ElevenLabs, tr)
		return p, []probe.Probe{probe.Credentials(cfg.TTS.Engine, p.Configured)}, nil
	default:
		return nil, nil, fmt.Errorf("unknown tts engine %q", cfg.TTS.Engine)
	}
}

func initDB(appCfg *config.Config) (*db.DB, store.Store, error) {
	dbConn, err := db.Init(appCfg.History.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return dbConn, store.NewSQLiteStore(dbConn), nil
}

// showHistory prints recorded jobs. It never creates the database.
func showHistory(ctx context.Context, appCfg *config.Config, opts *options, w io.Writer) error {
	path := appCfg.History.DB.Path
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(w, "No job history at %s\n", path)
			return nil
		}
		return fmt.Errorf("failed to open history: %w", err)
	}

	dbConn, st, err := initDB(appCfg)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	var jobs []store.JobRecord
	if opts.lastRun {
		runID, found := st.GetState(ctx, lastRunStateKey)
		if !found {
			fmt.Fprintln(w, "No runs recorded")
			return nil
		}
		jobs, err = st.ListRunJobs(ctx, runID)
	} else {
		jobs, err = st.ListJobs(ctx, opts.history)
	}
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}

	for _, j := range jobs {
		line := fmt.Sprintf("%s  %-9s %-4s %-20s %s", j.CreatedAt.Local().Format("2006-01-02 15:04:05"), j.Status, j.Language, j.Engine, j.OutputPath)
		if j.Error != "" {
			line += "  (" + j.Error + ")"
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func printSummary(w io.Writer, report *narration.Report, tr *tracker.Tracker) {
	fmt.Fprintln(w)
	for _, o := range report.Outcomes {
		switch o.Status {
		case narration.StatusFailed:
			fmt.Fprintf(w, "  %-9s %s (%v)\n", o.Status, o.Job.OutputPath, o.Err)
		case narration.StatusGenerated:
			fmt.Fprintf(w, "  %-9s %s (%v)\n", o.Status, o.Job.OutputPath, o.Duration.Round(time.Millisecond))
		default:
			fmt.Fprintf(w, "  %-9s %s\n", o.Status, o.Job.OutputPath)
		}
	}
	for _, engine := range tr.Engines() {
		s := tr.Snapshot()[engine]
		slog.Debug("Engine usage", "engine", engine, "generated", s.Generated, "failed", s.Failed, "skipped", s.Skipped)
	}
	fmt.Fprintf(w, "Files saved in: %s\n", report.OutputDir)
}
