// Package main provides the CLI entrypoint for keydrill.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/keydrill/internal/config"
	"github.com/verte-zerg/keydrill/internal/drill"
	"github.com/verte-zerg/keydrill/internal/eventlog"
	"github.com/verte-zerg/keydrill/internal/keyinput"
	"github.com/verte-zerg/keydrill/internal/model"
	"github.com/verte-zerg/keydrill/internal/scorer"
	"github.com/verte-zerg/keydrill/internal/stats"
	"github.com/verte-zerg/keydrill/internal/statsui"
	"github.com/verte-zerg/keydrill/internal/tui"
	"github.com/verte-zerg/keydrill/internal/universe"
)

const (
	defaultRounds      = 20
	defaultNext        = 3
	defaultCurveWindow = 20
	defaultTrendWidth  = 60
	defaultTopChars    = 5
)

var (
	drillRounds        int
	drillNext          int
	drillErrorWeight   float64
	drillLatencyWeight float64
	drillBackend       string
	drillFlush         bool
	drillPlain         bool

	pathChars   string
	pathLog     string
	pathSummary string
	pathDB      string

	verbose bool

	statsPlain       bool
	statsChars       string
	statsCurveWindow int

	charsPreset string
	charsForce  bool
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "keydrill",
		Short:         "Adaptive single-key typing drill",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
		RunE: runDrillCmd,
	}

	rootCmd.Flags().IntVar(&drillRounds, "rounds", defaultRounds, "characters to drill per run")
	rootCmd.Flags().IntVar(&drillNext, "next", defaultNext, "upcoming characters shown in the footer")
	rootCmd.Flags().BoolVar(&drillFlush, "flush", false, "append every keystroke to the log immediately")
	rootCmd.Flags().BoolVar(&drillPlain, "plain", false, "use the plain raw-terminal loop instead of the TUI")

	pf := rootCmd.PersistentFlags()
	pf.Float64Var(&drillErrorWeight, "error-weight", scorer.DefaultWeights.Error, "weight of the error rate in the reward")
	pf.Float64Var(&drillLatencyWeight, "latency-weight", scorer.DefaultWeights.Latency, "weight of the median latency in the reward")
	pf.StringVar(&drillBackend, "backend", eventlog.BackendFile, "event log backend (file or sqlite)")
	pf.StringVar(&pathChars, "chars", config.DefaultCharsPath(), "character universe file")
	pf.StringVar(&pathLog, "log", config.DefaultLogPath(), "event log file")
	pf.StringVar(&pathSummary, "summary", config.DefaultSummaryPath(), "summary export file")
	pf.StringVar(&pathDB, "db", config.DefaultDBPath(), "SQLite database for the sqlite backend")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCharsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newSummaryCmd())

	return rootCmd
}

func runDrillCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	chars, err := loadUniverse(cfg.Paths.Chars)
	if err != nil {
		return err
	}
	sc, err := scorer.New(weightsFromConfig(cfg))
	if err != nil {
		return err
	}
	backend, err := eventlog.Open(cfg)
	if err != nil {
		return err
	}
	defer closeBackend(backend)

	ctx := cmd.Context()
	session, err := drill.NewSession(ctx, chars, sc, backend, cfg.Flush)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	var res drill.Result
	var runErr error
	if drillPlain {
		res, runErr = runPlain(ctx, session, cfg.Rounds)
	} else {
		res, runErr = runTUI(ctx, session, cfg)
	}

	if err := session.Save(ctx); err != nil {
		return fmt.Errorf("failed to save log: %w", err)
	}
	if err := stats.WriteSummary(cfg.Paths.Summary, session.Stats(), chars); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if runErr != nil {
		return runErr
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Rounds: %d  Attempts: %d  Errors: %d\n", res.Rounds, res.Attempts, res.Errors)
	return err
}

func runTUI(ctx context.Context, session *drill.Session, cfg model.Config) (drill.Result, error) {
	m := tui.NewModel(ctx, session, cfg.Rounds, cfg.Next)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return m.Result(), fmt.Errorf("failed to run TUI: %w", err)
	}
	if err := m.Err(); err != nil {
		return m.Result(), fmt.Errorf("failed to record key: %w", err)
	}
	return m.Result(), nil
}

func runPlain(ctx context.Context, session *drill.Session, rounds int) (drill.Result, error) {
	term, err := keyinput.Open(os.Stdin)
	if err != nil {
		return drill.Result{}, err
	}
	if _, err := fmt.Fprint(os.Stdout, "Esc or Ctrl-C stops the drill.\r\n"); err != nil {
		_ = term.Close()
		return drill.Result{}, err
	}
	res, runErr := drill.Run(ctx, session, term, os.Stdout, rounds)
	if err := term.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to restore terminal")
	}
	return res, runErr
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		log.Info().Str("path", path).Msg("created config")
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newCharsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chars",
		Short: "Write a preset character universe",
		Args:  cobra.NoArgs,
		RunE:  runCharsCmd,
	}
	cmd.Flags().StringVar(&charsPreset, "preset", universe.DefaultPreset,
		"preset to write ("+strings.Join(universe.PresetNames(), ", ")+")")
	cmd.Flags().BoolVar(&charsForce, "force", false, "overwrite an existing universe file")
	return cmd
}

func runCharsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	chars, err := universe.Preset(charsPreset)
	if err != nil {
		return err
	}
	path := cfg.Paths.Chars
	if !charsForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("universe already exists: %s (use --force to overwrite)", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat universe: %w", err)
		}
	}
	if err := universe.Write(path, chars); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d characters to %s\n", len(chars), path)
	return err
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the TUI")
	cmd.Flags().StringVar(&statsChars, "char", "", "characters for per-char curves")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if statsCurveWindow <= 0 {
		return fmt.Errorf("--curve-window must be > 0")
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	chars, events, err := loadHistory(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	sc, err := scorer.New(weightsFromConfig(cfg))
	if err != nil {
		return err
	}
	report := stats.BuildReport(events, chars, sc)
	statsCfg := model.StatsConfig{Chars: statsChars, CurveWindow: statsCurveWindow}

	if statsPlain {
		return renderPlainStats(cmd.OutOrStdout(), report, statsCfg)
	}
	program := tea.NewProgram(statsui.NewModel(report, statsCfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func renderPlainStats(w io.Writer, report stats.Report, cfg model.StatsConfig) error {
	if err := stats.RenderSummary(w, report); err != nil {
		return err
	}
	if err := stats.RenderCharTable(w, report.Rows); err != nil {
		return err
	}
	chars := universe.Split(cfg.Chars)
	if len(chars) == 0 {
		chars = report.TopChars(defaultTopChars)
	}
	return stats.RenderTrends(w, report, chars, cfg.CurveWindow, defaultTrendWidth)
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the summary file from the event log",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	chars, events, err := loadHistory(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	if err := stats.WriteSummary(cfg.Paths.Summary, stats.Aggregate(events, chars), chars); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", cfg.Paths.Summary)
	return err
}

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the exported summary file",
		Args:  cobra.NoArgs,
		RunE:  runSummaryCmd,
	}
}

func runSummaryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	rows, err := stats.ReadSummary(cfg.Paths.Summary)
	if err != nil {
		return err
	}
	return stats.RenderSummaryRows(cmd.OutOrStdout(), rows)
}

// loadHistory loads the universe and the full event log, closing the
// backend before returning.
func loadHistory(ctx context.Context, cfg model.Config) ([]string, []model.Event, error) {
	chars, err := loadUniverse(cfg.Paths.Chars)
	if err != nil {
		return nil, nil, err
	}
	backend, err := eventlog.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	defer closeBackend(backend)
	events, err := backend.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load history: %w", err)
	}
	return chars, events, nil
}

func loadUniverse(path string) ([]string, error) {
	chars, err := universe.Load(path)
	if err == nil {
		return chars, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		lines := []string{
			fmt.Sprintf("failed to load universe: %v", err),
			fmt.Sprintf("expected one character per line at: %s", path),
			fmt.Sprintf("Create one: keydrill chars --preset %s", universe.DefaultPreset),
		}
		return nil, fmt.Errorf("%s", strings.Join(lines, "\n"))
	}
	return nil, fmt.Errorf("failed to load universe %s: %w", path, err)
}

func closeBackend(b eventlog.Backend) {
	if err := b.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close event log")
	}
}

// resolveConfig merges the config file under the flags. Flags set on
// the command line win.
func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "rounds", &drillRounds, fileCfg.Drill.Rounds)
	applyIntConfig(cmd, "next", &drillNext, fileCfg.Drill.Next)
	applyFloatConfig(cmd, "error-weight", &drillErrorWeight, fileCfg.Drill.ErrorWeight)
	applyFloatConfig(cmd, "latency-weight", &drillLatencyWeight, fileCfg.Drill.LatencyWeight)
	applyStringConfig(cmd, "backend", &drillBackend, fileCfg.Drill.Backend)
	applyBoolConfig(cmd, "flush", &drillFlush, fileCfg.Drill.Flush)
	applyStringConfig(cmd, "chars", &pathChars, fileCfg.Paths.Chars)
	applyStringConfig(cmd, "log", &pathLog, fileCfg.Paths.Log)
	applyStringConfig(cmd, "summary", &pathSummary, fileCfg.Paths.Summary)
	applyStringConfig(cmd, "db", &pathDB, fileCfg.Paths.DB)

	cfg := model.Config{
		Rounds:        drillRounds,
		Next:          drillNext,
		ErrorWeight:   drillErrorWeight,
		LatencyWeight: drillLatencyWeight,
		Backend:       drillBackend,
		Flush:         drillFlush,
		Paths: model.Paths{
			Chars:   pathChars,
			Log:     pathLog,
			Summary: pathSummary,
			DB:      pathDB,
		},
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func weightsFromConfig(cfg model.Config) scorer.Weights {
	return scorer.Weights{Error: cfg.ErrorWeight, Latency: cfg.LatencyWeight}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# keydrill configuration
# Uncomment a value to enable it. CLI flags override config values.

[drill]
# rounds = %d              # Characters drilled per run
# next = %d                 # Upcoming characters shown in the footer
# error-weight = %.1f       # Weight of the error rate in the reward
# latency-weight = %.1f     # Weight of the median latency in the reward
# backend = %q          # Event log backend: "file" or "sqlite"
# flush = false            # Append every keystroke immediately

[paths]
# chars = %q
# log = %q
# summary = %q
# db = %q
`,
		defaultRounds,
		defaultNext,
		scorer.DefaultWeights.Error,
		scorer.DefaultWeights.Latency,
		eventlog.BackendFile,
		config.DefaultCharsPath(),
		config.DefaultLogPath(),
		config.DefaultSummaryPath(),
		config.DefaultDBPath(),
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Rounds <= 0 {
		return fmt.Errorf("--rounds must be > 0")
	}
	if cfg.Next < 0 {
		return fmt.Errorf("--next must be >= 0")
	}
	if err := weightsFromConfig(cfg).Validate(); err != nil {
		return err
	}
	switch cfg.Backend {
	case eventlog.BackendFile, eventlog.BackendSQLite:
	default:
		return fmt.Errorf("--backend must be %q or %q", eventlog.BackendFile, eventlog.BackendSQLite)
	}
	if cfg.Paths.Chars == "" {
		return fmt.Errorf("--chars must not be empty")
	}
	return nil
}
