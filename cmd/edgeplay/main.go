// Package main provides the CLI entrypoint for edgeplay.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/edgeplay/internal/config"
	"github.com/verte-zerg/edgeplay/internal/generator"
	"github.com/verte-zerg/edgeplay/internal/logging"
	"github.com/verte-zerg/edgeplay/internal/model"
	"github.com/verte-zerg/edgeplay/internal/progress"
	"github.com/verte-zerg/edgeplay/internal/stats"
	"github.com/verte-zerg/edgeplay/internal/statsui"
	"github.com/verte-zerg/edgeplay/internal/store"
	"github.com/verte-zerg/edgeplay/internal/tui"
)

const (
	defaultDifficulty  = "calm"
	defaultMasterRule  = "selected"
	defaultLogLevel    = "info"
	defaultCurveWindow = 5
	defaultRedisPrefix = "edgeplay:"
)

var (
	playDifficulty string
	playSeed       int64

	storeEphemeral bool
	storePath      string

	statsGame        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlot        bool

	resetYes bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "edgeplay",
		Short:         "Terminal minigames with persistent progress",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().StringVar(&playDifficulty, "difficulty", defaultDifficulty, "starting difficulty (calm, focused, intense)")
	rootCmd.Flags().Int64Var(&playSeed, "seed", 0, "seed for reproducible rounds (0: random)")
	rootCmd.PersistentFlags().BoolVar(&storeEphemeral, "ephemeral", false, "keep progress in memory only")
	rootCmd.PersistentFlags().StringVar(&storePath, "db", "", "path of the SQLite progress database")

	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newProgressCmd())
	rootCmd.AddCommand(newBadgesCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// app bundles the opened store, logger and loaded progress of one command.
type app struct {
	cfg      config.FileConfig
	store    store.Backend
	log      *logrus.Logger
	logFile  io.Closer
	progress *progress.Manager
}

func openApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	fileCfg, err := config.Load(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logLevel := defaultLogLevel
	logPath := config.DefaultLogPath()
	applyStringConfig(nil, "", &logLevel, fileCfg.Log.Level)
	applyStringConfig(nil, "", &logPath, fileCfg.Log.Path)
	log, logFile, err := logging.OpenFile(logPath, logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	opts := store.Options{
		Backend:     store.BackendSQLite,
		Path:        config.DefaultDBPath(),
		RedisPrefix: defaultRedisPrefix,
	}
	applyStringConfig(nil, "", &opts.Backend, fileCfg.Store.Backend)
	applyStringConfig(nil, "", &opts.Path, fileCfg.Store.Path)
	applyStringConfig(nil, "", &opts.RedisAddr, fileCfg.Store.RedisAddr)
	applyStringConfig(nil, "", &opts.RedisPassword, fileCfg.Store.RedisPassword)
	applyIntConfig(nil, "", &opts.RedisDB, fileCfg.Store.RedisDB)
	applyStringConfig(nil, "", &opts.RedisPrefix, fileCfg.Store.RedisPrefix)
	if cmd.Flags().Changed("db") {
		opts.Path = storePath
		opts.Backend = store.BackendSQLite
	}
	if storeEphemeral {
		opts.Backend = store.BackendMemory
	}
	st, err := store.Open(ctx, opts)
	if err != nil {
		closeLog(logFile)
		return nil, fmt.Errorf("failed to open %s store: %w", opts.Backend, err)
	}

	masterRule := defaultMasterRule
	applyStringConfig(nil, "", &masterRule, fileCfg.Play.MasterRule)
	rule, err := progress.ParseMasterRule(masterRule)
	if err != nil {
		// Best-effort close before returning the config error.
		if cerr := st.Close(); cerr != nil {
			_ = cerr
		}
		closeLog(logFile)
		return nil, fmt.Errorf("invalid master-rule: %w", err)
	}

	pm := progress.New(st, progress.WithLogger(log), progress.WithMasterRule(rule))
	pm.Load(ctx)
	log.WithFields(logrus.Fields{"backend": opts.Backend, "masterRule": rule.String()}).Debug("progress loaded")
	return &app{cfg: fileCfg, store: st, log: log, logFile: logFile, progress: pm}, nil
}

func (a *app) Close() {
	if cerr := a.store.Close(); cerr != nil {
		logErrf("failed to close store: %v\n", cerr)
	}
	closeLog(a.logFile)
}

func closeLog(c io.Closer) {
	if cerr := c.Close(); cerr != nil {
		// Best-effort close of the diagnostics log.
		_ = cerr
	}
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	applyStringConfig(cmd, "difficulty", &playDifficulty, a.cfg.Play.Difficulty)
	applyInt64Config(cmd, "seed", &playSeed, a.cfg.Play.Seed)
	difficulty, err := parseDifficulty(playDifficulty)
	if err != nil {
		return fmt.Errorf("invalid --difficulty: %w", err)
	}
	a.progress.SetSelectedDifficulty(difficulty)

	gen := generator.New()
	if playSeed != 0 {
		gen = generator.NewSeeded(playSeed)
	}

	a.progress.StartSession(ctx)
	defer a.progress.EndSession(ctx)

	m := tui.NewModel(ctx, a.progress, gen, a.log)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func addStatsFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&statsGame, "game", "", "game filter (pathfinder, precision, sequence)")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
}

func statsConfigFromFlags() (model.StatsConfig, error) {
	cfg := model.StatsConfig{
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	if statsGame != "" {
		gt, err := parseGameType(statsGame)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --game value: %w", err)
		}
		cfg.GameType = &gt
	}
	if cfg.Last < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if cfg.CurveWindow < 1 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be >= 1")
	}
	return cfg, nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Browse stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	addStatsFlags(cmd)
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := statsConfigFromFlags()
	if err != nil {
		return err
	}
	ctx := context.Background()
	a, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	m := statsui.NewModel(ctx, a.progress, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newProgressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Print a progress report",
		Args:  cobra.NoArgs,
		RunE:  runProgressCmd,
	}
	addStatsFlags(cmd)
	cmd.Flags().BoolVar(&statsPlot, "plot", false, "include score curves")
	return cmd
}

func runProgressCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := statsConfigFromFlags()
	if err != nil {
		return err
	}
	ctx := context.Background()
	a, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := stats.BuildReport(ctx, a.progress, cfg)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	out := cmd.OutOrStdout()
	width := stats.TerminalWidth()
	if err := stats.WriteProgressReport(out, a.progress, report, width); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if statsPlot {
		if err := stats.RenderCurvesWithSize(out, report.Sessions, cfg.CurveWindow, width, 0); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newBadgesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "badges",
		Short: "List earned and locked badges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(context.Background(), cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := stats.WriteBadges(cmd.OutOrStdout(), a.progress); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			return nil
		},
	}
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset all progress",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().BoolVar(&resetYes, "yes", false, "confirm permanent deletion of progress, statistics and badges")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	if !resetYes {
		logErrln("This will permanently delete all your progress, statistics, and earned badges. This action cannot be undone.")
		return fmt.Errorf("refusing to reset without --yes")
	}
	ctx := context.Background()
	a, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	a.progress.ResetAllProgress(ctx)
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), "All progress reset."); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
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
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func parseDifficulty(s string) (model.Difficulty, error) {
	for _, d := range model.Difficulties {
		if strings.EqualFold(d.String(), strings.TrimSpace(s)) {
			return d, nil
		}
	}
	return model.Calm, fmt.Errorf("unknown difficulty %q (use calm, focused or intense)", s)
}

func parseGameType(s string) (model.GameType, error) {
	for _, gt := range model.GameTypes {
		if strings.EqualFold(gt.String(), strings.TrimSpace(s)) {
			return gt, nil
		}
	}
	return model.Pathfinder, fmt.Errorf("unknown game %q (use pathfinder, precision or sequence)", s)
}

// applyStringConfig copies a config value unless the named flag was set.
// A nil cmd applies the value unconditionally.
func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd != nil && cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd != nil && cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd != nil && cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# edgeplay configuration
# Uncomment a value to enable it. EDGEPLAY_* environment variables override
# the file, CLI flags override both.

[play]
# difficulty = %q       # Starting difficulty: calm, focused or intense
# seed = 0                # Seed for reproducible rounds (0: random)
# master-rule = %q   # Master badge check: selected or completed

[store]
# backend = "sqlite"      # sqlite, redis or memory
# path = %q
# redis-addr = "localhost:6379"
# redis-password = ""
# redis-db = 0
# redis-prefix = %q

[log]
# level = %q            # debug, info, warn, error or off
# path = %q
`,
		defaultDifficulty,
		defaultMasterRule,
		config.DefaultDBPath(),
		defaultRedisPrefix,
		defaultLogLevel,
		config.DefaultLogPath(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
