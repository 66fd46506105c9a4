// Package commands implements the CLI commands for claudeguard.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	buildinfo "github.com/thoreinstein/claudeguard/cmd"
	"github.com/thoreinstein/claudeguard/internal/config"
	"github.com/thoreinstein/claudeguard/internal/errors"
	"github.com/thoreinstein/claudeguard/internal/guard"
	"github.com/thoreinstein/claudeguard/internal/logging"
	"github.com/thoreinstein/claudeguard/internal/paths"
)

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// logSink is the open --log-file, closed by closeLogFile.
var logSink *os.File

// projectDir holds the value of the -C/--project flag.
var projectDir string

// configFile holds the value of the --config flag.
var configFile string

// Resolved in PersistentPreRunE.
var (
	projectLayout paths.Layout
	loadedConfig  *config.Config
)

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "C", "",
		"project directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: .claudeguard/config.yaml, then the user config dir)")

	rootCmd.Version = buildinfo.Version
	rootCmd.SetVersionTemplate("claudeguard version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

var rootCmd = &cobra.Command{
	Use:   "claudeguard",
	Short: "Backup and rollback safety net for AI coding agents",
	Long: `claudeguard snapshots files before a risky operation, such as an
automated coding agent editing code, and restores them on demand.

Each backup is a full copy of the affected files plus metadata describing
the operation, its risk level and the git commit at the time. Backups live
in .claudeguard/backups/ inside the project; every operation is also
recorded in .claudeguard/logs/operation_history.jsonl for auditing.`,
	Example: `  claudeguard status
  claudeguard list 20
  claudeguard rollback backup_20250930_160000_000000
  claudeguard verify --export report.json
  claudeguard cleanup 50

  See Also: claudeguard init, claudeguard hook`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return loadConfig(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("cannot use --quiet and --verbose together"), "Pass either -q or -v")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("CLAUDEGUARD_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	var handlers []slog.Handler
	switch logging.Format(logFormat) {
	case logging.FormatJSON:
		handlers = append(handlers, logging.NewJSONHandler(cmd.ErrOrStderr(), level))
	case logging.FormatText, "":
		handlers = append(handlers, logging.NewHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	default:
		return errors.NewUserError(errors.Newf("unknown log format %q", logFormat), "Use --log-format text or --log-format json")
	}

	if err := closeLogFile(); err != nil {
		return err
	}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		logSink = f
		// The log file always gets JSON.
		handlers = append(handlers, logging.NewJSONHandler(f, level))
	}

	logger := slog.New(logging.NewFanout(handlers...))
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// loadConfig resolves the project layout and reads its configuration.
// Commands that do not need a valid config fall back to defaults.
func loadConfig(cmd *cobra.Command) error {
	layout, err := paths.NewLayout(projectDir)
	if err != nil {
		return errors.NewUserError(err, "Check the --project path")
	}
	projectLayout = layout

	cfg, err := config.Load(configFile, layout)
	if err != nil {
		if !needsConfig(cmd) {
			logging.FromContext(cmd.Context()).Debug("using default config", "error", err)
			loadedConfig = config.Default()
			return nil
		}
		return errors.NewConfigError(err)
	}
	loadedConfig = cfg
	return nil
}

// needsConfig reports whether cmd must fail on a broken config.
func needsConfig(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "version", "init", "gen-doc", "completion":
		return false
	}
	return true
}

// newManager builds a backup manager for the resolved project.
func newManager(cmd *cobra.Command) (*guard.Manager, error) {
	logger := logging.FromContext(cmd.Context())
	cfg := loadedConfig
	if cfg == nil {
		cfg = config.Default()
	}
	for _, name := range cfg.Unsupported() {
		logger.Warn("option is reserved and has no effect", "option", name)
	}
	return guard.New(cfg,
		guard.WithProjectRoot(projectLayout.ProjectRoot),
		guard.WithLogger(logger),
	)
}

// Execute runs the root command and reports any error on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if cerr := closeLogFile(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		reportError(rootCmd.ErrOrStderr(), err)
	}
	return errors.Wrap(err, "executing root command")
}

// closeLogFile closes the --log-file opened by setupLogging, if any.
func closeLogFile() error {
	if logSink == nil {
		return nil
	}
	err := logSink.Close()
	logSink = nil
	return errors.Wrap(err, "closing log file")
}

// reportError prints err and, for an ExitError, its suggestion.
func reportError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", failure("Error:"), err)

	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) && exitErr.Suggestion != "" {
		fmt.Fprintf(w, "  %s\n", exitErr.Suggestion)
		return
	}
	if isUnknownCommand(err) {
		fmt.Fprintln(w, "  Run 'claudeguard help' for usage.")
	}
}
