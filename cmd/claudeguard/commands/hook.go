package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/claudeguard/internal/config"
	"github.com/thoreinstein/claudeguard/internal/errors"
	"github.com/thoreinstein/claudeguard/internal/guard"
	"github.com/thoreinstein/claudeguard/internal/hook"
	"github.com/thoreinstein/claudeguard/internal/logging"
	"github.com/thoreinstein/claudeguard/internal/paths"
	"github.com/thoreinstein/claudeguard/internal/risk"
)

func init() {
	rootCmd.AddCommand(hookCmd)
}

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Back up files named in an agent's PreToolUse hook payload",
	Long: `Read a PreToolUse hook payload as JSON on stdin and back up the files
the tool is about to modify.

Read-only tools (risk level LOW) are not backed up. File contents in the
tool input are not recorded; the backup already holds the file. Unless
--project is given, the payload's cwd is used as the project directory.

Register it as a PreToolUse hook for file-editing and shell tools, e.g.:

  {
    "hooks": {
      "PreToolUse": [
        {"matcher": "Write|Edit|MultiEdit|NotebookEdit|Bash",
         "hooks": [{"type": "command", "command": "claudeguard hook"}]}
      ]
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runHook,
}

func runHook(cmd *cobra.Command, _ []string) error {
	ev, err := hook.Parse(cmd.InOrStdin())
	if err != nil {
		return err
	}

	logger := logging.FromContext(cmd.Context())
	cfg := loadedConfig
	root := projectLayout.ProjectRoot
	if projectDir == "" && ev.Cwd != "" {
		root = ev.Cwd
		layout, err := paths.NewLayout(root)
		if err != nil {
			return err
		}
		if cfg, err = config.Load(configFile, layout); err != nil {
			return errors.NewConfigError(err)
		}
	}

	mgr, err := guard.New(cfg, guard.WithProjectRoot(root), guard.WithLogger(logger))
	if err != nil {
		return err
	}
	return runHookEvent(cmd.Context(), logger, mgr, ev)
}

func runHookEvent(ctx context.Context, logger *slog.Logger, mgr *guard.Manager, ev *hook.Event) error {
	op := ev.Operation()
	if mgr.Classify(op) == risk.Low {
		logger.Debug("read-only tool, no backup", "tool", ev.ToolName)
		return nil
	}

	res, err := mgr.CreateBackup(ctx, op, ev.Details(), ev.Files())
	if err != nil {
		return err
	}
	if res.Taken {
		logger.Info("hook backup", "backup_id", res.BackupID, "tool", ev.ToolName, "files", len(res.Files))
	}
	return nil
}
