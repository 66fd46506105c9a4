package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/claudeguard/internal/errors"
	"github.com/thoreinstein/claudeguard/internal/guard"
	"github.com/thoreinstein/claudeguard/internal/redact"
	"github.com/thoreinstein/claudeguard/internal/snapshot"
)

var (
	rollbackInteractive bool
	rollbackYes         bool
)

func init() {
	rollbackCmd.Flags().BoolVarP(&rollbackInteractive, "interactive", "i", false,
		"pick the backup from a searchable list")
	rollbackCmd.Flags().BoolVarP(&rollbackYes, "yes", "y", false,
		"restore without asking for confirmation")
	rootCmd.AddCommand(rollbackCmd)
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback [backup-id]",
	Short: "Roll back to a backup (default: most recent)",
	Long: `Restore the files recorded in a backup over the current project files.

Without a backup ID the most recent backup is used. Only the files the
backup recorded are written; other files are left alone. Restoring stops
at the first file that cannot be written, and files restored before it
keep their restored contents.

When run from a terminal, rollback asks for confirmation unless --yes is
given.`,
	Example: `  # Roll back the most recent backup
  claudeguard rollback

  # Roll back a specific backup
  claudeguard rollback backup_20250930_160000_000000

  # Choose from a list
  claudeguard rollback --interactive

  See Also:
    claudeguard list - List available backups`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRollback,
}

func runRollback(cmd *cobra.Command, args []string) error {
	mgr, err := newManager(cmd)
	if err != nil {
		return err
	}

	var id string
	if len(args) > 0 {
		id = args[0]
	}
	if rollbackInteractive {
		if id != "" {
			return errors.NewUserError(errors.New("--interactive does not take a backup ID"), "Drop the ID or the --interactive flag")
		}
		picked, err := pickBackup(mgr)
		if err != nil {
			return err
		}
		if picked == "" {
			return nil
		}
		id = picked
	}

	prompt := !rollbackYes && stdinIsTerminal()
	return runRollbackWithIO(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), mgr, id, prompt)
}

func runRollbackWithIO(ctx context.Context, in io.Reader, w io.Writer, mgr *guard.Manager, id string, prompt bool) error {
	if id == "" {
		latest, err := mgr.LatestID()
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				return errors.NewUserError(err, "Backups are created with: claudeguard backup or claudeguard hook")
			}
			return err
		}
		id = latest
	}

	rec, err := mgr.Store().Read(id)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return errors.NewUserError(err, "Run 'claudeguard list' to see available backups, then pass an ID")
		}
		return err
	}

	printHeader(w, "Rolling back to: "+id)

	if prompt {
		fmt.Fprintf(w, "%d file(s) from %q will be overwritten.\n", len(rec.AffectedFiles), redact.Text(rec.OperationType))
		ok, err := confirm(in, w, "Continue?")
		if err != nil {
			return errors.Wrap(err, "reading confirmation")
		}
		if !ok {
			fmt.Fprintln(w, "Rollback cancelled.")
			return nil
		}
	}

	res, err := mgr.Rollback(ctx, id)
	if err != nil {
		var restoreErr *errors.RestoreError
		if errors.As(err, &restoreErr) {
			fmt.Fprintf(w, "%s Rollback failed at %s after restoring %d file(s)\n",
				failure("✗"), restoreErr.Path, len(res.Restored))
		}
		return err
	}

	fmt.Fprintf(w, "%s %s\n", success("✓"), res.Message)
	if len(res.Missing) > 0 {
		fmt.Fprintf(w, "%s %d file(s) were missing from the backup: %s\n",
			warning("!"), len(res.Missing), strings.Join(res.Missing, ", "))
	}
	fmt.Fprintln(w, "\nRollback complete!")
	return nil
}

// pickBackup shows a fuzzy finder over all backups. An aborted search
// returns an empty id.
func pickBackup(mgr *guard.Manager) (string, error) {
	records, err := mgr.ListBackups(0)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", errors.NewUserError(errors.NotFoundf("no backups found"), "Backups are created with: claudeguard backup or claudeguard hook")
	}

	idx, err := fuzzyfinder.Find(
		records,
		func(i int) string {
			return pickerLine(records[i])
		},
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			return pickerPreview(records[i])
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", nil
		}
		return "", errors.Wrap(err, "interactive selection failed")
	}
	return records[idx].BackupID, nil
}

func pickerLine(rec snapshot.Record) string {
	return fmt.Sprintf("%s  %-8s  %s", rec.BackupID, rec.RiskLevel, redact.Text(rec.OperationType))
}

func pickerPreview(rec snapshot.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ID: %s\nTime: %s\nRisk: %s\nOperation: %s\n",
		rec.BackupID,
		rec.Timestamp.Local().Format("2006-01-02 15:04:05"),
		rec.RiskLevel,
		redact.Text(rec.OperationType))
	if rec.GitCommit != "" {
		fmt.Fprintf(&b, "Git: %s\n", rec.GitCommit)
	}
	details := redactDetails(rec.OperationDetails)
	for _, key := range details.Keys() {
		fmt.Fprintf(&b, "%s: %s\n", key, details.Text(key))
	}
	fmt.Fprintf(&b, "\nFiles (%d):\n", len(rec.AffectedFiles))
	for _, f := range rec.AffectedFiles {
		fmt.Fprintf(&b, "  %s\n", f)
	}
	return b.String()
}
