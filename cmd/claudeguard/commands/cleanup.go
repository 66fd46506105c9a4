package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/claudeguard/internal/errors"
	"github.com/thoreinstein/claudeguard/internal/guard"
)

var (
	cleanupMaxAgeDays int
	cleanupYes        bool
	cleanupDryRun     bool
)

func init() {
	cleanupCmd.Flags().IntVar(&cleanupMaxAgeDays, "max-age-days", 0,
		"remove backups older than this many days (default: backup.retention_days)")
	cleanupCmd.Flags().BoolVarP(&cleanupYes, "yes", "y", false,
		"remove without asking for confirmation")
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false,
		"show what would be removed without removing anything")
	rootCmd.AddCommand(cleanupCmd)
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup [N]",
	Short: "Keep only the N most recent backups",
	Long: `Remove old backups in two passes. The first pass removes the oldest
backups until at most N remain (default: backup.max_backups). The second
pass removes any remaining backup older than --max-age-days (default:
backup.retention_days).

The operation log is not pruned, so cleanup lowers the compliance rate
reported by verify.

Do not run cleanup while another claudeguard process is creating or
restoring backups in the same project; there is no locking between
processes and a single writer is recommended.`,
	Example: `  # Apply the configured retention
  claudeguard cleanup

  # Keep the 20 most recent backups
  claudeguard cleanup 20

  # Preview removals
  claudeguard cleanup 20 --max-age-days 7 --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCleanup,
}

func runCleanup(cmd *cobra.Command, args []string) error {
	maxBackups, err := parseCount(args, 0)
	if err != nil {
		return err
	}
	if cleanupMaxAgeDays < 0 {
		return errors.NewUserError(errors.New("--max-age-days must be positive"), "Use a whole number of days, e.g. --max-age-days 30")
	}
	mgr, err := newManager(cmd)
	if err != nil {
		return err
	}

	opts := guard.CleanupOptions{
		MaxBackups: maxBackups,
		MaxAgeDays: cleanupMaxAgeDays,
		DryRun:     cleanupDryRun,
	}
	prompt := !cleanupYes && !cleanupDryRun && stdinIsTerminal()
	return runCleanupWithIO(cmd.InOrStdin(), cmd.OutOrStdout(), mgr, opts, prompt)
}

func runCleanupWithIO(in io.Reader, w io.Writer, mgr *guard.Manager, opts guard.CleanupOptions, prompt bool) error {
	cfg := mgr.Config()
	keep, maxAge := opts.MaxBackups, opts.MaxAgeDays
	if keep <= 0 {
		keep = cfg.Backup.MaxBackups
	}
	if maxAge <= 0 {
		maxAge = cfg.Backup.RetentionDays
	}

	printHeader(w, fmt.Sprintf("Cleaning up backups (keeping %d most recent, max age %d days)", keep, maxAge))

	if prompt {
		plan, err := mgr.Cleanup(guard.CleanupOptions{MaxBackups: keep, MaxAgeDays: maxAge, DryRun: true})
		if err != nil {
			return err
		}
		if len(plan.Removed) == 0 {
			fmt.Fprintln(w, "Nothing to clean up.")
			return nil
		}
		ok, err := confirm(in, w, fmt.Sprintf("Remove %d backup(s)?", len(plan.Removed)))
		if err != nil {
			return errors.Wrap(err, "reading confirmation")
		}
		if !ok {
			fmt.Fprintln(w, "Cleanup cancelled.")
			return nil
		}
	}

	res, err := mgr.Cleanup(guard.CleanupOptions{MaxBackups: keep, MaxAgeDays: maxAge, DryRun: opts.DryRun})
	if err != nil {
		return err
	}

	if opts.DryRun {
		for _, id := range res.Removed {
			fmt.Fprintf(w, "  would remove %s\n", id)
		}
		fmt.Fprintf(w, "Would remove %d old backups\n", len(res.Removed))
		fmt.Fprintf(w, "Would remain: %d backups\n", res.Kept)
		return nil
	}

	fmt.Fprintf(w, "Removed %d old backups\n", len(res.Removed))
	fmt.Fprintf(w, "Remaining: %d backups\n", res.Kept)
	fmt.Fprintln(w, "\n"+success("✓ Cleanup complete!"))
	return nil
}
