package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/claudeguard/internal/errors"
	"github.com/thoreinstein/claudeguard/internal/guard"
	"github.com/thoreinstein/claudeguard/internal/snapshot"
)

var backupDetails []string

func init() {
	backupCmd.Flags().StringArrayVarP(&backupDetails, "detail", "d", nil,
		"record a key=value detail about the operation (repeatable)")
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup <operation> [files...]",
	Short: "Back up files before an operation",
	Long: `Create a backup of the given files, recording the operation that is
about to modify them.

The operation string is classified into a risk level: shell commands
containing rm -rf, DROP, DELETE or TRUNCATE are CRITICAL; Bash and Task
are HIGH; Write and Edit are MEDIUM; read-only tools are LOW.

Files are resolved relative to the project directory. Files that do not
exist, are not regular files, or lie outside the project are skipped with
a warning; the backup is still created.`,
	Example: `  claudeguard backup Edit src/main.go
  claudeguard backup "Bash: rm -rf build" build/output.bin --detail reason=cleanup`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBackup,
}

func runBackup(cmd *cobra.Command, args []string) error {
	details, err := parseDetails(backupDetails)
	if err != nil {
		return err
	}
	mgr, err := newManager(cmd)
	if err != nil {
		return err
	}
	return runBackupWithWriter(cmd.Context(), cmd.OutOrStdout(), mgr, args[0], details, args[1:])
}

// parseDetails turns key=value flags into ordered operation details.
func parseDetails(pairs []string) (snapshot.Details, error) {
	var d snapshot.Details
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return d, errors.NewUserError(errors.Newf("invalid detail %q", pair), "Use --detail key=value")
		}
		d.SetString(key, value)
	}
	return d, nil
}

func runBackupWithWriter(ctx context.Context, w io.Writer, mgr *guard.Manager, operation string, details snapshot.Details, files []string) error {
	res, err := mgr.CreateBackup(ctx, operation, details, files)
	if err != nil {
		return err
	}
	if !res.Taken {
		fmt.Fprintln(w, warning("Backups are disabled (backup.enabled: false); nothing was saved."))
		return nil
	}

	fmt.Fprintf(w, "%s Created %s (%s, %d file(s))\n",
		success("✓"), res.BackupID, riskLabel(res.RiskLevel), len(res.Files))
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "  %s %v\n", warning("!"), warn)
	}
	return nil
}
