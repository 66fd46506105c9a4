package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/claudeguard/internal/errors"
	"github.com/thoreinstein/claudeguard/internal/guard"
	"github.com/thoreinstein/claudeguard/internal/redact"
	"github.com/thoreinstein/claudeguard/internal/snapshot"
)

// defaultListLimit is how many backups list shows without an argument.
const defaultListLimit = 10

var (
	listJSON    bool
	listDetails bool
)

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	listCmd.Flags().BoolVar(&listDetails, "details", false, "show operation details")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list [N]",
	Short: "List the N most recent backups (default: 10)",
	Long: `List the most recent backups, newest first.

Each entry shows the operation that triggered the backup, its risk level,
how many files were copied, and the git commit at the time if the project
is a git repository. Secrets in operation details are masked.`,
	Example: `  claudeguard list
  claudeguard list 20
  claudeguard list --details
  claudeguard list --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	limit, err := parseCount(args, defaultListLimit)
	if err != nil {
		return err
	}
	mgr, err := newManager(cmd)
	if err != nil {
		return err
	}
	return runListWithWriter(cmd.OutOrStdout(), mgr, limit)
}

// parseCount reads an optional positive count argument.
func parseCount(args []string, def int) (int, error) {
	if len(args) == 0 {
		return def, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, errors.NewUserError(errors.Newf("invalid count %q", args[0]), "N must be a positive whole number")
	}
	return n, nil
}

// backupOutput is the JSON form of a backup record.
type backupOutput struct {
	ID               string           `json:"backup_id"`
	Timestamp        time.Time        `json:"timestamp"`
	OperationType    string           `json:"operation_type"`
	OperationDetails snapshot.Details `json:"operation_details"`
	RiskLevel        string           `json:"risk_level"`
	AffectedFiles    []string         `json:"affected_files"`
	GitCommit        string           `json:"git_commit,omitempty"`
}

func runListWithWriter(w io.Writer, mgr *guard.Manager, limit int) error {
	records, err := mgr.ListBackups(limit)
	if err != nil {
		return err
	}

	if listJSON {
		out := make([]backupOutput, len(records))
		for i, rec := range records {
			out[i] = backupOutput{
				ID:               rec.BackupID,
				Timestamp:        rec.Timestamp.Time,
				OperationType:    redact.Text(rec.OperationType),
				OperationDetails: redactDetails(rec.OperationDetails),
				RiskLevel:        rec.RiskLevel.String(),
				AffectedFiles:    rec.AffectedFiles,
				GitCommit:        rec.GitCommit,
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	printHeader(w, fmt.Sprintf("Recent Backups (showing %d of %d)", len(records), limit))

	if len(records) == 0 {
		fmt.Fprintln(w, "No backups found.")
		return nil
	}

	for i, rec := range records {
		fmt.Fprintf(w, "%2d. %s %-24s | %2d files | %s\n",
			i+1,
			riskLabel(rec.RiskLevel),
			truncate(redact.Text(rec.OperationType), 24),
			len(rec.AffectedFiles),
			rec.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "    ID: %s\n", rec.BackupID)
		if rec.GitCommit != "" {
			fmt.Fprintf(w, "    Git: %s\n", truncate(rec.GitCommit, 8))
		}
		if listDetails {
			details := redactDetails(rec.OperationDetails)
			for _, key := range details.Keys() {
				fmt.Fprintf(w, "    %s %s\n", faint(key+":"), details.Text(key))
			}
			for _, f := range rec.AffectedFiles {
				fmt.Fprintf(w, "    - %s\n", f)
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}

// redactDetails masks secret-looking values for display.
func redactDetails(d snapshot.Details) snapshot.Details {
	var out snapshot.Details
	for _, key := range d.Keys() {
		raw, _ := d.Get(key)
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			out.SetString(key, redact.Field(key, s))
			continue
		}
		out.SetRaw(key, raw)
	}
	return out
}
