package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/claudeguard/internal/errors"
	"github.com/thoreinstein/claudeguard/internal/guard"
	"github.com/thoreinstein/claudeguard/internal/paths"
	"github.com/thoreinstein/claudeguard/internal/risk"
	"github.com/thoreinstein/claudeguard/pkg/fileutil"
)

var verifyExport string

func init() {
	verifyCmd.Flags().StringVar(&verifyExport, "export", "",
		"write the report to a file (.json, .yaml or .toml)")
	rootCmd.AddCommand(verifyCmd)
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify backup compliance",
	Long: `Compare the number of recorded operations with the number of backups
on disk. The compliance rate is backups per operation as a percentage; it
is 100% when nothing has been recorded yet.

The store is compliant when the rate reaches
verification.compliance_threshold (default 100). The operation log keeps
every operation, so cleanup lowers the rate over time.

The report can be exported with --export. The format follows the file
extension: .yaml/.yml, .toml, anything else is JSON.`,
	Example: `  claudeguard verify
  claudeguard verify --export report.json
  claudeguard verify --export report.yaml`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, _ []string) error {
	mgr, err := newManager(cmd)
	if err != nil {
		return err
	}
	return runVerifyWithWriter(cmd.OutOrStdout(), mgr, verifyExport)
}

func runVerifyWithWriter(w io.Writer, mgr *guard.Manager, export string) error {
	report, err := mgr.Verify()
	if err != nil {
		return err
	}

	printHeader(w, "Verifying Backup Compliance")
	fmt.Fprintf(w, "Total Operations: %d\n", report.TotalOperations)
	fmt.Fprintf(w, "Total Backups: %d\n", report.TotalBackups)
	fmt.Fprintf(w, "Compliance Rate: %.1f%% (threshold %.1f%%)\n", report.ComplianceRate, report.Threshold)

	if len(report.RiskBreakdown) > 0 {
		fmt.Fprintf(w, "Risk Breakdown: %s\n", formatBreakdown(report.RiskBreakdown))
	}

	fmt.Fprintln(w)
	switch {
	case report.Compliant():
		fmt.Fprintln(w, success("✓ Compliant - all operations are backed up"))
	case report.MostlyCompliant():
		fmt.Fprintln(w, warning("! Mostly compliant - some operations may be missing backups"))
	default:
		fmt.Fprintln(w, failure("✗ Low compliance - many operations are not backed up"))
	}

	if export != "" {
		if err := paths.EnsureDir(filepath.Dir(export), 0); err != nil {
			return errors.Wrapf(err, "creating directory for %s", export)
		}
		if err := fileutil.AtomicWriteByExt(export, report); err != nil {
			return errors.Wrapf(err, "exporting report to %s", export)
		}
		fmt.Fprintf(w, "\nReport exported to: %s\n", export)
	}
	return nil
}

// formatBreakdown lists known tiers in ascending order, then any
// unrecognized levels found in the log.
func formatBreakdown(breakdown map[risk.Level]int) string {
	var parts, unknown []string
	for _, level := range risk.Levels {
		if n := breakdown[level]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", level, n))
		}
	}
	for level, n := range breakdown {
		if level.Rank() < 0 {
			name := string(level)
			if name == "" {
				name = "UNKNOWN"
			}
			unknown = append(unknown, fmt.Sprintf("%s %d", name, n))
		}
	}
	slices.Sort(unknown)
	return strings.Join(append(parts, unknown...), ", ")
}
