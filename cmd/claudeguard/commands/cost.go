package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/claudeguard/internal/guard"
)

func init() {
	rootCmd.AddCommand(costCmd)
}

var costCmd = &cobra.Command{
	Use:   "cost",
	Short: "Show storage cost analysis",
	Long: `Show current backup storage and project its growth, assuming 100
operations per month at the current average backup size. Backups are
stored locally only, so there is no monetary cost.`,
	Args: cobra.NoArgs,
	RunE: runCost,
}

func runCost(cmd *cobra.Command, _ []string) error {
	mgr, err := newManager(cmd)
	if err != nil {
		return err
	}
	return runCostWithWriter(cmd.OutOrStdout(), mgr)
}

func runCostWithWriter(w io.Writer, mgr *guard.Manager) error {
	st, err := mgr.Status()
	if err != nil {
		return err
	}
	est := guard.EstimateCost(st)

	printHeader(w, "Cost Analysis")
	fmt.Fprintf(w, "Current Storage: %.2f MB\n", est.StorageMB)
	if st.TotalOperations > 0 {
		fmt.Fprintf(w, "Average Backup Size: %.4f MB\n", est.AvgMBPerOperation)
		fmt.Fprintf(w, "Predicted Monthly Growth: %.2f MB\n", est.MonthlyGrowthMB)
		fmt.Fprintf(w, "Predicted Yearly Growth: %.2f MB\n", est.YearlyGrowthMB)
	}
	fmt.Fprintln(w, "\nEstimated Cost: $0.00/year")
	fmt.Fprintln(w, faint("Backups use local storage only."))
	return nil
}
