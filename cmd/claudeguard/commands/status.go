package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/claudeguard/internal/guard"
)

var statusJSON bool

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and statistics",
	Long: `Show whether backups are enabled, how many backups and recorded
operations exist, and how much disk the backup store uses.`,
	Example: `  claudeguard status
  claudeguard status --json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, _ []string) error {
	mgr, err := newManager(cmd)
	if err != nil {
		return err
	}
	return runStatusWithWriter(cmd.OutOrStdout(), mgr)
}

// statusOutput is the JSON form of the status report.
type statusOutput struct {
	Enabled         bool    `json:"enabled"`
	TotalBackups    int     `json:"total_backups"`
	TotalOperations int     `json:"total_operations"`
	StorageMB       float64 `json:"storage_mb"`
	BackupRoot      string  `json:"backup_root"`
	LogFile         string  `json:"log_file"`
}

func runStatusWithWriter(w io.Writer, mgr *guard.Manager) error {
	st, err := mgr.Status()
	if err != nil {
		return err
	}

	if statusJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(statusOutput{
			Enabled:         st.Enabled,
			TotalBackups:    st.TotalBackups,
			TotalOperations: st.TotalOperations,
			StorageMB:       st.StorageMB(),
			BackupRoot:      st.BackupRoot,
			LogFile:         st.LogPath,
		})
	}

	state := success("Enabled")
	if !st.Enabled {
		state = failure("Disabled")
	}

	printHeader(w, "System Status")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Status:\t%s\n", state)
	fmt.Fprintf(tw, "Total Backups:\t%d\n", st.TotalBackups)
	fmt.Fprintf(tw, "Total Operations:\t%d\n", st.TotalOperations)
	fmt.Fprintf(tw, "Storage Used:\t%.2f MB\n", st.StorageMB())
	fmt.Fprintf(tw, "Backup Directory:\t%s\n", st.BackupRoot)
	fmt.Fprintf(tw, "Operation Log:\t%s\n", st.LogPath)
	return tw.Flush()
}
