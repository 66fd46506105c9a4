package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/claudeguard/internal/config"
	"github.com/thoreinstein/claudeguard/internal/errors"
	"github.com/thoreinstein/claudeguard/internal/paths"
	"github.com/thoreinstein/claudeguard/pkg/fileutil"
)

var (
	initForce  bool
	initGlobal bool
)

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing configuration")
	initCmd.Flags().BoolVar(&initGlobal, "global", false, "Write the user-wide config instead of the project config")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize claudeguard configuration",
	Long: `Write the default configuration and create the backup and log
directories.

The project config is .claudeguard/config.yaml. With --global the
user-wide config is written instead; it applies to every project without
its own config file.`,
	Example: `  # Initialize the current project
  claudeguard init

  # Replace a broken config with defaults
  claudeguard init --force

  # Write the user-wide defaults
  claudeguard init --global`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, _ []string) error {
	target := projectLayout.ConfigPath()
	if initGlobal {
		target = filepath.Join(paths.GlobalConfigDir(), paths.ConfigFileName)
	}
	return runInitWithWriter(cmd.OutOrStdout(), projectLayout, target, initForce)
}

func runInitWithWriter(w io.Writer, layout paths.Layout, target string, force bool) error {
	if _, err := os.Stat(target); err == nil && !force {
		fmt.Fprintf(w, "Configuration already exists at %s\n", target)
		fmt.Fprintln(w, "Use --force to overwrite")
		return nil
	}

	if err := paths.EnsureDir(filepath.Dir(target), 0); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	if err := fileutil.AtomicWriteYAML(target, config.Default()); err != nil {
		return errors.Wrap(err, "writing config file")
	}
	fmt.Fprintf(w, "Created %s\n", target)

	if err := layout.Ensure(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Backups will be stored in %s\n", layout.BackupRoot())
	return nil
}
