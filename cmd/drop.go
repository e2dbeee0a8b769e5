package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var dropForce bool

// dropCmd deletes the roster file.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the roster",
	Long:  "Permanently delete the roster file (YAML document or SQLite database). All tracked players will be forgotten.",
	Args:  cobra.NoArgs,
	RunE:  runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
}

func runDrop(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}
	path := cfg.RosterPath

	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", path)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(os.Stdout, "Roster does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove roster: %w", err)
	}
	// SQLite WAL side files; absent for the YAML backend.
	os.Remove(path + "-wal")
	os.Remove(path + "-shm")
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", path)
	return nil
}
