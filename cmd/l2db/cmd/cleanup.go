package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var (
	cleanupOnlyFlag   bool
	cleanupDontRescue bool
)

// cleanupCmd represents the cleanup command
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Repair a dirty database",
	Long: `Repair a database flagged as dirty. Damaged entries are converted
to the closest type that still decodes, falling back to raw bytes.
With --dont-rescue damaged entries are discarded instead; with
--only-flag the dirty flag is cleared without touching entries.

Example:
  l2db cleanup
  l2db cleanup --dont-rescue`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		st, err := storeFromContext(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		report, err := st.Cleanup(cleanupOnlyFlag, cleanupDontRescue)
		if err != nil {
			fmt.Printf("Error cleaning up: %v\n", err)
			return
		}

		if err := flushIfNeeded(st); err != nil {
			fmt.Printf("Error writing database: %v\n", err)
			return
		}

		if len(report) == 0 {
			fmt.Println("Nothing to repair")
			return
		}
		diags := make([]string, 0, len(report))
		for d := range report {
			diags = append(diags, d)
		}
		sort.Strings(diags)
		for _, d := range diags {
			fmt.Printf("%s: %s\n", d, report[d])
		}
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().BoolVar(&cleanupOnlyFlag, "only-flag", false, "Clear the dirty flag without repairing entries")
	cleanupCmd.Flags().BoolVar(&cleanupDontRescue, "dont-rescue", false, "Discard damaged entries instead of repairing them")
}
