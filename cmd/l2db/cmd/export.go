package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lampe2020/l2db/pkg/migrate"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <pebble-dir>",
	Short: "Export the database into a pebble directory",
	Long: `Export every entry of the database into a pebble database at the
given directory, creating it if needed.

Example:
  l2db export ./export.pebble`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st, err := storeFromContext(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		n, err := migrate.Export(st, args[0])
		if err != nil {
			fmt.Printf("Error exporting: %v\n", err)
			return
		}

		fmt.Printf("Exported %d entries to %s\n", n, args[0])
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
