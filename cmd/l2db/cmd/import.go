package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lampe2020/l2db/pkg/migrate"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <pebble-dir>",
	Short: "Import entries from a pebble directory",
	Long: `Import every entry of the pebble database at the given directory,
overwriting keys that already exist.

Example:
  l2db import ./export.pebble`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st, err := storeFromContext(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		n, err := migrate.Import(st, args[0])
		if err != nil {
			fmt.Printf("Error importing: %v\n", err)
			return
		}

		if err := flushIfNeeded(st); err != nil {
			fmt.Printf("Error writing database: %v\n", err)
			return
		}

		fmt.Printf("Imported %d entries from %s\n", n, args[0])
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
