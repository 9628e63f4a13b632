package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Delete a key",
	Long: `Delete a key from the database and print its former value.

Example:
  l2db delete mykey`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st, err := storeFromContext(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		former, err := st.Delete(args[0])
		if err != nil {
			fmt.Printf("Error deleting key: %v\n", err)
			return
		}

		if err := flushIfNeeded(st); err != nil {
			fmt.Printf("Error writing database: %v\n", err)
			return
		}

		fmt.Printf("Deleted key '%s', former value:\n", args[0])
		printValue(former)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
