package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var unlock bool

// lockCmd represents the lock command
var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Lock or unlock the database",
	Long: `Set the lock flag so the database can only be opened read-only
from its file, or clear it again with --unlock.

Example:
  l2db lock
  l2db lock --unlock`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		st, err := storeFromContext(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		if err := st.SetLocked(!unlock); err != nil {
			fmt.Printf("Error changing lock flag: %v\n", err)
			return
		}

		if err := flushIfNeeded(st); err != nil {
			fmt.Printf("Error writing database: %v\n", err)
			return
		}

		if unlock {
			fmt.Println("Database unlocked")
		} else {
			fmt.Println("Database locked")
		}
	},
}

func init() {
	rootCmd.AddCommand(lockCmd)
	lockCmd.Flags().BoolVar(&unlock, "unlock", false, "Clear the lock flag instead of setting it")
}
