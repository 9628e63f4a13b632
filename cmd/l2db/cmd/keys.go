package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// keysCmd represents the keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List all keys",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		st, err := storeFromContext(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		for _, key := range st.Keys() {
			fmt.Println(key)
		}
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
}
