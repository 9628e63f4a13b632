package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lampe2020/l2db/pkg/value"
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert <key> <type>",
	Short: "Convert a stored value to another type",
	Long: `Convert the value stored under a key to another type, in place.

Example:
  l2db convert count str`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		st, err := storeFromContext(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		v, err := st.Convert(args[0], value.Type(args[1]))
		if err != nil {
			fmt.Printf("Error converting value: %v\n", err)
			return
		}

		if err := flushIfNeeded(st); err != nil {
			fmt.Printf("Error writing database: %v\n", err)
			return
		}

		fmt.Printf("Converted key '%s' to %s:\n", args[0], v.Type())
		printValue(v)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
