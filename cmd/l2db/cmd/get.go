package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lampe2020/l2db/pkg/value"
)

var getType string

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a value for a key",
	Long: `Get a value for a key from the database. With --type the value
is converted before printing, without touching the stored entry.

Example:
  l2db get mykey
  l2db get mykey --type str`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st, err := storeFromContext(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		v, err := st.Read(args[0], value.Type(getType))
		if err != nil {
			fmt.Printf("Error getting value: %v\n", err)
			return
		}

		printValue(v)
	},
}

func printValue(v value.Value) {
	switch v.Type() {
	case value.TypeRaw:
		fmt.Printf("%x\n", v.Bytes())
	case value.TypeNull:
		fmt.Println("null")
	default:
		fmt.Printf("%v\n", v.Interface())
	}
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().StringVarP(&getType, "type", "t", "", "Convert the value to this type before printing")
}
