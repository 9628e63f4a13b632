package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var dumpBinary bool

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the whole database",
	Long: `Dump every entry of the database as "key <tab> type <tab> value"
lines. With --binary the serialized container is written to stdout
instead, suitable for redirecting into a file.

Example:
  l2db dump
  l2db dump --binary > backup.l2db`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		st, err := storeFromContext(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		if dumpBinary {
			data, err := st.DumpBin()
			if err != nil {
				fmt.Printf("Error serializing database: %v\n", err)
				return
			}
			os.Stdout.Write(data)
			return
		}

		entries, err := st.Dump()
		if err != nil {
			fmt.Printf("Error dumping database: %v\n", err)
			return
		}
		for _, key := range st.Keys() {
			v := entries[key]
			fmt.Printf("%s\t%s\t%v\n", key, v.Type(), v.Interface())
		}
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().BoolVar(&dumpBinary, "binary", false, "Write the serialized container instead of text")
}
