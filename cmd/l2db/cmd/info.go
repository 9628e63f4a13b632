package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show database metadata",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		st, err := storeFromContext(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		info := st.Stat()
		fmt.Printf("Version:     %s\n", info.Version)
		fmt.Printf("Mode:        %s\n", info.Mode)
		if info.Path != "" {
			fmt.Printf("File:        %s\n", info.Path)
		}
		fmt.Printf("Keys:        %d\n", info.Keys)
		fmt.Printf("Locked:      %t\n", info.Locked)
		fmt.Printf("Dirty:       %t\n", info.Dirty)
		fmt.Printf("64-bit idx:  %t\n", info.X64)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
