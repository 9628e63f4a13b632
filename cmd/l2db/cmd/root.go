/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/lampe2020/l2db/pkg/store"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "l2db",
	Short: "L2DB - file-backed key-value database",
	Long: `L2DB is an embedded key-value database stored in a single
binary container file, with typed values and in-place repair.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !cmdNeedsStore(cmd) {
			return nil
		}

		file, _ := cmd.Flags().GetString("file")
		mode, _ := cmd.Flags().GetString("mode")
		verbose, _ := cmd.Flags().GetBool("verbose")
		ignoreCorrupted, _ := cmd.Flags().GetBool("ignore-corrupted")

		var flags []string
		if verbose {
			flags = append(flags, store.FlagVerbose)
		}
		if ignoreCorrupted {
			flags = append(flags, store.FlagIgnoreCorrupted)
		}

		st, err := store.Open(file, store.Options{Mode: mode, Flags: flags})
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}

		// Store in command context
		cmd.SetContext(context.WithValue(cmd.Context(), storeKey, st))
		return nil
	},
}

type contextKey string

const storeKey contextKey = "store"

// cmdNeedsStore reports whether the invoked command operates on an
// opened database. serve and init manage their own setup.
func cmdNeedsStore(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "l2db", "serve", "init", "help", "completion":
		return false
	}
	return true
}

// storeFromContext fetches the database opened by the root command.
func storeFromContext(cmd *cobra.Command) (*store.Store, error) {
	st, ok := cmd.Context().Value(storeKey).(*store.Store)
	if !ok {
		return nil, fmt.Errorf("database not found in context")
	}
	return st, nil
}

// flushIfNeeded persists buffered changes back to the database file.
// Under file mode every mutation is already on disk.
func flushIfNeeded(st *store.Store) error {
	if st.Mode().Has(store.ModeFile) {
		return nil
	}
	return st.Flush()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("file", "f", "./data.l2db", "Database file")
	rootCmd.PersistentFlags().StringP("mode", "m", "rw", "Access mode (combination of r, w and f)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Emit diagnostic output")
	rootCmd.PersistentFlags().Bool("ignore-corrupted", false, "Open databases with reserved header bytes set")
}
