/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lampe2020/l2db/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize an L2DB server configuration",
	Long: `Initialize a server configuration for local development.

This command will:
- Create the configuration directory
- Generate a secure API key
- Write a config file pointing at the database file

Examples:
  l2db init
  l2db init --config ./l2db.yaml --file ./data.l2db`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		file, _ := cmd.Flags().GetString("file")
		force, _ := cmd.Flags().GetBool("force")

		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		if config.ConfigExists(configPath) && !force {
			cmd.Printf("Configuration already exists at %s. Use --force to overwrite.\n", configPath)
			return
		}

		cfg, err := config.BootstrapConfig(configPath, file)
		if err != nil {
			cmd.Printf("Error writing configuration: %v\n", err)
			os.Exit(1)
		}

		cmd.Printf("Configuration written to %s\n", configPath)
		cmd.Printf("Database file: %s\n", cfg.File)
		cmd.Printf("API key: %s\n", cfg.Security.APIKey)
		cmd.Printf("Keep the API key secret; clients send it in the X-API-Key header.\n")
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("config", "", "Path for the generated config file")
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
}
