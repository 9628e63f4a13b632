/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lampe2020/l2db/pkg/api"
	"github.com/lampe2020/l2db/pkg/config"
	"github.com/lampe2020/l2db/pkg/store"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the L2DB REST API server.

Settings come from the config file written by 'l2db init'; flags
override individual values.

Examples:
  l2db serve
  l2db serve --config ./l2db.yaml --port 9000
  l2db serve --api-key mysecretkey`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		port, _ := cmd.Flags().GetInt("port")
		apiKey, _ := cmd.Flags().GetString("api-key")

		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		var cfg *config.Config
		if config.ConfigExists(configPath) {
			var err error
			cfg, err = config.LoadConfig(configPath)
			if err != nil {
				cmd.Printf("Error loading config: %v\n", err)
				os.Exit(1)
			}
		} else {
			cfg = config.DefaultConfig()
		}

		if port != 0 {
			cfg.Port = port
		}
		if apiKey != "" {
			cfg.Security.APIKey = apiKey
		}
		if file, _ := cmd.Flags().GetString("file"); cmd.Flags().Changed("file") {
			cfg.File = file
		}
		if mode, _ := cmd.Flags().GetString("mode"); cmd.Flags().Changed("mode") {
			cfg.Mode = mode
		}

		if cfg.Security.APIKey == "" || cfg.Security.APIKey == "auto" {
			cmd.Println("Error: no API key configured, run 'l2db init' or pass --api-key")
			os.Exit(1)
		}

		st, err := store.Open(cfg.File, store.Options{Mode: cfg.Mode})
		if err != nil {
			cmd.Printf("Error opening database: %v\n", err)
			os.Exit(1)
		}

		serverConfig := api.ServerConfig{
			Port:   cfg.Port,
			Bind:   cfg.Bind,
			APIKey: cfg.Security.APIKey,
		}
		if err := api.StartServer(st, serverConfig); err != nil {
			cmd.Printf("Server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("config", "", "Path to the config file")
	serveCmd.Flags().Int("port", 0, "Port to listen on")
	serveCmd.Flags().String("api-key", "", "API key clients must present")
}
