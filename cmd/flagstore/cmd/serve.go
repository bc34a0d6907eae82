/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fagerli/flagstore/pkg/api"
	"github.com/fagerli/flagstore/pkg/config"
	"github.com/fagerli/flagstore/pkg/store"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server over the built tables",
	Long: `Start the flagstore REST API server. The server loads the table
files for one container and answers package and flag lookups, with
Prometheus metrics on /metrics.

Examples:
  flagstore serve --data-dir=./data/system
  flagstore serve --api-key=mysecretkey --port=8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		cfg := config.DefaultConfig()
		if config.ConfigExists(configPath) {
			var err error
			cfg, err = config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
		}

		// Flags override the config file
		if cmd.Flags().Changed("data-dir") {
			cfg.DataDir, _ = cmd.Flags().GetString("data-dir")
		}
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind") {
			cfg.Bind, _ = cmd.Flags().GetString("bind")
		}
		if cmd.Flags().Changed("api-key") {
			cfg.APIKey, _ = cmd.Flags().GetString("api-key")
		}

		if cfg.APIKey == "" {
			return fmt.Errorf("no API key configured (run 'flagstore init' or pass --api-key)")
		}

		flagStore, err := store.Open(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}

		cmd.Printf("serving container %s on %s:%d\n", flagStore.Container(), cfg.Bind, cfg.Port)
		return api.StartServer(flagStore, api.ServerConfig{
			Port:   cfg.Port,
			Bind:   cfg.Bind,
			APIKey: cfg.APIKey,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "0.0.0.0", "Address to bind")
	serveCmd.Flags().String("api-key", "", "API key for request authentication")
	serveCmd.Flags().String("config", "", "Configuration file path (defaults to the platform config dir)")
}
