package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SlpAus/fame-list-backend/internal/platform/config"
	"github.com/SlpAus/fame-list-backend/internal/platform/logger"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "famelist",
	Short: "Fame List backend",
	Long: `Fame List backend: lists profiles from the hosted profile store,
counts views once per visitor and relays admin, upload and complaint calls.

Available subcommands:
  serve    - Run the HTTP API
  profiles - Print the current list sorted by caste`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "directory containing config.yaml")
	rootCmd.AddCommand(serveCmd, profilesCmd)
}

// loadConfig 加载配置并初始化全局logger
func loadConfig() (*config.Config, error) {
	var paths []string
	if configDir != "" {
		paths = append(paths, configDir)
	}
	cfg, err := config.LoadConfig(paths...)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
