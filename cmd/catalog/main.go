package main

import (
	"fmt"
	"os"

	"github.com/matst80/slask-catalog/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	envFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:           "catalog",
	Short:         "Catalog filter service and tooling",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "env file to load before the process environment")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd, filterCmd, publishCmd)
}

// loadConfig reads settings and builds the logger for a command.
func loadConfig() (config.Config, *zap.Logger, error) {
	var cfg config.Config
	if envFile != "" {
		cfg = config.Load(envFile)
	} else {
		cfg = config.Load()
	}
	cfg.Debug = cfg.Debug || debug
	logger, err := cfg.Logger()
	if err != nil {
		return cfg, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, logger, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
