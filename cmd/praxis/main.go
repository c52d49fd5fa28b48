// Package main is the entry point for the praxis CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/praxisops/praxis/internal/config"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "praxis",
		Short: "Praxis operations platform",
		Long:  `Praxis bundles a knowledge store, an ops controller, a quality gate, and a catalog query service behind one CLI.`,
	}

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(scanCmd())
	cmd.AddCommand(persistCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from .env file and environment variables.
func loadConfig(envFile string) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
