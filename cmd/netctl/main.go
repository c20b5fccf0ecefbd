// Package main provides netctl, the operator CLI for the contact network:
// synthetic data generation, bulk ingestion into Neo4j and offline path
// calculation over snapshot files.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cultivatehq/cultivate/backend/internal/config"
	"github.com/cultivatehq/cultivate/backend/internal/logging"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "netctl"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	logLevel  string
	logFormat string
}

func (g *globalFlags) logger(cmd *cobra.Command) *slog.Logger {
	return logging.NewWithWriter(config.LoggingConfig{
		Level:  g.logLevel,
		Format: g.logFormat,
	}, cmd.ErrOrStderr())
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Contact network tooling",
		Long: `netctl works with the contact network outside the API server.

It provides:
- generate: write a synthetic contacts/connections dataset
- ingest:   load a dataset into the Neo4j graph store
- paths:    compute connection paths from a JSON or YAML snapshot file`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text", "Log format (text, json)")

	cmd.AddCommand(generateCmd(flags))
	cmd.AddCommand(ingestCmd(flags))
	cmd.AddCommand(pathsCmd(flags))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}
