package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/esgate/internal/config"
	"github.com/aretw0/esgate/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "esgate",
	Short: "esgate is a read-only, policy-mediated gateway to Elasticsearch for AI agents",
	Long: `esgate exposes a small set of search tools over JSON-RPC, MCP and HTTP.
Every request is resolved against an index alias registry, checked against an
allow-list, given a default time range and a bounded size before it reaches the
cluster. Without a subcommand it runs "serve".`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, "")
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// stdout belongs to the protocol.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML configuration file (default $ES_CONFIG)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Debug logging and error traces (same as ES_VERBOSE=true)")
}

// setup loads the configuration and installs the process logger.
func setup(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}
	if verbose {
		cfg.Verbose = true
	}

	logger := logging.New(cfg.Verbose)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
