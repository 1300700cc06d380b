package main

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/esgate/internal/cli"
	"github.com/aretw0/esgate/internal/presentation/tui"
)

var errRejected = errors.New("request rejected")

var checkCmd = &cobra.Command{
	Use:   "check <tool> [arguments-json]",
	Short: "Dry-run a tool call and print the backend request it would send",
	Long: `Runs the full mediation pipeline against a recording backend. Nothing is sent
to Elasticsearch and no credentials are needed. Exits non-zero when the request is
rejected.`,
	Example: `  esgate check search '{"index":"keikakuhoshin,kouhou"}'
  esgate check esql '{"query":"FROM kouhou | LIMIT 5"}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		gw, err := cli.NewGateway(context.Background(), cfg, logger, cli.GatewayOptions{DryRun: true})
		if err != nil {
			return err
		}
		defer gw.Close()

		raw := ""
		if len(args) == 2 {
			raw = args[1]
		}
		toolArgs, err := cli.ParseArgs(raw)
		if err != nil {
			return err
		}

		report, err := cli.Check(cmd.Context(), gw, strings.TrimSpace(args[0]), toolArgs)
		if err != nil {
			return err
		}
		cli.PrintReport(tui.NewPrinter(cmd.OutOrStdout()), report)
		if !report.Accepted() {
			return errRejected
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
