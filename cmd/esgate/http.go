package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/esgate/internal/cli"
	httpadapter "github.com/aretw0/esgate/pkg/adapters/http"
)

var httpCmd = &cobra.Command{
	Use:   "http",
	Short: "Serve JSON-RPC over HTTP",
	Long:  `Exposes POST /rpc, GET /tools, GET /healthz and GET /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")

		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		gw, err := cli.NewGateway(ctx, cfg, logger, cli.GatewayOptions{})
		if err != nil {
			return err
		}
		defer gw.Close()

		return httpadapter.ListenAndServe(ctx, fmt.Sprintf(":%d", port), gw.HTTPHandler())
	},
}

func init() {
	rootCmd.AddCommand(httpCmd)
	httpCmd.Flags().Int("port", 8080, "Port to listen on")
}
