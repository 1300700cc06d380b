package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/esgate/internal/cli"
	"github.com/aretw0/esgate/internal/presentation/tui"
	httpadapter "github.com/aretw0/esgate/pkg/adapters/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve line-delimited JSON-RPC on stdin/stdout",
	Long: `Reads one JSON-RPC request per line from stdin and writes one response per
line to stdout. Logs go to stderr. A "ready" notification is written first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
		return runServe(cmd, metricsAddr)
	},
}

func runServe(cmd *cobra.Command, metricsAddr string) error {
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

	if term.IsTerminal(int(os.Stdin.Fd())) {
		tui.NewPrinter(os.Stderr).Warn("stdin is a terminal: esgate expects one JSON-RPC request per line")
	}

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(gw.Gatherer(), promhttp.HandlerOpts{}))
		go func() {
			if err := httpadapter.ListenAndServe(ctx, metricsAddr, mux); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	logger.Info("serving JSON-RPC on stdio", "endpoint", cfg.Endpoint)
	return gw.Serve(ctx, os.Stdin, os.Stdout)
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("metrics-addr", "", "Also serve Prometheus metrics on this address (e.g. :2112)")
}
