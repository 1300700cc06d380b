package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/esgate/internal/cli"
	"github.com/aretw0/esgate/internal/presentation/tui"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Describe the available tools and their arguments",
	RunE: func(cmd *cobra.Command, args []string) error {
		style, _ := cmd.Flags().GetString("style")

		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		gw, err := cli.NewGateway(context.Background(), cfg, logger, cli.GatewayOptions{DryRun: true})
		if err != nil {
			return err
		}
		defer gw.Close()

		md := tui.CatalogMarkdown(gw.Tools())
		render, err := tui.NewRenderer(style)
		if err != nil {
			// Fall back to raw markdown.
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}
		out, err := render(md)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.Flags().String("style", "", "Glamour style (dark, light, notty); detected when empty")
}
