package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/esgate/internal/presentation/graph"
	"github.com/aretw0/esgate/internal/presentation/tui"
)

var indicesCmd = &cobra.Command{
	Use:   "indices",
	Short: "List the index aliases and whether the allow-list admits them",
	RunE: func(cmd *cobra.Command, args []string) error {
		asMermaid, _ := cmd.Flags().GetBool("mermaid")

		cfg, _, err := setup(cmd)
		if err != nil {
			return err
		}
		p, err := cfg.Policy()
		if err != nil {
			return err
		}

		if asMermaid {
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(p.Registry.Aliases(), p.AllowList.Allows))
			return nil
		}

		printer := tui.NewPrinter(cmd.OutOrStdout())
		for _, a := range p.Registry.Aliases() {
			verdict := "allowed"
			if _, err := p.AllowList.CheckAll(a.Index); err != nil {
				verdict = "denied"
			}
			printer.Field(a.Name, fmt.Sprintf("%s (%s)", a.Index, verdict))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indicesCmd)
	indicesCmd.Flags().Bool("mermaid", false, "Print the registry as a Mermaid flowchart")
}
