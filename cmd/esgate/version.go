package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/esgate"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of esgate",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "esgate version %s\n", strings.TrimSpace(esgate.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
