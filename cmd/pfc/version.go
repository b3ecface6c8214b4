package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/pfc"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of pfc",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pfc version %s\n", strings.TrimSpace(pfc.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
