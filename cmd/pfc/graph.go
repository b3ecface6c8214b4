package main

import (
	"fmt"

	"github.com/aretw0/pfc/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <chart>",
	Short: "Print a chart as a Mermaid flowchart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := open(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		c, err := s.engine.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		var overlay *graph.GraphOverlay
		if on, _ := cmd.Flags().GetBool("overlay"); on {
			overlay = graph.OverlayFromReport(s.engine.ValidateChart(cmd.Context(), c))
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(c, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("overlay", false, "Highlight nodes with validation findings")
}
