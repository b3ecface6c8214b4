package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reduceCmd = &cobra.Command{
	Use:   "reduce <chart>",
	Short: "Remove null nodes from a stored chart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := open(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		removed, err := s.engine.Reduce(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: removed %d node(s)\n", args[0], removed)
		return nil
	},
}

var flattenCmd = &cobra.Command{
	Use:   "flatten <chart>",
	Short: "Splice nested action charts into their steps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := open(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.engine.Flatten(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: flattened\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reduceCmd, flattenCmd)
}
