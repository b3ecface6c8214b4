package main

import (
	"fmt"

	"github.com/aretw0/pfc/internal/presentation/report"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [chart...]",
	Short: "Validate stored charts",
	Long: `Validates the named charts, or every stored chart when none is given.
The command fails when any chart is invalid.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := open(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		reports, err := s.engine.ValidateAll(cmd.Context(), args...)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		if err := report.NewPrinter(cmd.OutOrStdout(), format).PrintReports(reports...); err != nil {
			return err
		}

		invalid := 0
		for _, r := range reports {
			if !r.Valid {
				invalid++
			}
		}
		if invalid > 0 {
			return fmt.Errorf("%d of %d chart(s) invalid", invalid, len(reports))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("format", "f", "text", "Output format: text, json or markdown")
	validateCmd.Flags().Int("workers", 4, "Concurrent validations")
	validateCmd.Flags().Bool("nested", true, "Validate nested action charts")
}
