package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/pfc/pkg/chart"
	"github.com/aretw0/pfc/pkg/expression"
	"github.com/aretw0/pfc/pkg/schema"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file...>",
	Short: "Store chart records read from files",
	Long: `Reads chart records from .json, .yaml, .yml or .msgpack files, checks
that they restore into a chart and saves them in the configured store.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := open(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		for _, path := range args {
			rec, err := readRecord(path)
			if err != nil {
				return err
			}
			c, err := chart.Restore(rec, append(s.cfg.ChartOptions(), chart.WithExpressionParser(expression.Parser))...)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if err := s.engine.Save(cmd.Context(), c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s from %s\n", c.Name(), path)
		}
		return nil
	},
}

func readRecord(path string) (*schema.Chart, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "yml" {
		ext = "yaml"
	}
	codec, err := schema.CodecFor(ext)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rec, err := schema.Decode(codec, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

func init() {
	rootCmd.AddCommand(importCmd)
}
