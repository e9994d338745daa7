package main

import (
	"github.com/spf13/cobra"

	"bspace/internal/figures"
)

func newFiguresCmd() *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "figures",
		Short: "Build the per-figure data series from raw exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(input, output)
			return figures.WriteAll(cfg.Paths.InputDir, cfg.Paths.OutputDir)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "Path to the raw exports folder")
	cmd.Flags().StringVar(&output, "output", "", "Path to the figure series output folder")
	return cmd
}
