package main

import (
	"github.com/spf13/cobra"

	"bspace/ui"
)

func newServeCmd() *cobra.Command {
	var input, port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve parsed experiments and the run report for review",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(input, "")
			if port != "" {
				cfg.Server.Port = port
			}
			return ui.NewServer(cfg).Start()
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "Path to the raw exports folder")
	cmd.Flags().StringVar(&port, "port", "", "Port to listen on")
	return cmd
}
