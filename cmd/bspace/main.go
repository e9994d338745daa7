package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"bspace/internal/config"
)

var version = "0.1.0-dev"

func main() {
	if err := godotenv.Load(); err == nil {
		log.Printf("[bspace] loaded configuration from .env")
	}

	rootCmd := &cobra.Command{
		Use:   "bspace",
		Short: "Parse BehaviorSpace exports and build manuscript tables and figures",
		Long: `bspace normalizes NetLogo BehaviorSpace spreadsheet exports into tidy
tables and produces the summary workbook, the figure data series, and a
review surface over a directory of raw exports.`,
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newTablesCmd(),
		newFiguresCmd(),
		newIngestCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("bspace version %s\n", version)
		},
	}
}

// loadConfig applies flag overrides on top of the environment config
func loadConfig(input, output string) *config.Config {
	cfg := config.Load()
	if input != "" {
		cfg.Paths.InputDir = input
	}
	if output != "" {
		cfg.Paths.OutputDir = output
	}
	return cfg
}
