package main

import (
	"log"
	"path/filepath"

	"github.com/spf13/cobra"

	"bspace/adapters/behaviorspace"
	"bspace/adapters/postgres"
	"bspace/domain/tidy"
	"bspace/internal/config"
	apperrors "bspace/internal/errors"
)

func newIngestCmd() *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "ingest <export.csv> [more exports...]",
		Short: "Parse exports and archive the tidy records in Postgres",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if dsn == "" {
				dsn = cfg.Database.URL
			}
			if dsn == "" {
				return apperrors.ConfigInvalid("no archive database configured: set --dsn or BSPACE_DATABASE_URL")
			}
			return runIngest(cmd, dsn, args)
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "Postgres connection string (overrides BSPACE_DATABASE_URL)")
	return cmd
}

func runIngest(cmd *cobra.Command, dsn string, paths []string) error {
	ctx := cmd.Context()

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	for _, path := range paths {
		table, layout, err := parseAny(path)
		if err != nil {
			return err
		}
		batch, err := store.SaveTable(ctx, filepath.Base(path), layout, table)
		if err != nil {
			return err
		}
		log.Printf("[ingest] archived %s as batch %s (%d records, layout %s)",
			path, batch.ID, batch.RecordCount, layout)
	}
	return nil
}

// parseAny tries the final-value entry point first and falls back to the
// time-series one, reporting which layout matched
func parseAny(path string) (*tidy.Table, string, error) {
	table, err := behaviorspace.ParseFinal(path)
	if err == nil {
		return table, "final", nil
	}
	if !apperrors.HasCode(err, apperrors.CodeUnsupportedLayout) {
		return nil, "", err
	}
	table, err = behaviorspace.ParseAllRunData(path)
	if err != nil {
		return nil, "", err
	}
	return table, "all run data", nil
}
