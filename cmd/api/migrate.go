package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/pkordes/bookmarks/migrations"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate up|down|status",
	Short:     "Apply, roll back, or list schema migrations",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		provider, err := newMigrationProvider(db)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		switch args[0] {
		case "up":
			return migrateUp(ctx, provider, logger)
		case "down":
			res, err := provider.Down(ctx)
			if err != nil {
				return fmt.Errorf("migrate down: %w", err)
			}
			logger.Info("migration rolled back", "version", res.Source.Version, "duration", res.Duration)
			return nil
		default:
			statuses, err := provider.Status(ctx)
			if err != nil {
				return fmt.Errorf("migrate status: %w", err)
			}
			for _, s := range statuses {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8d %-8s %s\n", s.Source.Version, s.State, s.Source.Path)
			}
			return nil
		}
	},
}

func newMigrationProvider(db *sql.DB) (*goose.Provider, error) {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return nil, fmt.Errorf("migration provider: %w", err)
	}
	return provider, nil
}

// migrateUp applies every pending migration and logs each one.
func migrateUp(ctx context.Context, provider *goose.Provider, logger *slog.Logger) error {
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	for _, res := range results {
		logger.Info("migration applied", "version", res.Source.Version, "duration", res.Duration)
	}
	if len(results) == 0 {
		logger.Info("database schema is up to date")
	}
	return nil
}
