package cli

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"quizdesk/internal/config"
	"quizdesk/internal/infra/sqlite"
)

// NewMigrateCmd applies local database migrations.
func NewMigrateCmd(configPath, dataDSN *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the local database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath, *dataDSN)
		},
	}
}

func runMigrations(ctx context.Context, configPath, dsnFlag string) error {
	dsn := dsnFlag
	if dsn == "" {
		if cfg, err := config.Load(configPath); err == nil {
			dsn = cfg.Storage.DSN
		}
	}

	db, err := sqlite.Open(dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := sqlite.Migrate(ctx, db); err != nil {
		return err
	}
	log.Printf("migrations applied")
	return nil
}
