package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/storefront-api/internal/config"
	"github.com/spec-kit/storefront-api/internal/observability"
	"github.com/spec-kit/storefront-api/internal/persistence"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  `Apply the embedded SQL migrations to the database named by POSTGRES_DSN.`,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	pgCfg, err := config.LoadPostgres()
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(config.LoggerConfig{Level: "info"}, config.AppConfig{Name: "storefront-api-migrate"})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := cmd.Context()
	pg, err := persistence.NewPostgres(ctx, pgCfg, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	if err := pg.Migrate(ctx, logger); err != nil {
		return err
	}
	cmd.Println("Migrations completed successfully")
	return nil
}
