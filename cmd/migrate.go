package cmd

import (
	"fmt"

	"chatledger/internal/adapter/outbound/repository"
	"chatledger/internal/application/common/slogger"

	"github.com/spf13/cobra"
)

// newMigrateCmd creates and returns the migrate command.
func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Create the request ledger schema in PostgreSQL.

This command creates the configured schema, the requests table and its indexes.
It is safe to run repeatedly. Configuration for the database connection is
loaded from config files and environment variables.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := repository.NewDatabaseConnection(ctx, databaseConfig(cfg.Database))
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := repository.Migrate(ctx, pool, cfg.Database.Schema); err != nil {
				return err
			}

			slogger.Info(ctx, "Database migrated", slogger.Fields{
				"database": cfg.Database.Name,
				"schema":   cfg.Database.Schema,
			})
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Schema %s is up to date\n", cfg.Database.Schema)
			return err
		},
	}
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration
	rootCmd.AddCommand(newMigrateCmd())
}
