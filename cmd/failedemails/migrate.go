package main

import (
	"fmt"

	"github.com/kursadbilgin/failedemails-report/internal/infra/database/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables and indexes the report reads",
		Long: `Create the event log, user and plugin config tables when they are
missing, add the event name index and install default settings.

Existing platform tables are left untouched.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := migrations.Migrate(rt.db); err != nil {
				rt.logger.Error("database migrations failed", zap.Error(err))
				return fmt.Errorf("database migrations failed: %w", err)
			}

			rt.logger.Info("database migrations applied",
				zap.String("driver", rt.cfg.DatabaseDriver),
				zap.String("tablePrefix", rt.cfg.TablePrefix),
			)
			return nil
		},
	}
}
