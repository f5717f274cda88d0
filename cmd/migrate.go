package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/expense-tracker/internal/database"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "apply the embedded sql migrations for the configured driver",
	}
	migrateRollback bool
	migrateList     bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.Flags().BoolVarP(&migrateList, "list", "l", false, "list the migration files without applying them")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg := mustLoad()

	if migrateList {
		files, err := database.MigrationFiles(cfg.Database.Driver)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
		return nil
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db.DB, cfg.Database.Driver, migrateRollback); err != nil {
		return err
	}

	logger.L().Info("migrations finished", "driver", cfg.Database.Driver, "rollback", migrateRollback)
	return nil
}
