package cmd

import (
	"fmt"
	"log"

	"world-sync/core/config"
	"world-sync/core/database"
	"world-sync/core/logger"

	"github.com/spf13/cobra"
)

// migrateCmd creates or updates the schema and verifies it.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer func() { _ = logg.Sync() }()

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return err
		}

		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		if err := database.Verify(db); err != nil {
			return err
		}

		logg.Info("Database schema is up to date")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
