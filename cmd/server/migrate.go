package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/iliyamo/fitness-tracker/internal/config"
	"github.com/iliyamo/fitness-tracker/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Prepare the document store",
	Long:  `Creates the documents table on MySQL or the lookup indexes on MongoDB. The in-memory store needs nothing.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()
		setLogLevel(cfg.LogLevel)

		store, err := database.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer store.Close(cmd.Context()) //nolint: errcheck

		if err := database.Migrate(cmd.Context(), store); err != nil {
			return fmt.Errorf("failed to migrate %s store: %w", cfg.StoreDriver, err)
		}
		log.Info("migrations completed", "driver", cfg.StoreDriver)
		return nil
	},
}
