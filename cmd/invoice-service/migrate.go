package main

import (
	"github.com/fekuna/omnipos-invoice-service/config"
	"github.com/fekuna/omnipos-invoice-service/internal/database"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the invoice service tables",
	Long: `Apply the embedded schema for the configured DB_DRIVER (postgres or mysql).
Statements are idempotent, so running migrate twice is safe.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadEnv()
		log := newLogger(cfg)
		defer log.Sync()

		db, err := openDatabase(cfg, log)
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := database.Migrate(cmd.Context(), db)
		if err != nil {
			return err
		}
		log.Info("Migrations applied", zap.Int("files", n))
		return nil
	},
}
