package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fekuna/omnipos-invoice-service/config"
	"github.com/fekuna/omnipos-invoice-service/internal/database"
	"github.com/fekuna/omnipos-invoice-service/internal/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "invoice-service",
	Short: "Invoice editing, totals and persistence service",
	Long: `invoice-service computes invoice line totals, reconciles free-text
items against the product catalog, numbers new invoices and stores them.

Configuration is read from the environment (a .env file is loaded if present).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(func() {
		_ = godotenv.Load()
	})
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func newLogger(cfg *config.Config) logger.ZapLogger {
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development",
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	return logger.NewZapLogger(logConfig)
}

func openDatabase(cfg *config.Config, log logger.ZapLogger) (*sqlx.DB, error) {
	db, err := database.New(&database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Database.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	log.Info("Connected to database",
		zap.String("driver", cfg.Database.Driver),
		zap.String("db_name", cfg.Database.DBName),
	)
	return db, nil
}
