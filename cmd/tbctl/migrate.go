package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/c14220110/skrining-tb-backend/config"
	"github.com/c14220110/skrining-tb-backend/pkg/logger"
	"github.com/c14220110/skrining-tb-backend/pkg/storage/mariadb"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Membuat tabel Users dan Skrining bila belum ada",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		if cfg.DBUser == "" {
			return fmt.Errorf("DB_USER belum diisi")
		}

		zapLogger, err := logger.NewLogger(cfg.LogLevel, "console", "tbctl")
		if err != nil {
			return err
		}
		defer zapLogger.Sync()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		db, err := mariadb.Connect(ctx, cfg.DSN(), zapLogger)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := mariadb.Migrate(ctx, db); err != nil {
			return err
		}
		zapLogger.Info("Migrasi selesai", zap.String("database", cfg.DBName))
		return nil
	},
}
