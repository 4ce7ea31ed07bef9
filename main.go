package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/c14220110/skrining-tb-backend/config"
	"github.com/c14220110/skrining-tb-backend/internal/routes"
	"github.com/c14220110/skrining-tb-backend/internal/screening/predictor"
	"github.com/c14220110/skrining-tb-backend/pkg/logger"
	"github.com/c14220110/skrining-tb-backend/pkg/storage/blob"
	"github.com/c14220110/skrining-tb-backend/pkg/storage/mariadb"
	"github.com/c14220110/skrining-tb-backend/pkg/utils"
	"github.com/c14220110/skrining-tb-backend/ws"
)

const serviceName = "skrining-tb-backend"

func main() {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Konfigurasi tidak valid: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, serviceName)
	if err != nil {
		log.Fatalf("Gagal membuat logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := mariadb.Connect(ctx, cfg.DSN(), zapLogger)
	if err != nil {
		zapLogger.Fatal("Gagal terhubung ke database", zap.Error(err))
	}
	defer db.Close()

	if err := mariadb.Migrate(ctx, db); err != nil {
		zapLogger.Fatal("Gagal migrasi skema", zap.Error(err))
	}

	store, err := newStore(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Gagal menyiapkan penyimpanan audio", zap.Error(err))
	}

	hub := ws.NewHub(zapLogger)
	go hub.Run(ctx)

	e := routes.NewServer(routes.Dependencies{
		Config:    cfg,
		DB:        db,
		Logger:    zapLogger,
		JWT:       utils.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL),
		Store:     store,
		Predictor: newPredictor(cfg, store, zapLogger),
		Hub:       hub,
	})

	go func() {
		zapLogger.Info("Server berjalan",
			zap.String("port", cfg.Port),
			zap.String("storage", cfg.StorageDriver),
			zap.String("predictor", cfg.PredictorDriver))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Server berhenti", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Mematikan server...")

	// prediksi yang sedang berjalan diberi waktu selesai
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.PredictTimeout+5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Shutdown tidak bersih", zap.Error(err))
	}
}

func newStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (blob.Store, error) {
	if cfg.StorageDriver == config.StorageMinio {
		return blob.NewMinioStore(ctx, blob.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		}, logger)
	}
	return blob.NewLocalStore(cfg.UploadDir, "/uploads")
}

func newPredictor(cfg *config.Config, store blob.Store, logger *zap.Logger) predictor.Predictor {
	if cfg.PredictorDriver == config.PredictorHTTP {
		return predictor.NewHTTPPredictor(cfg.PredictorURL, cfg.PredictTimeout, cfg.TempDir, store, logger)
	}
	return predictor.NewSubprocessPredictor(predictor.SubprocessConfig{
		Bin:           cfg.PythonPath,
		FallbackBin:   cfg.PythonFallback,
		Script:        cfg.PredictScript,
		Timeout:       cfg.PredictTimeout,
		MaxConcurrent: cfg.PredictMaxConcurrent,
		TempDir:       cfg.TempDir,
	}, store, logger)
}
