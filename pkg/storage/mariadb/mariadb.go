package mariadb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// Connect membuka koneksi ke MariaDB/MySQL dan memastikan database dapat dijangkau.
func Connect(ctx context.Context, dsn string, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("gagal membuka koneksi ke database: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(60 * time.Second)
	db.SetConnMaxLifetime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("gagal melakukan ping ke database: %w", err)
	}

	logger.Info("Berhasil terhubung ke MariaDB.")
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS Users (
		ID_User BIGINT AUTO_INCREMENT PRIMARY KEY,
		Username VARCHAR(64) NOT NULL UNIQUE,
		Password VARCHAR(255) NOT NULL,
		Nama_Lengkap VARCHAR(100) NULL,
		No_Telp VARCHAR(20) NULL,
		Usia INT NULL,
		Tinggi_Badan DOUBLE NULL,
		Berat_Badan DOUBLE NULL,
		Pendidikan VARCHAR(50) NULL,
		Pekerjaan VARCHAR(50) NULL,
		Jumlah_Anggota_Keluarga INT NULL,
		Created_At DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS Skrining (
		ID_Skrining BIGINT AUTO_INCREMENT PRIMARY KEY,
		ID_User BIGINT NULL,
		Nama VARCHAR(100) NOT NULL,
		Usia INT NOT NULL DEFAULT 0,
		No_Telp VARCHAR(20) NULL,
		Data_Skrining JSON NOT NULL,
		Total_Score INT NOT NULL,
		Pita_Lila VARCHAR(10) NOT NULL,
		Rekomendasi VARCHAR(255) NOT NULL,
		Audio_File_Path VARCHAR(512) NULL,
		Audio_Public_ID VARCHAR(255) NULL,
		AI_Probability VARCHAR(32) NOT NULL DEFAULT '0',
		AI_Analysis VARCHAR(64) NOT NULL DEFAULT '-',
		Tanggal_Skrining DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_skrining_user (ID_User, Tanggal_Skrining),
		CONSTRAINT fk_skrining_user FOREIGN KEY (ID_User) REFERENCES Users(ID_User) ON DELETE SET NULL
	)`,
}

// Migrate membuat tabel yang dibutuhkan bila belum ada.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("gagal migrasi skema: %w", err)
		}
	}
	return nil
}
