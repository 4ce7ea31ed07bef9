package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/c14220110/skrining-tb-backend/internal/screening/models"
	"github.com/c14220110/skrining-tb-backend/pkg/utils"
)

// SkriningRepository membaca dan menulis tabel Skrining.
type SkriningRepository struct {
	DB *sql.DB
}

func NewSkriningRepository(db *sql.DB) *SkriningRepository {
	return &SkriningRepository{DB: db}
}

const selectSkrining = `
	SELECT s.ID_Skrining, s.ID_User, u.Username, s.Nama, s.Usia, s.No_Telp, s.Data_Skrining,
		s.Total_Score, s.Pita_Lila, s.Rekomendasi, s.Audio_File_Path, s.Audio_Public_ID,
		s.AI_Probability, s.AI_Analysis, s.Tanggal_Skrining
	FROM Skrining s
	LEFT JOIN Users u ON u.ID_User = s.ID_User
`

// Save menyimpan hasil skrining dan mengembalikan ID baru.
func (r *SkriningRepository) Save(ctx context.Context, rec *models.Skrining) (int64, error) {
	data, err := json.Marshal(rec.DataSkrining)
	if err != nil {
		return 0, fmt.Errorf("gagal encode data skrining: %w", err)
	}
	if rec.TanggalSkrining.IsZero() {
		rec.TanggalSkrining = time.Now()
	}

	var audioPath, audioID sql.NullString
	if rec.Audio != nil {
		audioPath = sql.NullString{String: rec.Audio.Location, Valid: true}
		audioID = sql.NullString{String: rec.Audio.Handle, Valid: rec.Audio.Handle != ""}
	}

	query := `
		INSERT INTO Skrining (ID_User, Nama, Usia, No_Telp, Data_Skrining, Total_Score, Pita_Lila,
			Rekomendasi, Audio_File_Path, Audio_Public_ID, AI_Probability, AI_Analysis, Tanggal_Skrining)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := r.DB.ExecContext(ctx, query,
		nullInt64(rec.IDUser),
		rec.Nama,
		rec.Usia,
		rec.NoTelp,
		string(data),
		rec.TotalScore,
		string(rec.PitaLila),
		rec.Rekomendasi,
		audioPath,
		audioID,
		rec.AIProbability,
		rec.AIAnalysis,
		rec.TanggalSkrining,
	)
	if err != nil {
		return 0, fmt.Errorf("gagal menyimpan skrining: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("gagal membaca ID skrining: %w", err)
	}
	rec.IDSkrining = id
	return id, nil
}

// FindByOwner mengembalikan riwayat skrining milik user, terbaru lebih dulu.
func (r *SkriningRepository) FindByOwner(ctx context.Context, userID int64) ([]models.Skrining, error) {
	return r.query(ctx, selectSkrining+" WHERE s.ID_User = ? ORDER BY s.Tanggal_Skrining DESC, s.ID_Skrining DESC", userID)
}

// FindAll mengembalikan seluruh skrining beserta username pemiliknya, terbaru lebih dulu.
func (r *SkriningRepository) FindAll(ctx context.Context) ([]models.Skrining, error) {
	return r.query(ctx, selectSkrining+" ORDER BY s.Tanggal_Skrining DESC, s.ID_Skrining DESC")
}

// FindByID mengembalikan satu skrining beserta username pemiliknya.
func (r *SkriningRepository) FindByID(ctx context.Context, id int64) (*models.Skrining, error) {
	list, err := r.query(ctx, selectSkrining+" WHERE s.ID_Skrining = ?", id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, utils.ErrNotFound
	}
	return &list[0], nil
}

// DeleteByID menghapus satu skrining dan mengembalikan referensi audionya (nil bila tanpa audio).
func (r *SkriningRepository) DeleteByID(ctx context.Context, id int64) (*models.AudioReference, error) {
	return r.deleteOne(ctx, "ID_Skrining = ?", id)
}

// DeleteOwned hanya menghapus bila skrining dimiliki userID.
func (r *SkriningRepository) DeleteOwned(ctx context.Context, id, userID int64) (*models.AudioReference, error) {
	return r.deleteOne(ctx, "ID_Skrining = ? AND ID_User = ?", id, userID)
}

func (r *SkriningRepository) deleteOne(ctx context.Context, where string, args ...interface{}) (*models.AudioReference, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	var path, handle sql.NullString
	err = tx.QueryRowContext(ctx, "SELECT Audio_File_Path, Audio_Public_ID FROM Skrining WHERE "+where+" FOR UPDATE", args...).
		Scan(&path, &handle)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrNotFound
		}
		return nil, fmt.Errorf("gagal membaca skrining: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM Skrining WHERE "+where, args...); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("gagal menghapus skrining: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return audioRef(path, handle), nil
}

// DeleteMany menghapus beberapa skrining sekaligus dan mengembalikan jumlah baris
// serta referensi audio yang perlu dibersihkan.
func (r *SkriningRepository) DeleteMany(ctx context.Context, ids []int64) (int64, []models.AudioReference, error) {
	if len(ids) == 0 {
		return 0, nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, nil, err
	}

	rows, err := tx.QueryContext(ctx, "SELECT Audio_File_Path, Audio_Public_ID FROM Skrining WHERE ID_Skrining IN ("+placeholders+") FOR UPDATE", args...)
	if err != nil {
		tx.Rollback()
		return 0, nil, fmt.Errorf("gagal membaca skrining: %w", err)
	}
	var refs []models.AudioReference
	for rows.Next() {
		var path, handle sql.NullString
		if err := rows.Scan(&path, &handle); err != nil {
			rows.Close()
			tx.Rollback()
			return 0, nil, err
		}
		if ref := audioRef(path, handle); ref != nil {
			refs = append(refs, *ref)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		tx.Rollback()
		return 0, nil, err
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM Skrining WHERE ID_Skrining IN ("+placeholders+")", args...)
	if err != nil {
		tx.Rollback()
		return 0, nil, fmt.Errorf("gagal menghapus skrining: %w", err)
	}
	affected, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, nil, err
	}
	return affected, refs, nil
}

func (r *SkriningRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.Skrining, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("gagal mengambil data skrining: %w", err)
	}
	defer rows.Close()

	list := []models.Skrining{}
	for rows.Next() {
		var (
			s            models.Skrining
			idUser       sql.NullInt64
			username     sql.NullString
			noTelp       sql.NullString
			data         []byte
			pita         string
			path, handle sql.NullString
		)
		if err := rows.Scan(&s.IDSkrining, &idUser, &username, &s.Nama, &s.Usia, &noTelp, &data,
			&s.TotalScore, &pita, &s.Rekomendasi, &path, &handle,
			&s.AIProbability, &s.AIAnalysis, &s.TanggalSkrining); err != nil {
			return nil, err
		}
		if idUser.Valid {
			id := idUser.Int64
			s.IDUser = &id
		}
		if username.Valid {
			u := username.String
			s.Username = &u
		}
		s.NoTelp = noTelp.String
		s.PitaLila = models.PitaLila(pita)
		s.Audio = audioRef(path, handle)
		if len(data) > 0 {
			if err := json.Unmarshal(data, &s.DataSkrining); err != nil {
				return nil, fmt.Errorf("data skrining %d rusak: %w", s.IDSkrining, err)
			}
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func audioRef(path, handle sql.NullString) *models.AudioReference {
	if !path.Valid && !handle.Valid {
		return nil
	}
	if path.String == "" && handle.String == "" {
		return nil
	}
	return &models.AudioReference{Location: path.String, Handle: handle.String}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
