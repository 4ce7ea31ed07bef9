package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"golang.org/x/crypto/bcrypt"

	"github.com/c14220110/skrining-tb-backend/internal/pengguna/models"
	"github.com/c14220110/skrining-tb-backend/pkg/utils"
)

// Kode error MySQL untuk duplicate entry.
const errDuplicateEntry = 1062

// UserService menangani akun pengguna.
type UserService struct {
	DB *sql.DB
}

func NewUserService(db *sql.DB) *UserService {
	return &UserService{DB: db}
}

// Register membuat akun baru dengan password bcrypt.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (int64, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("gagal hash password: %w", err)
	}

	query := `INSERT INTO Users (Username, Password, Nama_Lengkap, No_Telp) VALUES (?, ?, ?, ?)`
	res, err := s.DB.ExecContext(ctx, query, strings.TrimSpace(req.Username), string(hashed), req.FullName(), req.Phone())
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == errDuplicateEntry {
			return 0, fmt.Errorf("username sudah digunakan: %w", utils.ErrConflict)
		}
		return 0, err
	}
	return res.LastInsertId()
}

// Authenticate memvalidasi username dan password.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	query := `SELECT ID_User, Username, Password, COALESCE(Nama_Lengkap, '') FROM Users WHERE Username = ?`
	err := s.DB.QueryRowContext(ctx, query, strings.TrimSpace(username)).
		Scan(&user.ID_User, &user.Username, &user.Password, &user.Nama_Lengkap)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrUnauthorized
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, utils.ErrUnauthorized
	}
	return &user, nil
}

// GetProfile mengambil profil user tanpa password.
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	var (
		user              models.User
		nama, telp        sql.NullString
		pendidikan, kerja sql.NullString
		usia, anggota     sql.NullInt64
		tinggi, berat     sql.NullFloat64
	)
	query := `
		SELECT ID_User, Username, Nama_Lengkap, No_Telp, Usia, Tinggi_Badan, Berat_Badan,
			Pendidikan, Pekerjaan, Jumlah_Anggota_Keluarga, Created_At
		FROM Users WHERE ID_User = ?
	`
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(&user.ID_User, &user.Username, &nama, &telp,
		&usia, &tinggi, &berat, &pendidikan, &kerja, &anggota, &user.Created_At)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrNotFound
		}
		return nil, err
	}
	user.Nama_Lengkap = nama.String
	user.No_Telp = telp.String
	user.Pendidikan = pendidikan.String
	user.Pekerjaan = kerja.String
	if usia.Valid {
		v := int(usia.Int64)
		user.Usia = &v
	}
	if anggota.Valid {
		v := int(anggota.Int64)
		user.Jumlah_Anggota_Keluarga = &v
	}
	if tinggi.Valid {
		user.Tinggi_Badan = &tinggi.Float64
	}
	if berat.Valid {
		user.Berat_Badan = &berat.Float64
	}
	return &user, nil
}

// UpdateProfile memperbarui data profil user.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req models.ProfileRequest) error {
	query := `
		UPDATE Users SET Nama_Lengkap = ?, No_Telp = ?, Usia = ?, Tinggi_Badan = ?, Berat_Badan = ?,
			Pendidikan = ?, Pekerjaan = ?, Jumlah_Anggota_Keluarga = ?
		WHERE ID_User = ?
	`
	res, err := s.DB.ExecContext(ctx, query,
		req.Nama_Lengkap,
		req.No_Telp,
		req.Usia,
		req.Tinggi_Badan,
		req.Berat_Badan,
		req.Pendidikan,
		req.Pekerjaan,
		req.Jumlah_Anggota_Keluarga,
		userID,
	)
	if err != nil {
		return fmt.Errorf("gagal memperbarui profil: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var exists int
		if err := s.DB.QueryRowContext(ctx, "SELECT 1 FROM Users WHERE ID_User = ?", userID).Scan(&exists); errors.Is(err, sql.ErrNoRows) {
			return utils.ErrNotFound
		}
	}
	return nil
}
