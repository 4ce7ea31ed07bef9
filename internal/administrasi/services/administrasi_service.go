package services

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"

	"github.com/c14220110/skrining-tb-backend/pkg/utils"
)

// AdministrasiService memvalidasi login admin tunggal yang dikonfigurasi lewat environment.
type AdministrasiService struct {
	Username     string
	PasswordHash string
}

func NewAdministrasiService(username, passwordHash string) *AdministrasiService {
	return &AdministrasiService{Username: username, PasswordHash: passwordHash}
}

// Authenticate mengembalikan utils.ErrUnauthorized bila username atau password salah.
func (s *AdministrasiService) Authenticate(username, password string) error {
	if s.PasswordHash == "" {
		return utils.ErrUnauthorized
	}
	// bcrypt tetap dijalankan agar waktu respons tidak membedakan username salah
	pwErr := bcrypt.CompareHashAndPassword([]byte(s.PasswordHash), []byte(password))
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.Username)) == 1
	if !userOK || pwErr != nil {
		return utils.ErrUnauthorized
	}
	return nil
}
