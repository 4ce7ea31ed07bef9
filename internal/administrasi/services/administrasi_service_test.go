package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/c14220110/skrining-tb-backend/pkg/utils"
)

func TestAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := NewAdministrasiService("admin_satu", string(hash))

	assert.NoError(t, svc.Authenticate("admin_satu", "admin123"))
	assert.ErrorIs(t, svc.Authenticate("admin_satu", "salah"), utils.ErrUnauthorized)
	assert.ErrorIs(t, svc.Authenticate("admin_dua", "admin123"), utils.ErrUnauthorized)
}

func TestAuthenticate_NoHashConfigured(t *testing.T) {
	svc := NewAdministrasiService("admin_satu", "")
	assert.ErrorIs(t, svc.Authenticate("admin_satu", ""), utils.ErrUnauthorized)
}
