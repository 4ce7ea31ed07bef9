package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("rahasia", time.Hour)

	token, exp, err := m.GenerateToken(42, "budi", RoleUser)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "budi", claims.Username)
	assert.Equal(t, RoleUser, claims.Role)
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager("rahasia", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := m.GenerateToken(1, "budi", RoleUser)
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	token, _, err := NewJWTManager("satu", time.Hour).GenerateToken(1, "a", RoleAdmin)
	require.NoError(t, err)

	_, err = NewJWTManager("dua", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTManager_RejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{UserID: 1, Role: RoleAdmin}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTManager("rahasia", time.Hour).ValidateToken(signed)
	assert.Error(t, err)
}

func TestJWTManager_MissingSecret(t *testing.T) {
	_, _, err := NewJWTManager("", time.Hour).GenerateToken(1, "a", RoleUser)
	assert.Error(t, err)
}
