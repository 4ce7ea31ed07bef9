package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := hashPassword("admin123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("admin123")))

	_, err = hashPassword("admin123", bcrypt.MaxCost+1)
	assert.Error(t, err)
}

func TestHashpassCmd_Stdin(t *testing.T) {
	hashCost = bcrypt.MinCost
	defer func() { hashCost = bcrypt.DefaultCost }()

	var out bytes.Buffer
	hashpassCmd.SetIn(strings.NewReader("rahasia\n"))
	hashpassCmd.SetOut(&out)

	require.NoError(t, runHashpass(hashpassCmd, nil))
	hash := strings.TrimSpace(out.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("rahasia")))
}

func TestHashpassCmd_Empty(t *testing.T) {
	hashpassCmd.SetIn(strings.NewReader(""))
	assert.Error(t, runHashpass(hashpassCmd, nil))
}
