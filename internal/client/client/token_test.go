package client

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

func TestTokenExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	past := signed(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))})
	future := signed(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))})
	noExp := signed(t, jwt.RegisteredClaims{Subject: "1"})

	expired, err := TokenExpired(past, now)
	require.NoError(t, err)
	assert.True(t, expired)

	expired, err = TokenExpired(future, now)
	require.NoError(t, err)
	assert.False(t, expired)

	expired, err = TokenExpired(noExp, now)
	require.NoError(t, err)
	assert.False(t, expired)

	_, err = TokenExpired("opaque-token", now)
	assert.Error(t, err)
}
