package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

func TestParseToken(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	token := signed(t, jwt.MapClaims{"email": "a@b.c", "sub": "42", "exp": exp.Unix()})

	info, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", info.Email)
	assert.Equal(t, "42", info.Subject)
	assert.True(t, exp.Equal(info.ExpiresAt))

	assert.False(t, info.Expired(exp.Add(-time.Second)))
	assert.True(t, info.Expired(exp))
}

func TestParseToken_NoExpiryNeverExpires(t *testing.T) {
	info, err := ParseToken(signed(t, jwt.MapClaims{"id": "x"}))
	require.NoError(t, err)
	require.True(t, info.ExpiresAt.IsZero())
	require.False(t, info.Expired(time.Now()))
}

func TestParseToken_Opaque(t *testing.T) {
	_, err := ParseToken("not-a-jwt")
	require.ErrorIs(t, err, ErrNotJWT)
}
