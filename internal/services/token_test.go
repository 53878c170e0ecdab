package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyToken(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	userID := "64b7f1c2e4a9d83a5c0f1234"

	tok, err := IssueToken(userID, secret)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	got, err := VerifyToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := IssueToken("u1", []byte("right-secret"))
	require.NoError(t, err)

	_, err = VerifyToken(tok, []byte("wrong-secret"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_Malformed(t *testing.T) {
	t.Parallel()

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		_, err := VerifyToken(tok, []byte("secret"))
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}

func TestVerifyToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		UserID: "u1",
	})
	signed, err := token.SignedString(secret)
	require.NoError(t, err)

	_, err = VerifyToken(signed, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_MissingUserID(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString(secret)
	require.NoError(t, err)

	_, err = VerifyToken(signed, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
