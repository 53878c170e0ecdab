package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenDuration is how long an issued bearer token stays valid. There is no
// refresh flow; clients re-authenticate after expiry.
const TokenDuration = 30 * 24 * time.Hour

// ErrInvalidToken covers missing, malformed, expired and badly signed tokens.
// Callers map it to 401 without distinguishing the cause.
var ErrInvalidToken = errors.New("invalid token")

// Claims embeds the registered claims plus the user identifier under the "id"
// key, matching what the frontend decodes.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
}

// IssueToken mints a signed HS256 token embedding the user id with a 30-day
// expiry. Pure function of identity, secret and clock.
func IssueToken(userID string, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenDuration)),
		},
		UserID: userID,
	})

	return token.SignedString(secret)
}

// VerifyToken checks signature and expiry and returns the embedded user id.
func VerifyToken(tokenString string, secret []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}
