package utils

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the cost the original accounts were created with, so
// existing hashes keep verifying.
const bcryptCost = 10

// ProviderCredentialPrefix marks sentinel credentials written for OAuth-created
// accounts. Sentinels are stored verbatim (never bcrypt-hashed), so password
// verification can never succeed for them.
const ProviderCredentialPrefix = "google_"

// IsProviderCredential reports whether a stored or supplied credential is an
// OAuth sentinel rather than a user-chosen password.
func IsProviderCredential(password string) bool {
	return strings.HasPrefix(password, ProviderCredentialPrefix)
}

// HashPassword hashes a password using bcrypt with cost 10.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a stored bcrypt hash.
// Returns false (not an error) on mismatch, and false for sentinel credentials
// which are not valid bcrypt hashes.
func VerifyPassword(password, hashedPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
