package helpers

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// APIKeyLength is the number of random bytes in a generated key.
	APIKeyLength = 32
	APIKeyPrefix = "rak"
	BcryptCost   = 10
)

// GenerateAPIKey returns a fresh admin key. Only its hash should be stored.
func GenerateAPIKey() (string, error) {
	randomBytes := make([]byte, APIKeyLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return fmt.Sprintf("%s_%s", APIKeyPrefix, base64.RawURLEncoding.EncodeToString(randomBytes)), nil
}

// HashAPIKey hashes an API key using bcrypt
func HashAPIKey(apiKey string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(apiKey), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash API key: %w", err)
	}
	return string(hashedBytes), nil
}

// CompareAPIKeyHash returns nil when apiKey matches hash.
func CompareAPIKeyHash(apiKey, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(apiKey))
}
