package utils

import (
	"crypto/rand"
	"encoding/base64"
)

const apiKeyPrefix = "lp_"

// GenerateRandomKey returns a prefixed URL-safe key built from length random bytes.
func GenerateRandomKey(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return apiKeyPrefix + base64.RawURLEncoding.EncodeToString(b), nil
}
