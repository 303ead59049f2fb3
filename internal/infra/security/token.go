package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
)

// minCodeLength guards against configurations that would make codes
// trivially guessable.
const minCodeLength = 4

// GenerateNumericCode returns a random string of decimal digits.
// Lengths below four are rejected.
func GenerateNumericCode(length int) (string, error) {
	if length < minCodeLength {
		return "", fmt.Errorf("code length %d below minimum %d", length, minCodeLength)
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	for i, b := range buf {
		buf[i] = '0' + (b % 10)
	}
	return string(buf), nil
}

// GenerateSecureToken returns byteLength random bytes as an unpadded
// URL-safe base64 string, suitable for opaque reset tokens.
func GenerateSecureToken(byteLength int) (string, error) {
	if byteLength <= 0 {
		return "", errors.New("length must be positive")
	}

	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken returns the hex SHA-256 of value, for storing token digests
// instead of the tokens themselves.
func HashToken(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
