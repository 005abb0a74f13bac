// Package otp generates and checks the short numeric codes used for phone
// number verification. Codes are never stored in plain text; callers keep
// the SHA-256 digest and verify against it.
package otp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	ErrInvalidLength = errors.New("OTP length must be between 4 and 10")
	ErrMismatch      = errors.New("OTP does not match")
)

const (
	DefaultLength = 6
	MinLength     = 4
	MaxLength     = 10
)

// Generate draws a uniformly random numeric code of the given length,
// zero-padded so "003241" stays six digits.
func Generate(length int) (string, error) {
	if length < MinLength || length > MaxLength {
		return "", ErrInvalidLength
	}

	bound := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return "", fmt.Errorf("draw random code: %w", err)
	}

	return fmt.Sprintf("%0*d", length, n), nil
}

// GenerateDefault draws a six-digit code.
func GenerateDefault() (string, error) {
	return Generate(DefaultLength)
}

// Hash returns the hex SHA-256 digest of code. Surrounding whitespace is
// stripped first so "123456 " and "123456" hash the same.
func Hash(code string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(code)))
	return hex.EncodeToString(sum[:])
}

// Verify checks code against a stored digest in constant time.
func Verify(digest, code string) error {
	if subtle.ConstantTimeCompare([]byte(digest), []byte(Hash(code))) != 1 {
		return ErrMismatch
	}
	return nil
}

// GenerateToken draws a random hex token of byteLength random bytes, for
// links and one-off secrets where a numeric code is too weak.
func GenerateToken(byteLength int) (string, error) {
	if byteLength < 1 {
		return "", errors.New("byte length must be at least 1")
	}

	b := make([]byte, byteLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
