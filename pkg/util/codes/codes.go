// Package codes generates human-friendly booking reference codes.
package codes

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	ErrInvalidLength = errors.New("invalid code length")
)

const (
	// ReferencePrefix is prepended to every booking reference.
	ReferencePrefix = "BKL"

	// ReferenceLength is the number of random characters in a booking reference.
	ReferenceLength = 8

	// Uppercase alphanumeric excluding ambiguous characters (I, L, O, 0, 1)
	charsetReference = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
)

// GenerateBookingReference creates a booking reference code.
// Format: "BKL-XXXX-XXXX" where X is drawn from an unambiguous
// uppercase alphanumeric charset.
func GenerateBookingReference() (string, error) {
	code, err := GenerateCode(ReferenceLength, charsetReference)
	if err != nil {
		return "", err
	}
	return ReferencePrefix + "-" + FormatCode(code, 4), nil
}

// GenerateCode draws length random characters from charset.
func GenerateCode(length int, charset string) (string, error) {
	if length < 1 {
		return "", ErrInvalidLength
	}
	if charset == "" {
		return "", errors.New("empty charset")
	}
	return generateFromCharset(length, charset)
}

// FormatCode splits a code into dash-separated groups for readability,
// e.g. "ABCD1234" with groupSize 4 becomes "ABCD-1234".
func FormatCode(code string, groupSize int) string {
	if groupSize < 1 || len(code) <= groupSize {
		return code
	}

	var b strings.Builder
	for i := 0; i < len(code); i += groupSize {
		if i > 0 {
			b.WriteByte('-')
		}
		end := min(i+groupSize, len(code))
		b.WriteString(code[i:end])
	}
	return b.String()
}

// ParseReference removes formatting (dashes, spaces) from a reference code
// and uppercases it for comparison.
func ParseReference(formatted string) string {
	code := strings.ReplaceAll(formatted, "-", "")
	code = strings.ReplaceAll(code, " ", "")
	return strings.ToUpper(strings.TrimSpace(code))
}

func generateFromCharset(length int, charset string) (string, error) {
	out := make([]byte, length)
	bound := big.NewInt(int64(len(charset)))

	for i := range out {
		n, err := rand.Int(rand.Reader, bound)
		if err != nil {
			return "", fmt.Errorf("read random source: %w", err)
		}
		out[i] = charset[n.Int64()]
	}
	return string(out), nil
}
