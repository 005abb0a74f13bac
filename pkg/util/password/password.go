// Package password hashes and verifies account credentials with Argon2id.
// Hashes are stored in PHC string format so parameters travel with the hash
// and old hashes keep verifying after a parameter bump.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrMismatch            = errors.New("password does not match")
	ErrMalformedHash       = errors.New("malformed password hash")
	ErrIncompatibleVersion = errors.New("unsupported argon2 version")
)

// Params are the Argon2id cost settings applied when hashing.
type Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams follows the OWASP password storage cheat sheet.
func DefaultParams() *Params {
	return &Params{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// LowMemoryParams trades memory for iterations on constrained hosts.
func LowMemoryParams() *Params {
	return &Params{
		Memory:      32 * 1024,
		Iterations:  4,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

var active = DefaultParams()

// Hash derives an Argon2id hash of plain using the package defaults.
func Hash(plain string) (string, error) {
	return HashWithParams(plain, active)
}

// HashWithParams derives an Argon2id hash of plain using p.
func HashWithParams(plain string, p *Params) (string, error) {
	if p == nil {
		p = active
	}

	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}

	key := argon2.IDKey([]byte(plain), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.Memory, p.Iterations, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the hash of plain under the parameters recorded in
// encoded and compares in constant time. Returns ErrMismatch on a wrong
// password and ErrMalformedHash when encoded is not a PHC argon2id string.
func Verify(encoded, plain string) error {
	p, salt, want, err := parsePHC(encoded)
	if err != nil {
		return err
	}

	got := argon2.IDKey([]byte(plain), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
	if subtle.ConstantTimeCompare(want, got) != 1 {
		return ErrMismatch
	}
	return nil
}

// Match reports whether plain verifies against encoded.
func Match(encoded, plain string) bool {
	return Verify(encoded, plain) == nil
}

// NeedsRehash reports whether encoded was produced with settings weaker or
// otherwise different from the current defaults. Unparseable hashes count as
// stale so callers can force a reset.
func NeedsRehash(encoded string) bool {
	p, _, _, err := parsePHC(encoded)
	if err != nil {
		return true
	}
	return p.Memory != active.Memory ||
		p.Iterations != active.Iterations ||
		p.Parallelism != active.Parallelism ||
		p.KeyLength != active.KeyLength
}

// parsePHC splits "$argon2id$v=19$m=...,t=...,p=...$salt$key" into its parts.
func parsePHC(encoded string) (*Params, []byte, []byte, error) {
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[1] != "argon2id" {
		return nil, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil {
		return nil, nil, nil, ErrMalformedHash
	}
	if version != argon2.Version {
		return nil, nil, nil, ErrIncompatibleVersion
	}

	var p Params
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return nil, nil, nil, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(fields[4])
	if err != nil {
		return nil, nil, nil, ErrMalformedHash
	}
	key, err := base64.RawStdEncoding.DecodeString(fields[5])
	if err != nil {
		return nil, nil, nil, ErrMalformedHash
	}

	p.SaltLength = uint32(len(salt))
	p.KeyLength = uint32(len(key))
	return &p, salt, key, nil
}
