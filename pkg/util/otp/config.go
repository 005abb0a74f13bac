package otp

import "github.com/bookline/bookline_backend/config"

// Config mirrors the otp section of the central config file.
type Config struct {
	DefaultLength int
	MinLength     int
	MaxLength     int

	// HashAlgorithm names the digest used for stored codes. Only "sha256"
	// is implemented.
	HashAlgorithm string
}

func DefaultConfig() Config {
	return Config{
		DefaultLength: 6,
		MinLength:     4,
		MaxLength:     10,
		HashAlgorithm: "sha256",
	}
}

// Validate rejects length settings that Generate would refuse at runtime.
func (c Config) Validate() error {
	if c.MinLength < 1 || c.MaxLength < c.MinLength {
		return ErrInvalidLength
	}
	if c.DefaultLength < c.MinLength || c.DefaultLength > c.MaxLength {
		return ErrInvalidLength
	}
	return nil
}

// FromCentralConfig lifts the viper-decoded section into a package Config.
func FromCentralConfig(c config.OTPConfig) Config {
	return Config{
		DefaultLength: c.DefaultLength,
		MinLength:     c.MinLength,
		MaxLength:     c.MaxLength,
		HashAlgorithm: c.HashAlgorithm,
	}
}
