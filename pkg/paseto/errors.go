package pasetotoken

import "fmt"

// ErrConfig reports unusable key or manager settings. It is distinct from
// ErrInvalidToken so misconfiguration never reads as a bad client token.
type ErrConfig struct{ Msg string }

func (e ErrConfig) Error() string { return "paseto config error: " + e.Msg }

// ErrInvalidToken wraps any parse, rule, or claim failure during Verify.
type ErrInvalidToken struct{ Err error }

func (e ErrInvalidToken) Error() string { return fmt.Sprintf("invalid token: %v", e.Err) }
func (e ErrInvalidToken) Unwrap() error { return e.Err }
