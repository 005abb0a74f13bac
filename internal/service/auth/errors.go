package auth

import "errors"

var (
	ErrOTPExpired      = errors.New("OTP has expired or does not exist")
	ErrOTPInvalid      = errors.New("OTP code is incorrect")
	ErrOTPMaxAttempts  = errors.New("too many incorrect OTP attempts")
	ErrAccountLocked   = errors.New("account temporarily locked due to repeated login failures")
	ErrSessionNotFound = errors.New("session not found or expired")
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrNoPhone         = errors.New("no phone number on the profile")
)
