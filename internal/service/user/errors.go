package user

import "errors"

var (
	ErrNotFound     = errors.New("user not found")
	ErrEmailExists  = errors.New("email address is already in use")
	ErrInvalidRole  = errors.New("invalid role")
	ErrInvalidPhone = errors.New("invalid phone number")
)
