package booking

import "errors"

var (
	ErrNotFound = errors.New("appointment not found")
)
