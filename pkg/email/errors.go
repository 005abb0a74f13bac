package email

import "fmt"

// ErrDisabled is returned by Send when mail delivery is switched off in
// config. Callers that treat mail as best-effort match on it and move on.
type ErrDisabled struct{}

func (ErrDisabled) Error() string { return "email is disabled" }

// ErrInvalidMessage reports a Message that cannot be rendered.
type ErrInvalidMessage struct{ Reason string }

func (e ErrInvalidMessage) Error() string { return "invalid email message: " + e.Reason }

// ErrSend wraps a transport failure from the relay.
type ErrSend struct {
	Provider string
	Err      error
}

func (e ErrSend) Error() string { return fmt.Sprintf("email send failed (%s): %v", e.Provider, e.Err) }
func (e ErrSend) Unwrap() error { return e.Err }
