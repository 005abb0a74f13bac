// Package email delivers transactional mail over SMTP. A disabled
// client rejects every send with ErrDisabled, so callers can treat mail
// as optional without inspecting configuration themselves.
package email

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/bookline/bookline_backend/config"
	"gopkg.in/gomail.v2"
)

// Client sends Messages through the configured SMTP relay.
type Client struct {
	cfg Config
}

// NewFromCentral builds a Client from the central email section.
func NewFromCentral(cfg config.EmailConfig) (*Client, error) {
	return New(FromCentralConfig(cfg))
}

// New builds a Client. The relay is dialed per send, so constructing a
// Client is cheap even when mail is disabled.
func New(cfg Config) (*Client, error) {
	return &Client{cfg: cfg}, nil
}

// Send delivers m, bounded by the configured SMTP timeout or by ctx,
// whichever expires first. The dial runs on a goroutine because gomail
// has no context support of its own.
func (c *Client) Send(ctx context.Context, m Message) error {
	if !c.cfg.Enabled {
		return ErrDisabled{}
	}

	msg, err := compose(c.cfg.From, m)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- c.dialer().DialAndSend(msg)
	}()

	wait := c.cfg.SMTPTimeout()
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left > 0 && left < wait {
			wait = left
		}
	}

	select {
	case err := <-done:
		if err != nil {
			return ErrSend{Provider: "smtp", Err: err}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return context.DeadlineExceeded
	}
}

func (c *Client) dialer() *gomail.Dialer {
	d := gomail.NewDialer(c.cfg.SMTPHost, c.cfg.SMTPPort, c.cfg.SMTPUsername, c.cfg.SMTPPassword)
	d.SSL = c.cfg.SMTPUseTLS
	if c.cfg.SMTPUseTLS {
		// Relays in the wild routinely present certificates that do not
		// match their advertised hostname.
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return d
}
