// Package sms sends templated text messages through the sms.ir gateway.
package sms

import (
	"context"
	"fmt"

	"github.com/arsmn/go-smsir/smsir"

	"github.com/bookline/bookline_backend/config"
)

// Client sends templated SMS. The zero value is a disabled client that
// swallows every send.
type Client struct {
	client  *smsir.Client
	enabled bool
}

// NewFromConfig builds a Client from the central sms section. When the
// section is disabled the returned client no-ops on every send.
func NewFromConfig(cfg config.SMSConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{}, nil
	}
	if cfg.SMSIR.APIKey == "" {
		return nil, fmt.Errorf("sms.ir API key required when SMS enabled")
	}
	return &Client{
		client:  smsir.NewClient().WithAuthentication(cfg.SMSIR.APIKey, cfg.SMSIR.SecretKey),
		enabled: true,
	}, nil
}

// IsEnabled reports whether sends actually reach the gateway.
func (c *Client) IsEnabled() bool { return c.enabled }

// SendOTP delivers a verification code. The template must declare a
// "code" parameter.
func (c *Client) SendOTP(ctx context.Context, phoneNumber, templateID, otpCode string) error {
	return c.send(ctx, phoneNumber, templateID, smsir.UltraFastParameter{Key: "code", Value: otpCode})
}

// SendNotification delivers free text through a template with a
// "message" parameter.
func (c *Client) SendNotification(ctx context.Context, phoneNumber, templateID, text string) error {
	return c.send(ctx, phoneNumber, templateID, smsir.UltraFastParameter{Key: "message", Value: text})
}

func (c *Client) send(ctx context.Context, phone, templateID string, p smsir.UltraFastParameter) error {
	if !c.enabled {
		return nil
	}
	if phone == "" {
		return fmt.Errorf("phone number is required")
	}
	if templateID == "" {
		return fmt.Errorf("template ID is required")
	}
	if p.Value == "" {
		return fmt.Errorf("%s is required", p.Key)
	}

	req := &smsir.UltraFastSendRequest{
		Mobile:     phone,
		TemplateID: templateID,
		Parameters: []smsir.UltraFastParameter{p},
	}
	if _, err := c.client.Verification.UltraFastSend(ctx, req); err != nil {
		return fmt.Errorf("sms.ir send failed: %w", err)
	}
	return nil
}
