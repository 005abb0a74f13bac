package sms

import (
	"context"
	"testing"

	"github.com/bookline/bookline_backend/config"
)

func TestNewFromConfigDisabled(t *testing.T) {
	c, err := NewFromConfig(config.SMSConfig{})
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if c.IsEnabled() {
		t.Fatal("client should be disabled")
	}
}

func TestNewFromConfigRequiresAPIKey(t *testing.T) {
	_, err := NewFromConfig(config.SMSConfig{Enabled: true})
	if err == nil {
		t.Fatal("expected error when api key is missing")
	}
}

func TestNewFromConfigEnabled(t *testing.T) {
	c, err := NewFromConfig(config.SMSConfig{
		Enabled: true,
		SMSIR:   config.SMSIRConfig{APIKey: "key", SecretKey: "secret", TemplateID: "tpl"},
	})
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if !c.IsEnabled() {
		t.Fatal("client should be enabled")
	}
}

func TestDisabledClientSkipsSends(t *testing.T) {
	c := &Client{}
	if err := c.SendOTP(context.Background(), "+15550100", "tpl", "123456"); err != nil {
		t.Fatalf("SendOTP on disabled client: %v", err)
	}
	if err := c.SendNotification(context.Background(), "+15550100", "tpl", "hello"); err != nil {
		t.Fatalf("SendNotification on disabled client: %v", err)
	}
}

func TestSendOTPValidation(t *testing.T) {
	c := &Client{enabled: true}

	cases := []struct {
		name     string
		phone    string
		template string
		code     string
	}{
		{"missing phone", "", "tpl", "123456"},
		{"missing template", "+15550100", "", "123456"},
		{"missing code", "+15550100", "tpl", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := c.SendOTP(context.Background(), tc.phone, tc.template, tc.code); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestSendNotificationValidation(t *testing.T) {
	c := &Client{enabled: true}
	if err := c.SendNotification(context.Background(), "+15550100", "tpl", ""); err == nil {
		t.Fatal("expected validation error for empty message")
	}
}
