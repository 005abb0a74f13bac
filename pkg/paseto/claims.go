package pasetotoken

import (
	"time"

	"github.com/google/uuid"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the decoded token payload handed to handlers and middleware.
type Claims struct {
	Type TokenType

	UserID uint

	// SessionID links the token to a redis session record; nil on tokens
	// issued without one.
	SessionID *uuid.UUID

	Issuer   string
	Audience string

	IssuedAt  time.Time
	NotBefore time.Time
	ExpiresAt time.Time
	TokenID   string // jti
	Subject   string

	RawFooter   []byte
	RawClaimsJS []byte
}

// The getters below satisfy reqctx.AuthClaims.

func (c *Claims) GetUserID() uint { return c.UserID }

func (c *Claims) GetSessionID() *uuid.UUID { return c.SessionID }

func (c *Claims) GetTokenType() string { return string(c.Type) }

func (c *Claims) IsExpired() bool { return time.Now().After(c.ExpiresAt) }
