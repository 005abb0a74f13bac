package model

import (
	"time"
)

// UserSession is the audit-trail row behind a Redis-held session. The Redis
// entry is authoritative for liveness; this row records issue/revocation.
type UserSession struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"index;not null" json:"user_id"`
	SessionID        string     `gorm:"uniqueIndex;size:36;not null" json:"session_id"`
	RefreshTokenHash string     `gorm:"size:64" json:"-"`
	ExpiresAt        time.Time  `json:"expires_at"`
	RevokedAt        *time.Time `json:"revoked_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
