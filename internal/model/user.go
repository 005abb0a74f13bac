package model

import (
	"time"
)

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         string `gorm:"size:32;not null;default:regular;index" json:"role"`

	// Login hardening. A run of failed attempts locks the account for a
	// fixed window; any successful login resets the counter.
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`

	Profile       *UserProfile   `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	Appointments  []Appointment  `gorm:"foreignKey:UserID" json:"appointments,omitempty"`
	Notifications []Notification `gorm:"foreignKey:UserID" json:"notifications,omitempty"`
	Reviews       []Review       `gorm:"foreignKey:UserID" json:"reviews,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserProfile struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	FirstName string `gorm:"size:100" json:"first_name"`
	LastName  string `gorm:"size:100" json:"last_name"`
	Bio       string `gorm:"type:text" json:"bio"`

	// Phone is stored AES-256-GCM encrypted; PhoneHash is the SHA-256 of the
	// E.164 form and exists only for indexed lookups.
	Phone         string `gorm:"column:phone_enc" json:"-"`
	PhoneHash     string `gorm:"size:64;index" json:"-"`
	PhoneVerified bool   `gorm:"default:false" json:"phone_verified"`

	Professional *ProfessionalProfile `gorm:"foreignKey:ProfileID" json:"professional,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
