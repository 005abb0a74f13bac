package model

import (
	"time"

	"gorm.io/gorm"

	"github.com/bookline/bookline_backend/pkg/constants"
)

type Appointment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index;not null" json:"user_id"`
	ProfessionalID uint      `gorm:"index;not null" json:"professional_id"`
	ScheduledTime  time.Time `gorm:"index;not null" json:"scheduled_time"`
	Status         string    `gorm:"size:16;not null" json:"status"`

	// Reference is a short human-safe booking code, generated once at
	// creation and quoted in reminder mails.
	Reference string `gorm:"size:24;index" json:"reference"`

	User         *User                `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Professional *ProfessionalProfile `gorm:"foreignKey:ProfessionalID" json:"professional,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.Status == "" {
		a.Status = constants.StatusPending
	}
	return nil
}
