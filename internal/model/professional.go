package model

import (
	"time"
)

type ProfessionalProfile struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	ProfileID      uint   `gorm:"uniqueIndex;not null" json:"profile_id"`
	Qualifications string `gorm:"type:text" json:"qualifications"`

	Availabilities []Availability `gorm:"foreignKey:ProfessionalID" json:"availabilities,omitempty"`
	Appointments   []Appointment  `gorm:"foreignKey:ProfessionalID" json:"appointments,omitempty"`
	Reviews        []Review       `gorm:"foreignKey:ProfessionalID" json:"reviews,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Review struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	UserID         uint   `gorm:"index;not null" json:"user_id"`
	ProfessionalID uint   `gorm:"index;not null" json:"professional_id"`
	Rating         int    `gorm:"not null" json:"rating"`
	Content        string `gorm:"type:text" json:"content"`

	CreatedAt time.Time `json:"created_at"`
}
