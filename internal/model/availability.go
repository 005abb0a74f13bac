package model

import (
	"time"
)

// Availability is one (professional, instant) slot with a bookable flag.
//
// There is intentionally no composite uniqueness on
// (professional_id, datetime): concurrent first-time writes for the same
// instant can insert twins, and the release path updates by equality match
// so all twins flip back together.
type Availability struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ProfessionalID uint      `gorm:"index;not null" json:"professional_id"`
	Datetime       time.Time `gorm:"index;not null" json:"datetime"`
	IsAvailable    bool      `gorm:"not null;default:true" json:"is_available"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Availability) TableName() string {
	return "availabilities"
}
