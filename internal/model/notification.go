package model

import (
	"time"

	"gorm.io/datatypes"
)

type Notification struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"index;not null" json:"user_id"`
	Message string `gorm:"type:text;not null" json:"message"`
	IsRead  bool   `gorm:"default:false" json:"is_read"`

	// Data carries optional structured context for delivery workers,
	// e.g. {"appointment_id": 101}.
	Data datatypes.JSON `gorm:"type:jsonb" json:"data,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
