// Package model defines the relational schema as gorm models.
//
// Primary keys are plain autoincrement integers. Cross-entity cleanup
// (deleting a user and everything hanging off it) is performed explicitly in
// service code rather than through database-level cascades, so the models
// declare relations without ON DELETE constraints.
package model

// All returns every model in migration order. Parents come before children
// so AutoMigrate can create foreign keys in one pass.
func All() []any {
	return []any{
		&User{},
		&UserProfile{},
		&ProfessionalProfile{},
		&Availability{},
		&Appointment{},
		&Notification{},
		&Review{},
		&UserSession{},
	}
}
