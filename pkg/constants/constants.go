// Package constants holds application-wide fixed values shared across
// commands, services, and infrastructure packages.
package constants

const (
	// ServiceName identifies this service in logs, traces, and metrics.
	ServiceName = "bookline_backend"

	// ServiceDisplayName is the product name shown to end users, e.g. in
	// email subjects.
	ServiceDisplayName = "Bookline"

	// ServiceVersion is stamped into logs and telemetry resources.
	// Bumped manually on release.
	ServiceVersion = "0.3.0"

	// ConfigName is the base name of the config file (without extension).
	ConfigName = "config"

	// ConfigFormat is the config file format viper expects.
	ConfigFormat = "yaml"

	// DefaultConfigPath is where commands look for the config file when
	// --config is not given.
	DefaultConfigPath = "."

	// EnvDevelopment and EnvProduction are the recognised values of
	// server.environment.
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Appointment status values. The zero value for a new appointment is
// StatusPending; transitions are applied by the booking service.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"
)

// User roles. Decided at the HTTP boundary and treated as opaque by services.
const (
	RoleRegular      = "regular"
	RoleProfessional = "professional"
	RoleAdmin        = "admin"
)

// ValidStatus reports whether s is one of the appointment status values.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// ValidRole reports whether r is one of the user role values.
func ValidRole(r string) bool {
	switch r {
	case RoleRegular, RoleProfessional, RoleAdmin:
		return true
	}
	return false
}
