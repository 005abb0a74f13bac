package authorize

import "github.com/bookline/bookline_backend/config"

// Config tunes the enforcer wiring.
type Config struct {
	// CasbinModelPath points at the model definition file.
	CasbinModelPath string

	// EnableAudit wraps the enforcer so every decision is logged.
	EnableAudit bool

	// SuperadminBypass lets platform admins skip policy evaluation.
	SuperadminBypass bool

	// PolicySyncEnabled starts the postgres watcher that propagates
	// policy changes across replicas.
	PolicySyncEnabled bool

	// HealthCheckEnabled exposes policy load state to readiness checks.
	HealthCheckEnabled bool
}

// DefaultConfig suits a single-instance deployment.
func DefaultConfig() Config {
	return Config{
		CasbinModelPath:    "casbin_model.conf",
		EnableAudit:        true,
		SuperadminBypass:   true,
		HealthCheckEnabled: true,
	}
}

// FromCentralConfig flattens the central authorization section.
func FromCentralConfig(c config.AuthorizationConfig) Config {
	return Config{
		CasbinModelPath:    c.CasbinModelPath,
		EnableAudit:        c.EnableAudit,
		SuperadminBypass:   c.SuperadminBypass,
		PolicySyncEnabled:  c.PolicySyncEnabled,
		HealthCheckEnabled: c.HealthCheckEnabled,
	}
}
