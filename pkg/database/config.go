package database

import (
	"time"

	"github.com/bookline/bookline_backend/config"
)

// Config flattens the central database section for this package. Pool and
// logging knobs live beside the connection fields so openSQLDB and the gorm
// logger read one struct.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int

	AutoMigrate bool
	SafeMode    bool

	EnableLogging        bool
	SlowQueryThresholdMs int
}

// DSN renders a lib/pq keyword connection string.
func (c Config) DSN() string {
	return buildDSN(c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

func (c Config) ConnMaxLifetime() time.Duration {
	if c.ConnMaxLifetimeMin <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.ConnMaxLifetimeMin) * time.Minute
}

func DefaultConfig() Config {
	return Config{
		Host:                 "localhost",
		Port:                 5432,
		SSLMode:              "disable",
		MaxOpenConns:         25,
		MaxIdleConns:         5,
		ConnMaxLifetimeMin:   5,
		SafeMode:             true,
		SlowQueryThresholdMs: 200,
	}
}

// FromCentralConfig lifts the viper-decoded section into a package Config.
func FromCentralConfig(c config.DatabaseConfig) Config {
	return Config{
		Host:                 c.Host,
		Port:                 c.Port,
		User:                 c.User,
		Password:             c.Password,
		DBName:               c.DBName,
		SSLMode:              c.SSLMode,
		MaxOpenConns:         c.Pool.MaxOpenConns,
		MaxIdleConns:         c.Pool.MaxIdleConns,
		ConnMaxLifetimeMin:   c.Pool.ConnMaxLifetimeMin,
		AutoMigrate:          c.Migrations.AutoMigrate,
		SafeMode:             c.Migrations.SafeMode,
		EnableLogging:        c.Logging.Enabled,
		SlowQueryThresholdMs: c.Logging.SlowQueryThresholdMs,
	}
}

// NewDSN is a shorthand for FromCentralConfig(c).DSN(), used where only the
// connection string is needed (the casbin policy watcher).
func NewDSN(c config.DatabaseConfig) string {
	return FromCentralConfig(c).DSN()
}
