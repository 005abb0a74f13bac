package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bookline/bookline_backend/config"
	"github.com/bookline/bookline_backend/internal/model"
)

// NewGormDB opens a gorm connection from central config.
func NewGormDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	return NewGormDBFromConfig(FromCentralConfig(cfg))
}

// NewGormDBFromConfig opens a gorm connection over a pooled *sql.DB so the
// pool settings in Config apply to every query gorm issues.
func NewGormDBFromConfig(cfg Config) (*gorm.DB, error) {
	sqlDB, err := openSQLDB(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: newGormLogger(cfg),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	return db, nil
}

func newGormLogger(cfg Config) gormlogger.Interface {
	level := gormlogger.Silent
	if cfg.EnableLogging {
		level = gormlogger.Warn
	}

	slow := time.Duration(cfg.SlowQueryThresholdMs) * time.Millisecond
	if slow <= 0 {
		slow = 200 * time.Millisecond
	}

	return gormlogger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             slow,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		},
	)
}

// Migrate applies the schema for every registered model.
func Migrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(model.All()...)
}

// CloseGorm closes the underlying connection pool.
func CloseGorm(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// PingGorm checks the underlying connection is alive.
func PingGorm(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
