package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bookline/bookline_backend/config"
	_ "github.com/lib/pq"
)

// InitializeDatabases creates every database named in server.databases,
// skipping ones that already exist. It connects through the maintenance
// 'postgres' database, so the configured role needs CREATEDB.
func InitializeDatabases(cfg *config.Config) error {
	if len(cfg.Server.Databases) == 0 {
		return fmt.Errorf("no database names provided")
	}

	conn, err := openSQLDB(Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   "postgres",
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres database: %w", err)
	}
	defer conn.Close()

	for _, name := range cfg.Server.Databases {
		if err := createIfMissing(conn, name); err != nil {
			return fmt.Errorf("create database %q: %w", name, err)
		}
	}
	return nil
}

func createIfMissing(conn *sql.DB, name string) error {
	var exists bool
	err := conn.QueryRowContext(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`, name).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check existence: %w", err)
	}
	if exists {
		return nil
	}

	// CREATE DATABASE cannot be parameterized; name comes from our own
	// config file, not user input.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := conn.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE %s", name)); err != nil {
		return fmt.Errorf("create: %w", err)
	}
	return nil
}
