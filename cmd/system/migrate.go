package system

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/bookline/bookline_backend/config"
	"github.com/bookline/bookline_backend/pkg/authorize"
	"github.com/bookline/bookline_backend/pkg/database"
)

// NewMigrateCommand runs schema migrations and seeds the baseline RBAC
// policies. Safe to re-run: AutoMigrate and policy seeding are both
// idempotent.
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("read config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("read config: %w", err)
			}
			return runMigrations(cfg)
		},
	}
}

func runMigrations(cfg *config.Config) error {
	fmt.Println("Running schema migrations.")
	db, err := database.NewGormDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.CloseGorm(db)

	timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	fmt.Println("Running Casbin migrations.")
	acfg := authorize.FromCentralConfig(cfg.Authorization)
	enforcer, cleanup, err := authorize.NewEnforcer(acfg, database.NewDSN(cfg.Database), db)
	if err != nil {
		return fmt.Errorf("create enforcer: %w", err)
	}
	defer cleanup(context.Background())

	auth, err := authorize.NewAuthorizationWithConfig(enforcer, acfg)
	if err != nil {
		return fmt.Errorf("create authorization: %w", err)
	}

	slog.Info("Seeding Casbin policies...")
	if err := authorize.SeedDefaultPolicies(ctx, auth); err != nil {
		return fmt.Errorf("seed policies: %w", err)
	}

	fmt.Println("Migrations executed successfully.")
	return nil
}
