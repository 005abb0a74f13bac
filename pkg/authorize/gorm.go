package authorize

import (
	"context"
	"log/slog"
	"sync/atomic"

	psqlwatcher "github.com/IguteChung/casbin-psql-watcher"
	casbin "github.com/casbin/casbin/v2"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

// policyHealthy flips to false when a watcher-triggered reload fails.
// The readiness endpoint reports it.
var policyHealthy atomic.Bool

func init() { policyHealthy.Store(true) }

// IsPolicyHealthy reports whether the last policy load succeeded.
func IsPolicyHealthy() bool { return policyHealthy.Load() }

// CleanupFunc releases enforcer resources on shutdown.
type CleanupFunc func(ctx context.Context)

// NewEnforcer builds a DistributedEnforcer persisted through the shared
// gorm connection. With PolicySyncEnabled a postgres LISTEN/NOTIFY
// watcher reloads policies whenever another replica changes them.
func NewEnforcer(cfg Config, dsn string, db *gorm.DB) (*casbin.DistributedEnforcer, CleanupFunc, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, nil, err
	}

	e, err := casbin.NewDistributedEnforcer(cfg.CasbinModelPath, adapter)
	if err != nil {
		return nil, nil, err
	}
	e.EnableAutoSave(true)
	e.EnableEnforce(true)

	closeWatcher := func() {}
	if cfg.PolicySyncEnabled {
		w, err := psqlwatcher.NewWatcherWithConnString(context.Background(), dsn, psqlwatcher.Option{
			Channel: "casbin_policy_update",
		})
		if err != nil {
			return nil, nil, err
		}

		err = w.SetUpdateCallback(func(msg string) {
			slog.Debug("casbin policy update received", "message", msg)
			if err := e.LoadPolicy(); err != nil {
				slog.Error("failed to reload policy after watcher notification", "error", err)
				policyHealthy.Store(false)
				return
			}
			policyHealthy.Store(true)
		})
		if err != nil {
			return nil, nil, err
		}

		if err := e.SetWatcher(w); err != nil {
			return nil, nil, err
		}

		closeWatcher = func() {
			slog.Info("closing casbin policy watcher")
			w.Close()
		}
	}

	cleanup := func(ctx context.Context) {
		closeWatcher()
		e.StopAutoLoadPolicy()
		slog.Info("casbin enforcer cleanup completed")
	}

	return e, cleanup, nil
}
