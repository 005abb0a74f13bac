package app

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/bookline/bookline_backend/config"
	"github.com/bookline/bookline_backend/internal/streams"
	"github.com/bookline/bookline_backend/pkg/authorize"
	"github.com/bookline/bookline_backend/pkg/database"
	"github.com/bookline/bookline_backend/pkg/email"
	"github.com/bookline/bookline_backend/pkg/observability"
	redispkg "github.com/bookline/bookline_backend/pkg/redis"
	"github.com/bookline/bookline_backend/pkg/sms"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideGormDB),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideAuthorization),
	fx.Provide(ProvideEmailClient),
	fx.Provide(ProvideSMSClient),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideStreamsPublisher),
)

func ProvideGormDB(lc fx.Lifecycle, cfg *config.Config) (*gorm.DB, error) {
	db, err := database.NewGormDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing database connection")
			return database.CloseGorm(db)
		},
	})
	return db, nil
}

func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	rdb, err := redispkg.NewRedisFromCentral(cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		// Close the client pool only. The server itself is shared with
		// the stream workers and must stay up.
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis client")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideAuthorization(lc fx.Lifecycle, cfg *config.Config, db *gorm.DB) (authorize.IAuthorization, error) {
	acfg := authorize.FromCentralConfig(cfg.Authorization)

	dsn := database.NewDSN(cfg.Database)
	enforcer, cleanup, err := authorize.NewEnforcer(acfg, dsn, db)
	if err != nil {
		return nil, err
	}
	auth, err := authorize.NewAuthorizationWithConfig(enforcer, acfg)
	if err != nil {
		cleanup(context.Background())
		return nil, err
	}
	if acfg.EnableAudit {
		auth = authorize.NewAuditedAuthorization(auth, slog.Default())
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("cleaning up Casbin enforcer")
			cleanup(ctx)
			return nil
		},
	})
	return auth, nil
}

// Disabled clients are still provided: they answer every send with a
// sentinel error instead of failing the fx graph.
func ProvideEmailClient(cfg *config.Config) (*email.Client, error) {
	return email.NewFromCentral(cfg.Email)
}

func ProvideSMSClient(cfg *config.Config) (*sms.Client, error) {
	return sms.NewFromConfig(cfg.SMS)
}

func ProvideStreamsPublisher(rdb *redis.Client) *streams.Publisher {
	return streams.NewPublisher(rdb)
}

// ProvideOTel returns nil when observability is off. Consumers declare
// the dependency optional and must nil-check.
func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}

	obs := cfg.Observability
	provider, err := observability.InitTelemetry(context.Background(), observability.Config{
		ServiceName:    obs.ServiceName,
		ServiceVersion: obs.ServiceVersion,
		Environment:    cfg.Server.Environment,
		OTLPEndpoint:   obs.Tracing.OTLPEndpoint,
		OTLPInsecure:   obs.Tracing.OTLPInsecure,
		SamplingRate:   obs.Tracing.SamplingRate,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("observability initialized",
		"tracing", obs.Tracing.Enabled,
		"metrics", obs.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}
