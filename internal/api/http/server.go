package http

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/logger"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/bookline/bookline_backend/config"
	"github.com/bookline/bookline_backend/internal/api/http/middleware"
	"github.com/bookline/bookline_backend/internal/api/http/router"
	"github.com/bookline/bookline_backend/pkg/observability"
)

// Module provides the fiber application to the fx graph.
var Module = fx.Module("http", fx.Provide(NewServer))

// accessLogFormat carries the request id set by middleware.RequestID so
// access lines can be joined with the structured logs.
const accessLogFormat = "${ip} - [${time}] [req_id=${requestId}] ${method} ${url} ${status}\n"

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Cfg       *config.Config
	Redis     *redis.Client
	Router    *router.Router
	OTel      *observability.Provider `optional:"true"`
}

// NewServer assembles the fiber app, mounts global middleware and all
// routes, and ties listen/shutdown to the fx lifecycle.
func NewServer(p Params) *fiber.App {
	app := fiber.New()

	// Tracing goes first so every later handler runs inside the span.
	if p.OTel != nil && p.Cfg.Observability.Tracing.Enabled {
		app.Use(observability.FiberMiddleware())
	}

	mountGlobal(app, p.Cfg, p.Redis)

	p.Router.Register(app)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			addr := fmt.Sprintf(":%d", p.Cfg.Server.Port)
			go func() {
				if err := app.Listen(addr); err != nil {
					slog.Error("HTTP server error", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})

	return app
}

// mountGlobal wires the middleware every route shares. Hardening and
// rate limiting apply only in production.
func mountGlobal(app *fiber.App, cfg *config.Config, rdb *redis.Client) {
	app.Use(middleware.RequestID())
	app.Use(recoverer.New())

	if cfg.Server.Environment == "production" {
		app.Use(helmet.New())
		if c := cfg.Server.CORS; c.Enabled {
			app.Use(cors.New(cors.Config{
				AllowOrigins:     c.AllowOrigins,
				AllowMethods:     c.AllowMethods,
				AllowHeaders:     c.AllowHeaders,
				ExposeHeaders:    c.ExposeHeaders,
				AllowCredentials: c.AllowCredentials,
				MaxAge:           c.MaxAgeSeconds,
			}))
		}
		app.Use(middleware.NewLimiterWithRedis(rdb))
	}

	app.Use(logger.New(logger.Config{Format: accessLogFormat}))
}
