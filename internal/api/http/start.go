package http

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/bookline/bookline_backend/config"
	"github.com/bookline/bookline_backend/internal/api/http/router"
	"github.com/bookline/bookline_backend/internal/app"
)

// Start assembles the full application graph and blocks until shutdown.
func Start(cfg *config.Config, timeout time.Duration) {
	fx.New(
		fx.Supply(cfg),
		app.InfraModule,
		app.ServiceModule,
		app.WorkerModule,
		router.Module,
		Module,

		// Nothing consumes *fiber.App, so force its construction here.
		// The OnStart hook it registers is what actually serves traffic.
		fx.Invoke(func(*fiber.App) {}),

		fx.StopTimeout(timeout),
		// fx's own event log is noise next to the access log.
		fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }),
	).Run()
}
