package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/bookline/bookline_backend/config"
	"github.com/bookline/bookline_backend/internal/api/http/handler"
	"github.com/bookline/bookline_backend/internal/api/http/middleware"
	"github.com/bookline/bookline_backend/internal/service/auth"
	"github.com/bookline/bookline_backend/internal/service/availability"
	"github.com/bookline/bookline_backend/internal/service/booking"
	"github.com/bookline/bookline_backend/internal/service/notification"
	"github.com/bookline/bookline_backend/internal/service/professional"
	"github.com/bookline/bookline_backend/internal/service/user"
	"github.com/bookline/bookline_backend/pkg/authorize"
	pasetotoken "github.com/bookline/bookline_backend/pkg/paseto"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg             *config.Config
	Redis           *redis.Client
	Auth            authorize.IAuthorization
	DB              *gorm.DB
	UserSvc         user.Service
	AuthSvc         auth.Service
	ProfessionalSvc professional.Service
	AvailabilitySvc availability.Service
	BookingSvc      booking.Service
	NotificationSvc notification.Service
	PasetoMgr       *pasetotoken.Manager
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// Probes and metrics sit outside /api/v1 and skip auth.
	r.registerSystemRoutes(app)

	authRequired := middleware.AuthRequired(r.p.PasetoMgr, r.p.Redis)
	requirePerm := func(res authorize.Resource, act authorize.Action) fiber.Handler {
		return middleware.RequirePermission(r.p.Auth, res, act)
	}

	authH := handler.NewAuthHandler(r.p.AuthSvc)
	userH := handler.NewUserHandler(r.p.UserSvc)
	professionalH := handler.NewProfessionalHandler(r.p.ProfessionalSvc)
	availabilityH := handler.NewAvailabilityHandler(r.p.AvailabilitySvc)
	bookingH := handler.NewBookingHandler(r.p.BookingSvc)
	notificationH := handler.NewNotificationHandler(r.p.NotificationSvc)

	api := app.Group("/api/v1")

	// One file per resource group under this directory.
	r.registerAuthRoutes(api, authH, authRequired)
	r.registerUserRoutes(api, userH, authRequired, requirePerm)
	r.registerProfessionalRoutes(api, professionalH, authRequired, requirePerm)
	r.registerAvailabilityRoutes(api, availabilityH, authRequired, requirePerm)
	r.registerBookingRoutes(api, bookingH, authRequired, requirePerm)
	r.registerNotificationRoutes(api, notificationH, authRequired)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get("/system/health", healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			if r.p.Cfg.Authorization.HealthCheckEnabled && !authorize.IsPolicyHealthy() {
				return false
			}
			if err := r.p.Redis.Ping(c.Context()).Err(); err != nil {
				return false
			}
			sqlDB, err := r.p.DB.DB()
			if err != nil {
				return false
			}
			return sqlDB.PingContext(c.Context()) == nil
		},
	}))

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/system/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
