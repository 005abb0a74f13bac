package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/bookline/bookline_backend/internal/api/http/handler"
)

func (r *Router) registerNotificationRoutes(
	api fiber.Router,
	nh *handler.NotificationHandler,
	authRequired fiber.Handler,
) {
	notifs := api.Group("/notifications", authRequired)

	notifs.Post("/", nh.Create)
	notifs.Get("/", nh.List)

	// Settings routes go before /:notificationId so the literal segment wins.
	notifs.Get("/settings/:userId", nh.Settings)
	notifs.Patch("/settings/:userId", nh.UpdateSettings)

	notifs.Put("/:notificationId", nh.Update)
	notifs.Delete("/:notificationId", nh.Delete)
}
