package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/bookline/bookline_backend/internal/api/http/handler"
	"github.com/bookline/bookline_backend/pkg/authorize"
)

func (r *Router) registerBookingRoutes(
	api fiber.Router,
	h *handler.BookingHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	bookings := api.Group("/bookings", authRequired)

	bookings.Post("/", h.Book)
	bookings.Delete("/cancel", h.Cancel)
	bookings.Put("/update", h.Update)
	bookings.Get("/user", h.ListForUser)

	// Cross-user oversight
	admin := api.Group("/admin", authRequired)
	admin.Get("/bookings", requirePerm(authorize.ResourceAppointment, authorize.ActionList), h.AdminOverview)
}
