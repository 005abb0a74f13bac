package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/bookline/bookline_backend/internal/api/http/handler"
	"github.com/bookline/bookline_backend/pkg/authorize"
)

func (r *Router) registerAvailabilityRoutes(
	api fiber.Router,
	h *handler.AvailabilityHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	group := api.Group("/availability")

	// Public slot discovery
	group.Get("/", h.Slots)
	group.Get("/check", h.Check)

	group.Get("/history", authRequired, h.History)
	group.Post("/update", authRequired, requirePerm(authorize.ResourceAvailability, authorize.ActionUpdate), h.Set)
}
