package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/bookline/bookline_backend/internal/api/http/handler"
	"github.com/bookline/bookline_backend/pkg/authorize"
)

func (r *Router) registerUserRoutes(
	api fiber.Router,
	h *handler.UserHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	users := api.Group("/users")

	// Registration is open.
	users.Post("/", h.Create)

	users.Get("/", authRequired, requirePerm(authorize.ResourceUser, authorize.ActionList), h.List)
	users.Get("/:userId", authRequired, h.Get)
	users.Put("/:userId", authRequired, h.Update)
	users.Delete("/:userId", authRequired, requirePerm(authorize.ResourceUser, authorize.ActionDelete), h.Delete)
}
