package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/bookline/bookline_backend/internal/api/http/handler"
	"github.com/bookline/bookline_backend/pkg/authorize"
)

func (r *Router) registerProfessionalRoutes(
	api fiber.Router,
	h *handler.ProfessionalHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	group := api.Group("/professional")

	// Public directory views
	group.Get("/", h.List)
	group.Get("/:id", h.Get)

	group.Post("/", authRequired, requirePerm(authorize.ResourceProfessional, authorize.ActionCreate), h.Create)
	group.Put("/:id", authRequired, requirePerm(authorize.ResourceProfessional, authorize.ActionUpdate), h.Update)
	group.Delete("/:id", authRequired, requirePerm(authorize.ResourceProfessional, authorize.ActionDelete), h.Delete)
}
