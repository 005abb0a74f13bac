package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/bookline/bookline_backend/internal/api/http/handler"
)

func (r *Router) registerAuthRoutes(api fiber.Router, h *handler.AuthHandler, authRequired fiber.Handler) {
	// Login lives under /users for historical reasons.
	api.Post("/users/authenticate", h.Authenticate)

	group := api.Group("/auth")
	group.Post("/refresh", h.Refresh)
	group.Post("/logout", authRequired, h.Logout)
	group.Post("/phone/request", authRequired, h.RequestPhoneOTP)
	group.Post("/phone/verify", authRequired, h.VerifyPhoneOTP)
}
