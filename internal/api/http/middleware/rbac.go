package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/bookline/bookline_backend/pkg/authorize"
	pasetotoken "github.com/bookline/bookline_backend/pkg/paseto"
)

// RequirePermission checks if the authenticated user has the given permission
// in the sys domain.
func RequirePermission(auth authorize.IAuthorization, resource authorize.Resource, action authorize.Action) fiber.Handler {
	return func(c fiber.Ctx) error {
		claims, ok := pasetotoken.ClaimsFromFiber(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		subject := authorize.GroupSubjectForUser(claims.UserID)
		if err := auth.MustEnforce(c.Context(), subject, authorize.DomainSys, resource, action); err != nil {
			if errors.Is(err, authorize.ErrForbidden) {
				return fiber.ErrForbidden
			}
			return err
		}

		return c.Next()
	}
}
