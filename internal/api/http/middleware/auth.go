package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"

	pasetotoken "github.com/bookline/bookline_backend/pkg/paseto"
	"github.com/bookline/bookline_backend/pkg/reqctx"
)

// AuthRequired verifies a Bearer PASETO access token and confirms its
// session is still live in redis. Claims land in fiber locals under
// pasetotoken.CtxKeyClaims and on the request context for the service
// layer.
func AuthRequired(mgr *pasetotoken.Manager, rdb *redis.Client) fiber.Handler {
	return func(c fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return fiber.ErrUnauthorized
		}

		claims, err := mgr.Verify(token)
		if err != nil {
			return fiber.ErrUnauthorized
		}

		// Refresh tokens are good only at the refresh endpoint.
		if claims.Type != pasetotoken.TokenTypeAccess {
			return fiber.ErrUnauthorized
		}

		// A deleted session record revokes the token even though its
		// signature still verifies.
		if claims.SessionID != nil {
			key := "session:" + claims.SessionID.String()
			if err := rdb.Get(c.Context(), key).Err(); err != nil {
				return fiber.ErrUnauthorized
			}
		}

		c.Locals(pasetotoken.CtxKeyClaims, claims)
		c.SetContext(reqctx.WithClaims(c.Context(), claims))
		return c.Next()
	}
}

func bearerToken(c fiber.Ctx) string {
	parts := strings.SplitN(c.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
