package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/bookline/bookline_backend/pkg/reqctx"
)

// HeaderRequestID is echoed on every response so clients can quote the
// id in bug reports.
const HeaderRequestID = "X-Request-Id"

// LocalRequestID is the fiber locals key the access logger reads.
const LocalRequestID = "request_id"

// RequestID assigns every request an id, honoring one supplied by the
// caller, and attaches reqctx.RequestMeta to the request context for
// the layers below.
func RequestID() fiber.Handler {
	return func(c fiber.Ctx) error {
		rid := c.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Locals(LocalRequestID, rid)
		c.Set(HeaderRequestID, rid)
		// Mirror onto the request headers so adaptor-wrapped net/http
		// handlers see the same id.
		c.Request().Header.Set(HeaderRequestID, rid)

		c.SetContext(reqctx.WithRequestMeta(c.Context(), &reqctx.RequestMeta{
			RequestID:   rid,
			ClientIP:    c.IP(),
			UserAgent:   c.Get("User-Agent"),
			RequestedAt: time.Now(),
		}))

		return c.Next()
	}
}

// RequestIDFromFiber reads the id assigned by RequestID.
func RequestIDFromFiber(c fiber.Ctx) (string, bool) {
	s, ok := c.Locals(LocalRequestID).(string)
	return s, ok && s != ""
}
