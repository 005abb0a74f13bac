package pasetotoken

import (
	"time"

	"github.com/bookline/bookline_backend/config"
	"github.com/gofiber/fiber/v3"
)

// CtxKeyClaims is the fiber Locals key the auth middleware stores verified
// claims under.
const CtxKeyClaims = "auth.claims"

// ClaimsFromFiber reads the claims the auth middleware stored for this
// request. ok is false on routes that skipped authentication.
func ClaimsFromFiber(c fiber.Ctx) (*Claims, bool) {
	cl, ok := c.Locals(CtxKeyClaims).(*Claims)
	return cl, ok && cl != nil
}

// NewPasetoManager builds a Manager from the central config's
// authentication.paseto section.
func NewPasetoManager(cfg *config.Config) (*Manager, error) {
	p := cfg.Authentication.Paseto

	keys, err := LoadKeys(KeyStrings{
		Mode:         Mode(p.Mode),
		SymmetricHex: p.LocalKeyHex,
		SecretHex:    p.SecretKeyHex,
		PublicHex:    p.PublicKeyHex,
	})
	if err != nil {
		return nil, err
	}

	return New(Config{
		Mode:       Mode(p.Mode),
		Issuer:     p.Issuer,
		Audience:   p.Audience,
		AccessTTL:  time.Duration(p.AccessTTLMinutes) * time.Minute,
		RefreshTTL: time.Duration(p.RefreshTTLDays) * 24 * time.Hour,
	}, keys)
}
