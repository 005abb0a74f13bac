package reqctx

import (
	"context"

	"github.com/google/uuid"
)

// AuthClaims abstracts over token claim types so packages that only need
// "who is calling" do not import the token implementation.
type AuthClaims interface {
	GetUserID() uint
	GetSessionID() *uuid.UUID

	// GetTokenType distinguishes access from refresh tokens.
	GetTokenType() string

	IsExpired() bool
}

func WithClaims(ctx context.Context, claims AuthClaims) context.Context {
	return context.WithValue(ctx, keyClaims, claims)
}

// ClaimsFromContext returns the caller's claims, or nil on unauthenticated
// requests.
func ClaimsFromContext(ctx context.Context) AuthClaims {
	claims, ok := ctx.Value(keyClaims).(AuthClaims)
	if !ok {
		return nil
	}
	return claims
}

// IsAuthenticated reports whether unexpired claims are present.
func IsAuthenticated(ctx context.Context) bool {
	claims := ClaimsFromContext(ctx)
	return claims != nil && !claims.IsExpired()
}

// UserIDFromContext shortcuts to the claim's user id.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return 0, false
	}
	return claims.GetUserID(), true
}
