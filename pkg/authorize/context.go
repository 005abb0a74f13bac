package authorize

import (
	"context"
	"errors"

	"github.com/bookline/bookline_backend/pkg/reqctx"
)

var ErrNoSubjectInContext = errors.New("no subject found in context")

// SubjectFromContext derives the casbin subject for the authenticated
// user. The auth middleware stores claims with reqctx.WithClaims.
func SubjectFromContext(ctx context.Context) (GroupSubject, error) {
	userID, err := UserIDFromContext(ctx)
	if err != nil {
		return "", err
	}
	return GroupSubjectForUser(userID), nil
}

// UserIDFromContext reads the authenticated user id from ctx.
func UserIDFromContext(ctx context.Context) (uint, error) {
	if claims := reqctx.ClaimsFromContext(ctx); claims != nil {
		if id := claims.GetUserID(); id != 0 {
			return id, nil
		}
	}
	return 0, ErrNoSubjectInContext
}

// DomainFromResource picks the enforcement domain for a resource: the
// owner's private domain when known, the sys domain otherwise.
func DomainFromResource(ownerID *uint) Domain {
	if ownerID != nil && *ownerID != 0 {
		return UserDomain(*ownerID)
	}
	return DomainSys
}

// DomainFromContext is DomainFromResource for the current user.
func DomainFromContext(ctx context.Context) (Domain, error) {
	userID, err := UserIDFromContext(ctx)
	if err != nil {
		return "", err
	}
	return UserDomain(userID), nil
}
