// Package authorize wraps a Casbin distributed enforcer with a typed
// RBAC vocabulary: every domain, resource, action and role the policy
// model understands is a constant here, and the enforcer API refuses
// strings outside these sets.
package authorize

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/bookline/bookline_backend/pkg/constants"
)

type (
	Action   string
	Resource string
	Role     string
	Domain   string

	// GroupSubject is the g.sub column: a concrete principal, for us
	// always a user id rendered as a decimal string.
	GroupSubject string

	PolicyEffect string
)

// ----------------------------
// Actions
// ----------------------------

const (
	WildcardAction Action = "*"

	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"

	// ActionManage is shorthand for the full CRUD+list set.
	ActionManage Action = "manage"

	// RBAC administration
	ActionGrant  Action = "grant"
	ActionRevoke Action = "revoke"
)

var KnownActions = map[Action]struct{}{
	ActionCreate: {}, ActionRead: {}, ActionUpdate: {}, ActionDelete: {}, ActionList: {},
	ActionManage: {},
	ActionGrant:  {}, ActionRevoke: {},
}

// ----------------------------
// Resources
// ----------------------------

const (
	WildcardResource Resource = "*"

	// Identity / auth
	ResourceUser         Resource = "user"
	ResourceUserProfile  Resource = "user_profile"
	ResourceAuthSession  Resource = "auth_session"
	ResourceRefreshToken Resource = "refresh_token"
	ResourceOTP          Resource = "otp"

	// Scheduling
	ResourceProfessional Resource = "professional_profile"
	ResourceAvailability Resource = "availability"
	ResourceAppointment  Resource = "appointment"

	// Communication
	ResourceNotification Resource = "notification"
	ResourceReview       Resource = "review"

	// System / platform admin
	ResourceAudit Resource = "audit"
	ResourceRBAC  Resource = "rbac"
)

var KnownResources = map[Resource]struct{}{
	ResourceUser: {}, ResourceUserProfile: {}, ResourceAuthSession: {}, ResourceRefreshToken: {}, ResourceOTP: {},
	ResourceProfessional: {}, ResourceAvailability: {}, ResourceAppointment: {},
	ResourceNotification: {}, ResourceReview: {},
	ResourceAudit: {}, ResourceRBAC: {},
}

// ----------------------------
// Roles
// ----------------------------
//
// Roles are the policy subjects. Users receive them through grouping
// policies; permission policies are written against roles only.

const (
	WildcardRole Role = "*"

	// Platform role (domain = sys)
	RolePlatformAdmin Role = "role:platform:admin"

	// Marketplace roles (domain = sys)
	RoleProfessional Role = "role:professional"
	RoleClient       Role = "role:client"

	// Private user scope (domain = user:<id>)
	RoleUserSelf Role = "role:user:self"
)

var KnownRoles = map[Role]struct{}{
	RolePlatformAdmin: {},
	RoleProfessional:  {},
	RoleClient:        {},
	RoleUserSelf:      {},
}

// UserRoleToRBACRole maps users.role column values to Casbin roles.
var UserRoleToRBACRole = map[string]Role{
	constants.RoleRegular:      RoleClient,
	constants.RoleProfessional: RoleProfessional,
	constants.RoleAdmin:        RolePlatformAdmin,
}

// ----------------------------
// Domains
// ----------------------------

const (
	WildcardDomain Domain = "*"

	// DomainSys holds platform-wide policies.
	DomainSys Domain = "sys"

	// DomainPrefixUser prefixes each user's private domain.
	DomainPrefixUser Domain = "user:"
)

var reNumericID = regexp.MustCompile(`^[0-9]+$`)

// UserDomain builds the private domain for a user.
func UserDomain(userID uint) Domain {
	return Domain(fmt.Sprintf("%s%d", DomainPrefixUser, userID))
}

// GroupSubjectForUser builds the Casbin grouping subject for a user.
func GroupSubjectForUser(userID uint) GroupSubject {
	return GroupSubject(strconv.FormatUint(uint64(userID), 10))
}

// IsValidDomain reports whether d is the sys domain, the wildcard, or a
// well-formed user:<id> domain.
func IsValidDomain(d Domain) bool {
	if d == DomainSys || d == WildcardDomain {
		return true
	}

	s := string(d)
	prefix := string(DomainPrefixUser)
	if len(s) > len(prefix) && s[:len(prefix)] == prefix {
		return reNumericID.MatchString(s[len(prefix):])
	}
	return false
}

// ----------------------------
// Policy rows
// ----------------------------

const (
	EffectAllow PolicyEffect = "allow"
	EffectDeny  PolicyEffect = "deny"
)

// PermissionPolicy mirrors a p row: p, role, domain, resource, action, eft.
type PermissionPolicy struct {
	Subject Role
	Domain  Domain
	Object  Resource
	Action  Action
	Effect  PolicyEffect
}
