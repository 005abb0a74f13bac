package authorize

import (
	"context"
	"log/slog"
)

// SeedDefaultPolicies sets up the baseline RBAC policies for the system.
func SeedDefaultPolicies(ctx context.Context, auth IAuthorization) error {
	logger := slog.Default()

	// System-level policies (domain: sys)
	sysPolicies := []PermissionPolicy{
		// Platform admin: god mode
		{RolePlatformAdmin, DomainSys, WildcardResource, WildcardAction, EffectAllow},

		// Professionals: own the scheduling surface
		{RoleProfessional, DomainSys, ResourceProfessional, ActionManage, EffectAllow},
		{RoleProfessional, DomainSys, ResourceAvailability, ActionManage, EffectAllow},
		{RoleProfessional, DomainSys, ResourceAppointment, ActionRead, EffectAllow},
		{RoleProfessional, DomainSys, ResourceAppointment, ActionList, EffectAllow},
		{RoleProfessional, DomainSys, ResourceAppointment, ActionUpdate, EffectAllow},
		{RoleProfessional, DomainSys, ResourceReview, ActionRead, EffectAllow},
		{RoleProfessional, DomainSys, ResourceReview, ActionList, EffectAllow},
		{RoleProfessional, DomainSys, ResourceUser, ActionRead, EffectAllow},

		// Clients: browse professionals, book and manage their appointments
		{RoleClient, DomainSys, ResourceProfessional, ActionRead, EffectAllow},
		{RoleClient, DomainSys, ResourceProfessional, ActionList, EffectAllow},
		{RoleClient, DomainSys, ResourceAvailability, ActionRead, EffectAllow},
		{RoleClient, DomainSys, ResourceAvailability, ActionList, EffectAllow},
		{RoleClient, DomainSys, ResourceAppointment, ActionCreate, EffectAllow},
		{RoleClient, DomainSys, ResourceAppointment, ActionRead, EffectAllow},
		{RoleClient, DomainSys, ResourceAppointment, ActionList, EffectAllow},
		{RoleClient, DomainSys, ResourceAppointment, ActionUpdate, EffectAllow},
		{RoleClient, DomainSys, ResourceAppointment, ActionDelete, EffectAllow},
		{RoleClient, DomainSys, ResourceNotification, ActionManage, EffectAllow},
		{RoleClient, DomainSys, ResourceReview, ActionCreate, EffectAllow},
		{RoleClient, DomainSys, ResourceReview, ActionRead, EffectAllow},
		{RoleClient, DomainSys, ResourceReview, ActionList, EffectAllow},
	}

	// User-level policies (domain: user:*)
	userPolicies := []PermissionPolicy{
		// UserSelf: full control over own resources
		{RoleUserSelf, WildcardDomain, ResourceUser, ActionManage, EffectAllow},
		{RoleUserSelf, WildcardDomain, ResourceUserProfile, ActionManage, EffectAllow},
		{RoleUserSelf, WildcardDomain, ResourceAuthSession, ActionManage, EffectAllow},
		{RoleUserSelf, WildcardDomain, ResourceRefreshToken, ActionManage, EffectAllow},
		{RoleUserSelf, WildcardDomain, ResourceNotification, ActionManage, EffectAllow},
	}

	allPolicies := append(sysPolicies, userPolicies...)

	for _, p := range allPolicies {
		added, err := auth.AddPermission(ctx, p.Subject, p.Domain, p.Object, p.Action, p.Effect)
		if err != nil {
			logger.Error("failed to add policy", "policy", p, "error", err)
			return err
		}
		if added {
			logger.Debug("added policy", "role", p.Subject, "domain", p.Domain, "resource", p.Object, "action", p.Action)
		}
	}

	logger.Info("seeded default RBAC policies", "count", len(allPolicies))
	return nil
}

// AssignUserSelfRole assigns the user:self role in the user's private domain.
// Call this when creating a new user.
func AssignUserSelfRole(ctx context.Context, auth IAuthorization, userID uint) error {
	domain := UserDomain(userID)
	subject := GroupSubjectForUser(userID)

	_, err := auth.AddRoleForUserInDomain(ctx, subject, RoleUserSelf, domain)
	return err
}

// AssignMarketplaceRole maps a users.role column value onto the matching
// Casbin role in the sys domain. Call this when creating a new user and
// again whenever the stored role changes.
func AssignMarketplaceRole(ctx context.Context, auth IAuthorization, userID uint, userRole string) error {
	role, ok := UserRoleToRBACRole[userRole]
	if !ok {
		return ErrInvalidArgs
	}

	subject := GroupSubjectForUser(userID)
	_, err := auth.AddRoleForUserInDomain(ctx, subject, role, DomainSys)
	return err
}

// RemoveMarketplaceRole removes a sys-domain role from a user, e.g. when a
// professional account is deleted or demoted.
func RemoveMarketplaceRole(ctx context.Context, auth IAuthorization, userID uint, role Role) error {
	subject := GroupSubjectForUser(userID)
	_, err := auth.RemoveRoleForUserInDomain(ctx, subject, role, DomainSys)
	return err
}

// GetMarketplaceRoles returns all sys-domain roles a user holds.
func GetMarketplaceRoles(ctx context.Context, auth IAuthorization, userID uint) ([]Role, error) {
	subject := GroupSubjectForUser(userID)
	return auth.GetRolesForUserInDomain(ctx, subject, DomainSys)
}
