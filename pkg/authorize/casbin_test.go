package authorize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	casbin "github.com/casbin/casbin/v2"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

const testModel = `[request_definition]
r = sub, dom, obj, act

[policy_definition]
p = sub, dom, obj, act, eft

[role_definition]
g = _, _, _
g2 = _, _

[policy_effect]
e = some(where (p.eft == allow)) && !some(where (p.eft == deny))

[matchers]
m = (g(r.sub, p.sub, r.dom) || g2(r.sub, p.sub)) && (p.dom == "*" || p.dom == r.dom) && (p.obj == "*" || keyMatch2(r.obj, p.obj)) && (p.act == "*" || keyMatch(r.act, p.act))
`

// newTestEnforcer backs the enforcer with a file adapter in a temp dir
// so tests never need postgres.
func newTestEnforcer(t *testing.T) *casbin.DistributedEnforcer {
	t.Helper()

	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.conf")
	if err := os.WriteFile(modelPath, []byte(testModel), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	policyPath := filepath.Join(dir, "policy.csv")
	if err := os.WriteFile(policyPath, nil, 0o644); err != nil {
		t.Fatalf("write policy: %v", err)
	}

	e, err := casbin.NewDistributedEnforcer(modelPath, fileadapter.NewAdapter(policyPath))
	if err != nil {
		t.Fatalf("new enforcer: %v", err)
	}
	e.EnableAutoSave(false)
	e.EnableEnforce(true)
	return e
}

func newTestAuthorization(t *testing.T) IAuthorization {
	t.Helper()
	auth, err := NewAuthorization(newTestEnforcer(t))
	if err != nil {
		t.Fatalf("NewAuthorization: %v", err)
	}
	return auth
}

func TestNewAuthorizationNilEnforcer(t *testing.T) {
	if _, err := NewAuthorization(nil); !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("err = %v, want ErrInvalidArgs", err)
	}
}

func TestEnforce(t *testing.T) {
	auth := newTestAuthorization(t)
	ctx := context.Background()

	subject := GroupSubjectForUser(123)
	domain := UserDomain(123)

	if _, err := auth.AddRoleForUserInDomain(ctx, subject, RoleUserSelf, domain); err != nil {
		t.Fatalf("add role: %v", err)
	}
	if _, err := auth.AddPermission(ctx, RoleUserSelf, domain, ResourceNotification, ActionManage, EffectAllow); err != nil {
		t.Fatalf("add permission: %v", err)
	}

	t.Run("allowed when permission exists", func(t *testing.T) {
		got, err := auth.Enforce(ctx, subject, domain, ResourceNotification, ActionManage)
		if err != nil {
			t.Fatalf("Enforce: %v", err)
		}
		if !got {
			t.Fatal("expected allow")
		}
	})

	t.Run("denied without permission", func(t *testing.T) {
		got, err := auth.Enforce(ctx, subject, domain, ResourceAppointment, ActionDelete)
		if err != nil {
			t.Fatalf("Enforce: %v", err)
		}
		if got {
			t.Fatal("expected deny")
		}
	})

	bad := []struct {
		name     string
		subject  GroupSubject
		domain   Domain
		resource Resource
		action   Action
	}{
		{"empty subject", "", domain, ResourceNotification, ActionRead},
		{"invalid domain", subject, Domain("invalid"), ResourceNotification, ActionRead},
		{"unknown resource", subject, domain, Resource("unknown"), ActionRead},
		{"unknown action", subject, domain, ResourceNotification, Action("unknown")},
	}
	for _, tc := range bad {
		t.Run(tc.name, func(t *testing.T) {
			_, err := auth.Enforce(ctx, tc.subject, tc.domain, tc.resource, tc.action)
			if !errors.Is(err, ErrInvalidArgs) {
				t.Fatalf("err = %v, want ErrInvalidArgs", err)
			}
		})
	}
}

func TestMustEnforce(t *testing.T) {
	auth := newTestAuthorization(t)
	ctx := context.Background()

	subject := GroupSubjectForUser(456)
	if _, err := auth.AddRoleForUserInDomain(ctx, subject, RoleProfessional, DomainSys); err != nil {
		t.Fatalf("add role: %v", err)
	}
	if _, err := auth.AddPermission(ctx, RoleProfessional, DomainSys, ResourceAvailability, ActionManage, EffectAllow); err != nil {
		t.Fatalf("add permission: %v", err)
	}

	if err := auth.MustEnforce(ctx, subject, DomainSys, ResourceAvailability, ActionManage); err != nil {
		t.Fatalf("MustEnforce on allowed pair: %v", err)
	}
	if err := auth.MustEnforce(ctx, subject, DomainSys, ResourceAudit, ActionDelete); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestPlatformAdminBypass(t *testing.T) {
	auth := newTestAuthorization(t)
	ctx := context.Background()

	subject := GroupSubjectForUser(1)
	if _, err := auth.AddRoleForUserInDomain(ctx, subject, RolePlatformAdmin, DomainSys); err != nil {
		t.Fatalf("add role: %v", err)
	}

	// No explicit permission exists; the bypass alone allows this.
	allowed, err := auth.Enforce(ctx, subject, DomainSys, ResourceUser, ActionDelete)
	if err != nil {
		t.Fatalf("Enforce: %v", err)
	}
	if !allowed {
		t.Fatal("expected platform admin to be allowed")
	}
}

func TestPlatformAdminBypassDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SuperadminBypass = false
	auth, err := NewAuthorizationWithConfig(newTestEnforcer(t), cfg)
	if err != nil {
		t.Fatalf("NewAuthorizationWithConfig: %v", err)
	}
	ctx := context.Background()

	subject := GroupSubjectForUser(1)
	if _, err := auth.AddRoleForUserInDomain(ctx, subject, RolePlatformAdmin, DomainSys); err != nil {
		t.Fatalf("add role: %v", err)
	}

	allowed, err := auth.Enforce(ctx, subject, DomainSys, ResourceUser, ActionDelete)
	if err != nil {
		t.Fatalf("Enforce: %v", err)
	}
	if allowed {
		t.Fatal("bypass disabled, expected policy evaluation to deny")
	}
}

func TestRoleManagement(t *testing.T) {
	auth := newTestAuthorization(t)
	ctx := context.Background()

	subject := GroupSubjectForUser(789)

	added, err := auth.AddRoleForUserInDomain(ctx, subject, RoleClient, DomainSys)
	if err != nil || !added {
		t.Fatalf("add role: added=%v err=%v", added, err)
	}

	roles, err := auth.GetRolesForUserInDomain(ctx, subject, DomainSys)
	if err != nil {
		t.Fatalf("get roles: %v", err)
	}
	if len(roles) != 1 || roles[0] != RoleClient {
		t.Fatalf("roles = %v, want [%s]", roles, RoleClient)
	}

	removed, err := auth.RemoveRoleForUserInDomain(ctx, subject, RoleClient, DomainSys)
	if err != nil || !removed {
		t.Fatalf("remove role: removed=%v err=%v", removed, err)
	}
	roles, err = auth.GetRolesForUserInDomain(ctx, subject, DomainSys)
	if err != nil {
		t.Fatalf("get roles: %v", err)
	}
	if len(roles) != 0 {
		t.Fatalf("roles after removal = %v, want none", roles)
	}

	if _, err := auth.AddRoleForUserInDomain(ctx, subject, Role("invalid-role"), DomainSys); !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("err = %v, want ErrInvalidArgs", err)
	}
}

func TestPermissionManagement(t *testing.T) {
	auth := newTestAuthorization(t)
	ctx := context.Background()

	added, err := auth.AddPermission(ctx, RoleClient, DomainSys, ResourceReview, ActionRead, EffectAllow)
	if err != nil || !added {
		t.Fatalf("add permission: added=%v err=%v", added, err)
	}
	removed, err := auth.RemovePermission(ctx, RoleClient, DomainSys, ResourceReview, ActionRead, EffectAllow)
	if err != nil || !removed {
		t.Fatalf("remove permission: removed=%v err=%v", removed, err)
	}

	if _, err := auth.AddPermission(ctx, RoleProfessional, DomainSys, ResourceUser, ActionRead, PolicyEffect("invalid")); !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("err = %v, want ErrInvalidArgs", err)
	}
}
