package authz

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestEnforceAdminWithRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("coupon_editor", "/admin/coupons/:id", "GET"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}
	if err := svc.SetAdminRoles(1, []string{"coupon_editor"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}

	allow, err := svc.EnforceAdmin(1, "/api/v1/admin/coupons/42", "get")
	if err != nil {
		t.Fatalf("enforce allow failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected allow=true")
	}
	allow, err = svc.EnforceAdmin(1, "/api/v1/admin/coupons/42", "DELETE")
	if err != nil {
		t.Fatalf("enforce deny failed: %v", err)
	}
	if allow {
		t.Fatalf("expected allow=false")
	}
}

func TestSetAdminRolesOverride(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("growth", "/admin/subscriptions", "GET"); err != nil {
		t.Fatalf("grant growth policy failed: %v", err)
	}
	if err := svc.GrantRolePolicy("ops", "/admin/tenants", "GET"); err != nil {
		t.Fatalf("grant ops policy failed: %v", err)
	}
	if err := svc.SetAdminRoles(2, []string{"growth"}); err != nil {
		t.Fatalf("set first role failed: %v", err)
	}
	if err := svc.SetAdminRoles(2, []string{"ops"}); err != nil {
		t.Fatalf("set second role failed: %v", err)
	}
	roles, err := svc.GetAdminRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:ops" {
		t.Fatalf("roles want [role:ops], got=%v", roles)
	}
	if allow, _ := svc.EnforceAdmin(2, "/admin/subscriptions", "GET"); allow {
		t.Fatalf("expected old role permission removed")
	}
	if allow, _ := svc.EnforceAdmin(2, "/admin/tenants", "GET"); !allow {
		t.Fatalf("expected new role permission granted")
	}
}

func TestNormalizeRoleAndObject(t *testing.T) {
	if got, err := NormalizeRole(" Coupon Editor "); err != nil || got != "role:coupon_editor" {
		t.Fatalf("unexpected normalized role %q err=%v", got, err)
	}
	if got, _ := NormalizeRole("role:support"); got != "role:support" {
		t.Fatalf("prefix should not be duplicated, got %q", got)
	}
	if _, err := NormalizeRole("  "); !errors.Is(err, ErrRoleRequired) {
		t.Fatalf("expected role required, got %v", err)
	}
	if _, err := NormalizeRole("__anchor__"); !errors.Is(err, ErrRoleReserved) {
		t.Fatalf("expected reserved role, got %v", err)
	}

	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/v1/admin/coupons/:id", want: "/admin/coupons/:id"},
		{in: "/admin/coupons/:id", want: "/admin/coupons/:id"},
		{in: "admin/users", want: "/admin/users"},
		{in: "/api/v1", want: "/"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		if got := NormalizeObject(item.in); got != item.want {
			t.Fatalf("normalize object failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap should be idempotent: %v", err)
	}

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	want := map[string]bool{
		"role:readonly_auditor": true,
		"role:marketing":        true,
		"role:support":          true,
	}
	for _, role := range roles {
		delete(want, role)
	}
	if len(want) != 0 {
		t.Fatalf("builtin roles missing: %v", want)
	}

	if err := svc.SetAdminRoles(3, []string{RoleMarketing}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}
	checks := []struct {
		obj   string
		act   string
		allow bool
	}{
		{obj: "/admin/users", act: "GET", allow: true},
		{obj: "/admin/coupons/7", act: "PUT", allow: true},
		{obj: "/admin/coupons/generate-code", act: "POST", allow: true},
		{obj: "/admin/subscriptions/export", act: "GET", allow: true},
		{obj: "/admin/users/7/role", act: "PATCH", allow: false},
		{obj: "/admin/tenants", act: "POST", allow: false},
	}
	for _, check := range checks {
		allow, err := svc.EnforceAdmin(3, check.obj, check.act)
		if err != nil {
			t.Fatalf("enforce %s %s failed: %v", check.act, check.obj, err)
		}
		if allow != check.allow {
			t.Fatalf("enforce %s %s want=%v got=%v", check.act, check.obj, check.allow, allow)
		}
	}

	policies, err := svc.GetAdminPolicies(3)
	if err != nil {
		t.Fatalf("get admin policies failed: %v", err)
	}
	var inherited bool
	for _, policy := range policies {
		if policy.Subject == "role:readonly_auditor" && policy.Object == "/admin/*" {
			inherited = true
		}
	}
	if !inherited {
		t.Fatalf("expected inherited readonly policy, got %+v", policies)
	}
}

func TestDeleteRoleProtectsBuiltin(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	if err := svc.DeleteRole(RoleSupport); !errors.Is(err, ErrRoleImmutable) {
		t.Fatalf("expected immutable error, got %v", err)
	}

	if err := svc.GrantRolePolicy("temp", "/admin/tenants", "GET"); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if err := svc.SetAdminRoles(4, []string{"temp"}); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if err := svc.DeleteRole("temp"); err != nil {
		t.Fatalf("delete custom role failed: %v", err)
	}
	if allow, _ := svc.EnforceAdmin(4, "/admin/tenants", "GET"); allow {
		t.Fatalf("deleted role should no longer grant access")
	}

	infos, err := svc.DescribeRoles()
	if err != nil {
		t.Fatalf("describe roles failed: %v", err)
	}
	for _, info := range infos {
		if info.Role == "role:temp" {
			t.Fatalf("deleted role still listed")
		}
		if info.Role == "role:marketing" {
			if !info.Builtin || len(info.Inherits) != 1 || info.Inherits[0] != "role:readonly_auditor" {
				t.Fatalf("unexpected marketing info: %+v", info)
			}
		}
	}
}
