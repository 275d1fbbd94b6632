package rbac

import (
	"testing"

	"github.com/prepwise-next/internal/constants"
)

func TestCanAccessRouteMapped(t *testing.T) {
	table := DefaultTable()
	student := activeSubject(constants.RoleStudent, "t1")
	if !table.CanAccessRoute(student, "/dashboard/exams") {
		t.Fatalf("student should access exams")
	}
	if !table.CanAccessRoute(student, "/dashboard/exams/42?tab=review") {
		t.Fatalf("nested path should fall back to parent mapping")
	}
	if table.CanAccessRoute(student, "/admin/coupons") {
		t.Fatalf("student should not access admin coupons")
	}

	tenantAdmin := activeSubject(constants.RoleTenantAdmin, "t1")
	if !table.CanAccessRoute(tenantAdmin, "/tenant/users") {
		t.Fatalf("tenant admin should access own tenant users")
	}
	orphan := activeSubject(constants.RoleTenantAdmin, "")
	if table.CanAccessRoute(orphan, "/tenant/users") {
		t.Fatalf("tenant admin without tenant should be denied")
	}
}

func TestCanAccessRouteTrial(t *testing.T) {
	table := DefaultTable()
	trial := activeSubject(constants.RoleTrialUser, "")
	if table.CanAccessRoute(trial, "/dashboard/insights") {
		t.Fatalf("expired trial should not access insights")
	}
	trial.TrialActive = true
	if !table.CanAccessRoute(trial, "/dashboard/insights") {
		t.Fatalf("active trial should access insights")
	}
}

func TestCanAccessRouteUnmappedPolicy(t *testing.T) {
	student := activeSubject(constants.RoleStudent, "t1")

	deny := DefaultTable()
	if deny.CanAccessRoute(student, "/labs/experimental") {
		t.Fatalf("unmapped route should be denied by default")
	}

	allow := DefaultTable(WithUnmappedRoutePolicy("allow"))
	if !allow.CanAccessRoute(student, "/labs/experimental") {
		t.Fatalf("unmapped route should be allowed with allow policy")
	}
	if allow.CanAccessRoute(nil, "/labs/experimental") {
		t.Fatalf("anonymous subject should never pass unmapped routes")
	}
}

func TestPublicRoutes(t *testing.T) {
	table := DefaultTable()
	if !table.CanAccessRoute(nil, "/login") || !table.CanAccessRoute(nil, "/pricing/") {
		t.Fatalf("public routes should be reachable anonymously")
	}
}

func TestDefaultRoute(t *testing.T) {
	table := DefaultTable()
	cases := map[string]string{
		constants.RoleSuperAdmin:  AdminRoute,
		constants.RoleAdmin:       AdminRoute,
		constants.RoleTenantAdmin: TenantRoute,
		constants.RoleInstructor:  InstructorRoute,
		constants.RoleStudent:     DashboardRoute,
		constants.RoleTrialUser:   DashboardRoute,
		"ghost":                   LoginRoute,
	}
	for role, want := range cases {
		if got := table.DefaultRoute(activeSubject(role, "t1")); got != want {
			t.Fatalf("role %s: expected %s, got %s", role, want, got)
		}
	}
	if got := table.DefaultRoute(nil); got != LoginRoute {
		t.Fatalf("nil subject should land on login, got %s", got)
	}
}

func TestAccessibleRoutes(t *testing.T) {
	table := DefaultTable()
	routes := table.AccessibleRoutes(activeSubject(constants.RoleStudent, "t1"))
	seen := make(map[string]bool, len(routes))
	for _, r := range routes {
		seen[r] = true
	}
	if !seen["/dashboard"] || !seen["/dashboard/exams"] {
		t.Fatalf("expected dashboard routes, got %v", routes)
	}
	if seen["/admin"] || seen["/login"] {
		t.Fatalf("unexpected routes: %v", routes)
	}
}
