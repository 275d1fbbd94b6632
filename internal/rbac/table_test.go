package rbac

import (
	"errors"
	"testing"

	"github.com/prepwise-next/internal/config"
	"github.com/prepwise-next/internal/constants"
)

func activeSubject(role, tenant string) *Subject {
	return &Subject{ID: "u-1", Role: role, TenantID: tenant, IsActive: true}
}

func TestInactiveSubjectAlwaysDenied(t *testing.T) {
	table := DefaultTable()
	for _, role := range []string{
		constants.RoleSuperAdmin,
		constants.RoleAdmin,
		constants.RoleStudent,
		constants.RoleTrialUser,
	} {
		subject := &Subject{ID: "u-1", Role: role, TenantID: "t1", IsActive: false}
		for _, pair := range [][2]string{{"*", "*"}, {"dashboard", "read"}, {"coupons", "delete"}} {
			if table.HasPermission(subject, pair[0], pair[1], AccessContext{"tenantId": "t1"}) {
				t.Fatalf("inactive %s should be denied %s:%s", role, pair[0], pair[1])
			}
		}
	}
	if table.HasPermission(nil, "dashboard", "read", nil) {
		t.Fatalf("nil subject should be denied")
	}
}

func TestGlobalWildcardMatchesEverything(t *testing.T) {
	table := DefaultTable()
	subject := activeSubject(constants.RoleSuperAdmin, "")
	for _, pair := range [][2]string{
		{"dashboard", "read"},
		{"coupons", "delete"},
		{"anything", "whatever"},
		{"", ""},
	} {
		if !table.HasPermission(subject, pair[0], pair[1], nil) {
			t.Fatalf("super admin should be allowed %q:%q", pair[0], pair[1])
		}
	}
}

func TestUngrantedPairDenied(t *testing.T) {
	table := DefaultTable()
	student := activeSubject(constants.RoleStudent, "t1")
	ctx := AccessContext{"tenantId": "t1"}
	denied := [][2]string{
		{constants.ResourceCoupons, constants.ActionCreate},
		{constants.ResourceUsers, constants.ActionRead},
		{constants.ResourceContent, constants.ActionUpdate},
		{constants.ResourceTenants, constants.ActionRead},
	}
	for _, pair := range denied {
		if table.HasPermission(student, pair[0], pair[1], ctx) {
			t.Fatalf("student should not have %s:%s", pair[0], pair[1])
		}
	}
	if !table.HasPermission(student, constants.ResourceDashboard, constants.ActionRead, nil) {
		t.Fatalf("student should read dashboard")
	}
}

func TestUnknownRoleDenied(t *testing.T) {
	table := DefaultTable()
	if table.HasPermission(activeSubject("ghost", ""), constants.ResourceDashboard, constants.ActionRead, nil) {
		t.Fatalf("unknown role should be denied")
	}
}

func TestTransitiveInheritance(t *testing.T) {
	table := DefaultTable()
	// tenant_admin -> instructor -> student
	tenantAdmin := activeSubject(constants.RoleTenantAdmin, "t1")
	if !table.HasPermission(tenantAdmin, constants.ResourceWellness, constants.ActionUpdate, nil) {
		t.Fatalf("tenant admin should inherit student wellness permission")
	}
	chain := table.InheritanceChain(constants.RoleAdmin)
	want := []string{constants.RoleAdmin, constants.RoleTenantAdmin, constants.RoleInstructor, constants.RoleStudent}
	if len(chain) != len(want) {
		t.Fatalf("unexpected chain: %v", chain)
	}
	for i := range want {
		if chain[i] != want[i] {
			t.Fatalf("unexpected chain order: %v", chain)
		}
	}
}

func TestTenantConditions(t *testing.T) {
	table := DefaultTable()
	instructor := activeSubject(constants.RoleInstructor, "t1")

	if !table.HasPermission(instructor, constants.ResourceContent, constants.ActionUpdate, AccessContext{"tenantId": "t1"}) {
		t.Fatalf("same tenant should be allowed")
	}
	if table.HasPermission(instructor, constants.ResourceContent, constants.ActionUpdate, AccessContext{"tenantId": "t2"}) {
		t.Fatalf("other tenant should be denied")
	}
	if table.HasPermission(instructor, constants.ResourceContent, constants.ActionUpdate, nil) {
		t.Fatalf("missing tenant context should be denied")
	}

	numeric := activeSubject(constants.RoleInstructor, "42")
	if !table.HasPermission(numeric, constants.ResourceContent, constants.ActionRead, AccessContext{"tenantId": 42}) {
		t.Fatalf("numeric tenant id in context should match")
	}
}

func TestTrialLimitedCondition(t *testing.T) {
	table := DefaultTable()
	trial := activeSubject(constants.RoleTrialUser, "")

	if table.HasPermission(trial, constants.ResourceExams, constants.ActionRead, nil) {
		t.Fatalf("trial without allowTrial should be denied")
	}
	if table.HasPermission(trial, constants.ResourceExams, constants.ActionRead, AccessContext{"allowTrial": "true"}) {
		t.Fatalf("allowTrial must be boolean true")
	}
	if !table.HasPermission(trial, constants.ResourceExams, constants.ActionRead, AccessContext{"allowTrial": true}) {
		t.Fatalf("trial with allowTrial should be allowed")
	}
	if !table.HasPermission(trial, constants.ResourcePomodoro, constants.ActionUpdate, nil) {
		t.Fatalf("unconditioned trial permission should be allowed")
	}
}

func TestFailingConditionFallsThroughToNextPermission(t *testing.T) {
	table, err := NewTable([]Role{
		{
			Name:  "reviewer",
			Level: 20,
			Permissions: []Permission{
				{Resource: "reports", Action: "read", Conditions: map[string]interface{}{"region": "eu"}},
				{Resource: "reports", Action: Wildcard},
			},
		},
	})
	if err != nil {
		t.Fatalf("new table failed: %v", err)
	}
	subject := activeSubject("reviewer", "")
	if !table.HasPermission(subject, "reports", "read", AccessContext{"region": "us"}) {
		t.Fatalf("second permission should match after first condition fails")
	}
}

func TestCustomConditionStrictEquality(t *testing.T) {
	table, err := NewTable([]Role{
		{
			Name:  "proctor",
			Level: 20,
			Permissions: []Permission{
				{Resource: "exams", Action: "grade", Conditions: map[string]interface{}{"examType": "mock", "attempt": 1}},
			},
		},
	})
	if err != nil {
		t.Fatalf("new table failed: %v", err)
	}
	subject := activeSubject("proctor", "")
	cases := []struct {
		ctx  AccessContext
		want bool
	}{
		{AccessContext{"examType": "mock", "attempt": 1}, true},
		{AccessContext{"examType": "mock", "attempt": float64(1)}, true},
		{AccessContext{"examType": "mock", "attempt": "1"}, false},
		{AccessContext{"examType": "final", "attempt": 1}, false},
		{AccessContext{"examType": "mock"}, false},
	}
	for i, tc := range cases {
		if got := table.HasPermission(subject, "exams", "grade", tc.ctx); got != tc.want {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, got)
		}
	}
}

func TestConfiguredConditionKeysMatchIgnoringCase(t *testing.T) {
	// 配置文件中的 planType 经加载后变为 plantype
	table, err := NewTableFromConfig(config.RBACConfig{
		Roles: []config.RBACRoleConfig{
			{
				Name:  "coach",
				Level: 20,
				Permissions: []config.RBACPermissionConfig{
					{Resource: "exams", Action: "assign", Conditions: map[string]interface{}{"plantype": "pro"}},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("new table from config failed: %v", err)
	}
	subject := activeSubject("coach", "")
	if !table.HasPermission(subject, "exams", "assign", AccessContext{"planType": "pro"}) {
		t.Fatalf("camelCase context key should satisfy lowercased condition")
	}
	if table.HasPermission(subject, "exams", "assign", AccessContext{"planType": "basic"}) {
		t.Fatalf("value must still match exactly")
	}
	if table.HasPermission(subject, "exams", "assign", AccessContext{}) {
		t.Fatalf("missing context key should deny")
	}
}

func TestCanChangeRole(t *testing.T) {
	table := DefaultTable()
	if !table.CanChangeRole(constants.RoleAdmin, constants.RoleStudent) {
		t.Fatalf("admin should change student")
	}
	if table.CanChangeRole(constants.RoleStudent, constants.RoleAdmin) {
		t.Fatalf("student should not change admin")
	}
	if !table.CanChangeRole(constants.RoleInstructor, constants.RoleInstructor) {
		t.Fatalf("equal level should be allowed")
	}
	if table.CanChangeRole("ghost", constants.RoleStudent) || table.CanChangeRole(constants.RoleAdmin, "ghost") {
		t.Fatalf("unknown roles should be denied")
	}
	for _, a := range table.Roles() {
		for _, b := range table.Roles() {
			if got := table.CanChangeRole(a.Name, b.Name); got != (a.Level >= b.Level) {
				t.Fatalf("CanChangeRole(%s,%s)=%v", a.Name, b.Name, got)
			}
		}
	}
}

func TestNewTableDetectsCycle(t *testing.T) {
	_, err := NewTable([]Role{
		{Name: "a", Level: 1, Inherits: []string{"b"}},
		{Name: "b", Level: 1, Inherits: []string{"c"}},
		{Name: "c", Level: 1, Inherits: []string{"a"}},
	})
	if !errors.Is(err, ErrRoleCycle) {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestNewTableRejectsUnknownParentAndDuplicates(t *testing.T) {
	if _, err := NewTable([]Role{{Name: "a", Inherits: []string{"missing"}}}); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected unknown role error, got %v", err)
	}
	if _, err := NewTable([]Role{{Name: "a"}, {Name: "a"}}); !errors.Is(err, ErrDuplicateRole) {
		t.Fatalf("expected duplicate role error, got %v", err)
	}
	if _, err := NewTable([]Role{{Name: " "}}); !errors.Is(err, ErrEmptyRoleName) {
		t.Fatalf("expected empty name error, got %v", err)
	}
}

func TestDiamondInheritanceVisitsOnce(t *testing.T) {
	table, err := NewTable([]Role{
		{Name: "base", Level: 1, Permissions: []Permission{{Resource: "r", Action: "a"}}},
		{Name: "left", Level: 2, Inherits: []string{"base"}},
		{Name: "right", Level: 2, Inherits: []string{"base"}},
		{Name: "top", Level: 3, Inherits: []string{"left", "right"}},
	})
	if err != nil {
		t.Fatalf("new table failed: %v", err)
	}
	if got := len(table.EffectivePermissions("top")); got != 1 {
		t.Fatalf("expected 1 effective permission, got %d", got)
	}
}

func TestTableIsNotMutatedThroughAccessors(t *testing.T) {
	roles := BuiltinRoles()
	table, err := NewTable(roles)
	if err != nil {
		t.Fatalf("new table failed: %v", err)
	}
	roles[0].Permissions[0].Resource = "nothing"
	perms := table.EffectivePermissions(constants.RoleSuperAdmin)
	perms[0].Action = "nothing"

	if !table.HasPermission(activeSubject(constants.RoleSuperAdmin, ""), "coupons", "delete", nil) {
		t.Fatalf("table must not observe caller mutations")
	}
}

func TestRoleNamesOrderedByLevel(t *testing.T) {
	names := DefaultTable().RoleNames()
	want := []string{
		constants.RoleSuperAdmin,
		constants.RoleAdmin,
		constants.RoleTenantAdmin,
		constants.RoleInstructor,
		constants.RoleStudent,
		constants.RoleTrialUser,
	}
	if len(names) != len(want) {
		t.Fatalf("role count want %d got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("role %d want %s got %s", i, want[i], names[i])
		}
	}
}
