package rbac

import (
	"sort"
	"strings"

	"github.com/prepwise-next/internal/constants"
)

// 常用落地页
const (
	LoginRoute      = "/login"
	DashboardRoute  = "/dashboard"
	AdminRoute      = "/admin"
	TenantRoute     = "/tenant"
	InstructorRoute = "/instructor"
)

// BuiltinRoutes 前端页面路由与权限的对应关系
func BuiltinRoutes() map[string]RouteRule {
	read := func(resource string) RouteRule {
		return RouteRule{Resource: resource, Action: constants.ActionRead}
	}
	return map[string]RouteRule{
		"/login":           {Public: true},
		"/register":        {Public: true},
		"/pricing":         {Public: true},
		"/forgot-password": {Public: true},

		"/dashboard":          read(constants.ResourceDashboard),
		"/dashboard/exams":    read(constants.ResourceExams),
		"/dashboard/wellness": read(constants.ResourceWellness),
		"/dashboard/pomodoro": read(constants.ResourcePomodoro),
		"/dashboard/insights": read(constants.ResourceInsights),
		"/dashboard/profile":  read(constants.ResourceProfile),
		"/dashboard/billing":  read(constants.ResourceBilling),

		"/instructor":          read(constants.ResourceContent),
		"/instructor/content":  {Resource: constants.ResourceContent, Action: constants.ActionUpdate},
		"/instructor/students": read(constants.ResourceProgress),

		"/tenant":           read(constants.ResourceUsers),
		"/tenant/users":     {Resource: constants.ResourceUsers, Action: constants.ActionUpdate},
		"/tenant/analytics": read(constants.ResourceAnalytics),

		"/admin":               {Resource: constants.ResourceUsers, Action: constants.ActionManage},
		"/admin/users":         {Resource: constants.ResourceUsers, Action: constants.ActionManage},
		"/admin/tenants":       read(constants.ResourceTenants),
		"/admin/coupons":       read(constants.ResourceCoupons),
		"/admin/subscriptions": read(constants.ResourceSubscriptions),
		"/admin/analytics":     read(constants.ResourceAnalytics),
		"/admin/settings":      {Resource: constants.ResourceSettings, Action: constants.ActionManage},
	}
}

func builtinLanding() map[string]string {
	return map[string]string{
		constants.RoleSuperAdmin:  AdminRoute,
		constants.RoleAdmin:       AdminRoute,
		constants.RoleTenantAdmin: TenantRoute,
		constants.RoleInstructor:  InstructorRoute,
		constants.RoleStudent:     DashboardRoute,
		constants.RoleTrialUser:   DashboardRoute,
	}
}

// CanAccessRoute 按路由映射判定页面访问权限
// 上下文取主体自身租户与试用状态，即在本租户内导航
func (t *Table) CanAccessRoute(subject *Subject, route string) bool {
	if t == nil {
		return false
	}
	var ctx AccessContext
	if subject != nil {
		ctx = AccessContext{
			constants.AccessContextTenantID:   subject.TenantID,
			constants.AccessContextAllowTrial: subject.TrialActive,
		}
	}
	return t.CanAccessRouteWithContext(subject, route, ctx)
}

// CanAccessRouteWithContext 使用调用方提供的上下文判定页面访问权限
func (t *Table) CanAccessRouteWithContext(subject *Subject, route string, ctx AccessContext) bool {
	if t == nil {
		return false
	}
	rule, ok := t.lookupRoute(route)
	if !ok {
		if t.unmappedPolicy != constants.UnmappedRouteAllow {
			return false
		}
		return subject != nil && subject.IsActive && t.HasRole(subject.Role)
	}
	if rule.Public {
		return true
	}
	return t.HasPermission(subject, rule.Resource, rule.Action, ctx)
}

// RouteMapped 判断路由是否存在映射
func (t *Table) RouteMapped(route string) bool {
	_, ok := t.lookupRoute(route)
	return ok
}

// AccessibleRoutes 返回主体可访问的非公开路由，按路径排序
func (t *Table) AccessibleRoutes(subject *Subject) []string {
	if t == nil || subject == nil {
		return nil
	}
	out := make([]string, 0, len(t.routes))
	for route, rule := range t.routes {
		if rule.Public {
			continue
		}
		if t.CanAccessRoute(subject, route) {
			out = append(out, route)
		}
	}
	sort.Strings(out)
	return out
}

// lookupRoute 先精确匹配，再逐级回退到父路径
func (t *Table) lookupRoute(route string) (RouteRule, bool) {
	path := normalizeRoute(route)
	for path != "" && path != "/" {
		if rule, ok := t.routes[path]; ok {
			return rule, true
		}
		idx := strings.LastIndex(path, "/")
		if idx <= 0 {
			break
		}
		path = path[:idx]
	}
	if path == "/" {
		rule, ok := t.routes["/"]
		return rule, ok
	}
	return RouteRule{}, false
}

func normalizeRoute(route string) string {
	path := strings.TrimSpace(route)
	if idx := strings.IndexAny(path, "?#"); idx >= 0 {
		path = path[:idx]
	}
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return strings.ToLower(path)
}
