package rbac

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prepwise-next/internal/constants"
)

// Table 只读角色表，构建后不可修改，可被并发读取
type Table struct {
	roles          map[string]*resolvedRole
	routes         map[string]RouteRule
	landing        map[string]string
	unmappedPolicy string
}

type resolvedRole struct {
	role Role
	// chain 自身在前，随后是深度优先展开的祖先角色
	chain       []string
	permissions []Permission
}

// Option 角色表构建选项
type Option func(*Table)

// WithRoutes 覆盖路由映射表
func WithRoutes(routes map[string]RouteRule) Option {
	return func(t *Table) {
		t.routes = make(map[string]RouteRule, len(routes))
		for route, rule := range routes {
			t.routes[normalizeRoute(route)] = rule
		}
	}
}

// WithUnmappedRoutePolicy 设置未映射路由的处理策略（deny/allow）
func WithUnmappedRoutePolicy(policy string) Option {
	return func(t *Table) {
		if strings.EqualFold(strings.TrimSpace(policy), constants.UnmappedRouteAllow) {
			t.unmappedPolicy = constants.UnmappedRouteAllow
			return
		}
		t.unmappedPolicy = constants.UnmappedRouteDeny
	}
}

// WithLandingRoutes 覆盖角色默认落地页
func WithLandingRoutes(landing map[string]string) Option {
	return func(t *Table) {
		t.landing = make(map[string]string, len(landing))
		for role, path := range landing {
			t.landing[role] = path
		}
	}
}

// NewTable 构建角色表并一次性展开继承关系
func NewTable(roles []Role, opts ...Option) (*Table, error) {
	defs := make(map[string]Role, len(roles))
	order := make([]string, 0, len(roles))
	for _, role := range roles {
		name := strings.TrimSpace(role.Name)
		if name == "" {
			return nil, ErrEmptyRoleName
		}
		if _, exists := defs[name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRole, name)
		}
		role.Name = name
		role.Permissions = clonePermissions(role.Permissions)
		role.Inherits = append([]string(nil), role.Inherits...)
		defs[name] = role
		order = append(order, name)
	}

	t := &Table{
		roles:          make(map[string]*resolvedRole, len(defs)),
		routes:         BuiltinRoutes(),
		landing:        builtinLanding(),
		unmappedPolicy: constants.UnmappedRouteDeny,
	}
	for _, name := range order {
		chain, err := resolveChain(defs, name)
		if err != nil {
			return nil, err
		}
		resolved := &resolvedRole{role: defs[name], chain: chain}
		for _, member := range chain {
			resolved.permissions = append(resolved.permissions, defs[member].Permissions...)
		}
		t.roles[name] = resolved
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t, nil
}

// resolveChain 深度优先展开继承链，检测环与未知父角色
func resolveChain(defs map[string]Role, root string) ([]string, error) {
	chain := make([]string, 0, 4)
	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		if onStack[name] {
			return fmt.Errorf("%w: %s", ErrRoleCycle, strings.Join(append(path, name), " -> "))
		}
		if visited[name] {
			return nil
		}
		role, ok := defs[name]
		if !ok {
			return fmt.Errorf("%w: %s (inherited by %s)", ErrUnknownRole, name, path[len(path)-1])
		}
		visited[name] = true
		onStack[name] = true
		chain = append(chain, name)
		for _, parent := range role.Inherits {
			if err := visit(strings.TrimSpace(parent), append(path, name)); err != nil {
				return err
			}
		}
		onStack[name] = false
		return nil
	}

	if err := visit(root, nil); err != nil {
		return nil, err
	}
	return chain, nil
}

// Level 返回角色层级
func (t *Table) Level(role string) (int, bool) {
	if t == nil {
		return 0, false
	}
	resolved, ok := t.roles[role]
	if !ok {
		return 0, false
	}
	return resolved.role.Level, true
}

// HasRole 判断角色是否存在
func (t *Table) HasRole(role string) bool {
	_, ok := t.Level(role)
	return ok
}

// Roles 按层级从高到低返回角色定义
func (t *Table) Roles() []Role {
	if t == nil {
		return nil
	}
	out := make([]Role, 0, len(t.roles))
	for _, resolved := range t.roles {
		role := resolved.role
		role.Permissions = clonePermissions(role.Permissions)
		role.Inherits = append([]string(nil), role.Inherits...)
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Level == out[j].Level {
			return out[i].Name < out[j].Name
		}
		return out[i].Level > out[j].Level
	})
	return out
}

// RoleNames 按层级从高到低返回角色名
func (t *Table) RoleNames() []string {
	roles := t.Roles()
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}
	return names
}

// InheritanceChain 返回角色自身及全部祖先
func (t *Table) InheritanceChain(role string) []string {
	if t == nil {
		return nil
	}
	resolved, ok := t.roles[role]
	if !ok {
		return nil
	}
	return append([]string(nil), resolved.chain...)
}

// EffectivePermissions 返回角色的有效权限（自身在前，继承在后）
func (t *Table) EffectivePermissions(role string) []Permission {
	if t == nil {
		return nil
	}
	resolved, ok := t.roles[role]
	if !ok {
		return nil
	}
	return clonePermissions(resolved.permissions)
}

// CanChangeRole 操作者只能授予不高于自身层级的角色
func (t *Table) CanChangeRole(actingRole, targetRole string) bool {
	actingLevel, ok := t.Level(actingRole)
	if !ok {
		return false
	}
	targetLevel, ok := t.Level(targetRole)
	if !ok {
		return false
	}
	return actingLevel >= targetLevel
}

// DefaultRoute 返回角色登录后的落地页
func (t *Table) DefaultRoute(subject *Subject) string {
	if subject == nil || t == nil {
		return LoginRoute
	}
	if path, ok := t.landing[subject.Role]; ok {
		return path
	}
	if t.HasRole(subject.Role) {
		return DashboardRoute
	}
	return LoginRoute
}

func clonePermissions(perms []Permission) []Permission {
	if perms == nil {
		return nil
	}
	out := make([]Permission, len(perms))
	for i, perm := range perms {
		out[i] = perm
		if perm.Conditions != nil {
			out[i].Conditions = make(map[string]interface{}, len(perm.Conditions))
			for k, v := range perm.Conditions {
				out[i].Conditions[k] = v
			}
		}
	}
	return out
}
