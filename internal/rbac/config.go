package rbac

import (
	"github.com/prepwise-next/internal/config"
)

// NewTableFromConfig 根据配置构建角色表，未配置角色时使用预置矩阵
func NewTableFromConfig(cfg config.RBACConfig) (*Table, error) {
	opts := []Option{WithUnmappedRoutePolicy(cfg.UnmappedRoutePolicy)}
	if len(cfg.Roles) == 0 {
		return NewTable(BuiltinRoles(), opts...)
	}
	roles := make([]Role, 0, len(cfg.Roles))
	for _, item := range cfg.Roles {
		role := Role{
			Name:     item.Name,
			Level:    item.Level,
			Inherits: item.Inherits,
		}
		for _, perm := range item.Permissions {
			role.Permissions = append(role.Permissions, Permission{
				Resource:   perm.Resource,
				Action:     perm.Action,
				Conditions: perm.Conditions,
			})
		}
		roles = append(roles, role)
	}
	return NewTable(roles, opts...)
}
