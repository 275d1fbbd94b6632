package authz

// 后台预置角色
const (
	RoleReadonlyAuditor = "readonly_auditor"
	RoleMarketing       = "marketing"
	RoleSupport         = "support"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role        string
	Description string
	Inherits    []string
	Policies    []Policy
}

// BuiltinRoleSeeds 后台预置角色矩阵，预置角色不可删除
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role:        RoleReadonlyAuditor,
			Description: "只读审计",
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
		},
		{
			Role:        RoleMarketing,
			Description: "运营：优惠券与邮件订阅",
			Inherits:    []string{RoleReadonlyAuditor},
			Policies: []Policy{
				{Object: "/admin/coupons", Action: "*"},
				{Object: "/admin/coupons/:id", Action: "*"},
				{Object: "/admin/coupons/:id/status", Action: "PATCH"},
				{Object: "/admin/coupons/generate-code", Action: "POST"},
				{Object: "/admin/coupons/validate-data", Action: "POST"},
				{Object: "/admin/subscriptions", Action: "*"},
				{Object: "/admin/subscriptions/:id", Action: "*"},
				{Object: "/admin/subscriptions/:id/status", Action: "PATCH"},
				{Object: "/admin/subscriptions/export", Action: "GET"},
			},
		},
		{
			Role:        RoleSupport,
			Description: "客服：用户与租户",
			Inherits:    []string{RoleReadonlyAuditor},
			Policies: []Policy{
				{Object: "/admin/users/:id/role", Action: "PATCH"},
				{Object: "/admin/users/:id/status", Action: "PATCH"},
				{Object: "/admin/tenants", Action: "POST"},
				{Object: "/admin/tenants/:id", Action: "PUT"},
			},
		},
	}
}

// IsBuiltinRole 判断是否为预置角色
func IsBuiltinRole(role string) bool {
	normalized, err := NormalizeRole(role)
	if err != nil {
		return false
	}
	for _, seed := range BuiltinRoleSeeds() {
		if rolePrefix+seed.Role == normalized {
			return true
		}
	}
	return false
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return ErrUnavailable
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}
		if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, roleAnchor); err != nil {
			return wrapf("create builtin role", err)
		}
		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return wrapf("link role inheritance", err)
			}
		}
		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return ErrActionRequired
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return wrapf("add builtin policy", err)
			}
		}
	}
	return nil
}
