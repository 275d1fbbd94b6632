package rbac

import (
	"github.com/prepwise-next/internal/constants"
)

// BuiltinRoles 系统预置角色矩阵
func BuiltinRoles() []Role {
	ownTenant := map[string]interface{}{constants.ConditionOwnTenant: true}
	sameTenant := map[string]interface{}{constants.ConditionSameTenant: true}
	tenantScoped := map[string]interface{}{constants.ConditionTenantScoped: true}
	limited := map[string]interface{}{constants.ConditionLimited: true}

	return []Role{
		{
			Name:  constants.RoleSuperAdmin,
			Level: 100,
			Permissions: []Permission{
				{Resource: Wildcard, Action: Wildcard},
			},
		},
		{
			Name:     constants.RoleAdmin,
			Level:    90,
			Inherits: []string{constants.RoleTenantAdmin},
			Permissions: []Permission{
				{Resource: constants.ResourceUsers, Action: Wildcard},
				{Resource: constants.ResourceTenants, Action: Wildcard},
				{Resource: constants.ResourceCoupons, Action: Wildcard},
				{Resource: constants.ResourceSubscriptions, Action: Wildcard},
				{Resource: constants.ResourceAnalytics, Action: constants.ActionRead},
				{Resource: constants.ResourceSettings, Action: Wildcard},
				{Resource: constants.ResourceBilling, Action: Wildcard},
			},
		},
		{
			Name:     constants.RoleTenantAdmin,
			Level:    70,
			Inherits: []string{constants.RoleInstructor},
			Permissions: []Permission{
				{Resource: constants.ResourceUsers, Action: constants.ActionRead, Conditions: tenantScoped},
				{Resource: constants.ResourceUsers, Action: constants.ActionCreate, Conditions: tenantScoped},
				{Resource: constants.ResourceUsers, Action: constants.ActionUpdate, Conditions: tenantScoped},
				{Resource: constants.ResourceAnalytics, Action: constants.ActionRead, Conditions: ownTenant},
				{Resource: constants.ResourceContent, Action: Wildcard, Conditions: sameTenant},
				{Resource: constants.ResourceBilling, Action: constants.ActionRead, Conditions: ownTenant},
			},
		},
		{
			Name:     constants.RoleInstructor,
			Level:    50,
			Inherits: []string{constants.RoleStudent},
			Permissions: []Permission{
				{Resource: constants.ResourceContent, Action: constants.ActionRead, Conditions: sameTenant},
				{Resource: constants.ResourceContent, Action: constants.ActionCreate, Conditions: sameTenant},
				{Resource: constants.ResourceContent, Action: constants.ActionUpdate, Conditions: sameTenant},
				{Resource: constants.ResourceProgress, Action: constants.ActionRead, Conditions: sameTenant},
			},
		},
		{
			Name:  constants.RoleStudent,
			Level: 30,
			Permissions: []Permission{
				{Resource: constants.ResourceDashboard, Action: constants.ActionRead},
				{Resource: constants.ResourceExams, Action: constants.ActionRead},
				{Resource: constants.ResourceExams, Action: constants.ActionCreate},
				{Resource: constants.ResourceWellness, Action: Wildcard},
				{Resource: constants.ResourcePomodoro, Action: Wildcard},
				{Resource: constants.ResourceInsights, Action: constants.ActionRead},
				{Resource: constants.ResourceProfile, Action: constants.ActionRead},
				{Resource: constants.ResourceProfile, Action: constants.ActionUpdate},
				{Resource: constants.ResourceBilling, Action: constants.ActionRead},
				{Resource: constants.ResourceCoupons, Action: constants.ActionRedeem},
			},
		},
		{
			Name:  constants.RoleTrialUser,
			Level: 10,
			Permissions: []Permission{
				{Resource: constants.ResourceDashboard, Action: constants.ActionRead},
				{Resource: constants.ResourcePomodoro, Action: Wildcard},
				{Resource: constants.ResourceProfile, Action: constants.ActionRead},
				{Resource: constants.ResourceProfile, Action: constants.ActionUpdate},
				{Resource: constants.ResourceExams, Action: constants.ActionRead, Conditions: limited},
				{Resource: constants.ResourceInsights, Action: constants.ActionRead, Conditions: limited},
				{Resource: constants.ResourceBilling, Action: constants.ActionRead},
				{Resource: constants.ResourceCoupons, Action: constants.ActionRedeem},
			},
		},
	}
}

// DefaultTable 使用预置角色构建角色表
func DefaultTable(opts ...Option) *Table {
	table, err := NewTable(BuiltinRoles(), opts...)
	if err != nil {
		panic(err)
	}
	return table
}
