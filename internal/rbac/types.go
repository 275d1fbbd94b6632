package rbac

import "errors"

var (
	// ErrEmptyRoleName 角色名为空
	ErrEmptyRoleName = errors.New("rbac: role name is required")
	// ErrDuplicateRole 角色重复定义
	ErrDuplicateRole = errors.New("rbac: duplicate role")
	// ErrUnknownRole 继承了不存在的角色
	ErrUnknownRole = errors.New("rbac: unknown role")
	// ErrRoleCycle 角色继承存在环
	ErrRoleCycle = errors.New("rbac: role inheritance cycle")
)

// Wildcard 匹配任意资源或动作
const Wildcard = "*"

// Permission 单条权限，Resource/Action 可为通配符
type Permission struct {
	Resource   string                 `json:"resource"`
	Action     string                 `json:"action"`
	Conditions map[string]interface{} `json:"conditions,omitempty"`
}

// Role 角色定义，Level 用于层级比较
type Role struct {
	Name        string       `json:"name"`
	Level       int          `json:"level"`
	Permissions []Permission `json:"permissions"`
	Inherits    []string     `json:"inherits,omitempty"`
}

// Subject 权限判定主体
type Subject struct {
	ID          string
	Role        string
	TenantID    string
	IsActive    bool
	TrialActive bool
}

// AccessContext 请求上下文，常用键为 tenantId 与 allowTrial
type AccessContext map[string]interface{}

// RouteRule 前端路由到权限的映射
type RouteRule struct {
	Resource string `json:"resource,omitempty"`
	Action   string `json:"action,omitempty"`
	Public   bool   `json:"public,omitempty"`
}
