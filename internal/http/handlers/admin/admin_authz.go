package admin

import (
	"errors"
	"net/url"
	"strings"

	"github.com/prepwise-next/internal/authz"
	"github.com/prepwise-next/internal/http/response"
	"github.com/prepwise-next/internal/logger"
	"github.com/prepwise-next/internal/models"
	"github.com/prepwise-next/internal/rbac"
	"github.com/prepwise-next/internal/service"

	"github.com/gin-gonic/gin"
)

// 后台有两套权限：casbin 管理员角色控制 /admin 接口，rbac 角色表控制学员与租户成员
type authzRolePayload struct {
	Role string `json:"role" binding:"required"`
}

type authzPolicyPayload struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

type authzSetAdminRolesPayload struct {
	Roles []string `json:"roles"`
}

// userRoleView 用户侧角色矩阵的一行
type userRoleView struct {
	Name                 string            `json:"name"`
	Level                int               `json:"level"`
	Inherits             []string          `json:"inherits,omitempty"`
	InheritanceChain     []string          `json:"inheritance_chain"`
	Permissions          []rbac.Permission `json:"permissions"`
	EffectivePermissions []rbac.Permission `json:"effective_permissions"`
	DefaultRoute         string            `json:"default_route"`
}

// GetAuthzMe 当前管理员的 casbin 角色与策略，以及可分配给用户的角色
func (h *Handler) GetAuthzMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	policies, err := h.AuthzService.GetAdminPolicies(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	response.Success(c, gin.H{
		"admin_id":   adminID,
		"is_super":   c.GetBool("admin_is_super"),
		"roles":      roles,
		"policies":   policies,
		"user_roles": h.RBAC.RoleNames(),
	})
}

// ListAuthzRoles 管理员角色列表，附带内置说明与策略
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.DescribeRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	response.Success(c, roles)
}

// ListUserRoleMatrix 用户侧角色表：层级、继承链与展开后的权限
func (h *Handler) ListUserRoleMatrix(c *gin.Context) {
	roles := h.RBAC.Roles()
	items := make([]userRoleView, 0, len(roles))
	for _, role := range roles {
		items = append(items, userRoleView{
			Name:                 role.Name,
			Level:                role.Level,
			Inherits:             role.Inherits,
			InheritanceChain:     h.RBAC.InheritanceChain(role.Name),
			Permissions:          role.Permissions,
			EffectivePermissions: h.RBAC.EffectivePermissions(role.Name),
			DefaultRoute:         h.RBAC.DefaultRoute(&rbac.Subject{Role: role.Name, IsActive: true}),
		})
	}
	response.Success(c, items)
}

// ListAuthzAdmins 管理员列表，附带各自的 casbin 角色
func (h *Handler) ListAuthzAdmins(c *gin.Context) {
	admins, err := h.AdminRepo.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	items := make([]gin.H, 0, len(admins))
	for _, admin := range admins {
		roles, err := h.AuthzService.GetAdminRoles(admin.ID)
		if err != nil {
			respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
			return
		}
		items = append(items, gin.H{
			"id":            admin.ID,
			"username":      admin.Username,
			"display_name":  admin.DisplayName,
			"is_super":      admin.IsSuper,
			"last_login_at": admin.LastLoginAt,
			"created_at":    admin.CreatedAt,
			"roles":         roles,
		})
	}
	response.Success(c, items)
}

// CreateAuthzRole 创建管理员角色；与用户侧角色重名会造成混淆，直接拒绝
func (h *Handler) CreateAuthzRole(c *gin.Context) {
	var req authzRolePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if h.RBAC.HasRole(strings.TrimSpace(req.Role)) {
		respondError(c, response.CodeBadRequest, "error.authz_role_invalid", nil)
		return
	}
	role, err := h.AuthzService.EnsureRole(req.Role)
	if err != nil {
		respondAuthzError(c, err)
		return
	}
	h.auditAuthz(c, authzChange{action: "role_create", role: role})
	response.Success(c, gin.H{"role": role})
}

// DeleteAuthzRole 删除管理员角色
func (h *Handler) DeleteAuthzRole(c *gin.Context) {
	role, ok := roleParam(c)
	if !ok {
		return
	}
	if err := h.AuthzService.DeleteRole(role); err != nil {
		respondAuthzError(c, err)
		return
	}
	h.auditAuthz(c, authzChange{action: "role_delete", role: role})
	response.Success(c, nil)
}

// GetAuthzRolePolicies 获取角色策略
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	role, ok := roleParam(c)
	if !ok {
		return
	}
	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondAuthzError(c, err)
		return
	}
	response.Success(c, policies)
}

// GrantAuthzPolicy 授予角色策略
func (h *Handler) GrantAuthzPolicy(c *gin.Context) {
	h.changePolicy(c, "policy_grant", h.AuthzService.GrantRolePolicy)
}

// RevokeAuthzPolicy 撤销角色策略
func (h *Handler) RevokeAuthzPolicy(c *gin.Context) {
	h.changePolicy(c, "policy_revoke", h.AuthzService.RevokeRolePolicy)
}

func (h *Handler) changePolicy(c *gin.Context, action string, apply func(role, object, method string) error) {
	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := apply(req.Role, req.Object, req.Action); err != nil {
		respondAuthzError(c, err)
		return
	}
	h.auditAuthz(c, authzChange{
		action: action,
		role:   req.Role,
		object: authz.NormalizeObject(req.Object),
		method: strings.ToUpper(strings.TrimSpace(req.Action)),
	})
	response.Success(c, nil)
}

// GetAuthzAdminRoles 获取管理员角色
func (h *Handler) GetAuthzAdminRoles(c *gin.Context) {
	admin, ok := h.loadTargetAdmin(c, "error.authz_fetch_failed")
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(admin.ID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	response.Success(c, roles)
}

// SetAuthzAdminRoles 覆盖管理员角色
func (h *Handler) SetAuthzAdminRoles(c *gin.Context) {
	admin, ok := h.loadTargetAdmin(c, "error.authz_update_failed")
	if !ok {
		return
	}
	var req authzSetAdminRolesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.AuthzService.SetAdminRoles(admin.ID, req.Roles); err != nil {
		respondAuthzError(c, err)
		return
	}
	h.auditAuthz(c, authzChange{
		action: "admin_roles_update",
		target: admin,
		detail: models.JSON{"roles": req.Roles},
	})
	response.Success(c, nil)
}

// loadTargetAdmin 读取路径中的管理员，失败时已写出响应
func (h *Handler) loadTargetAdmin(c *gin.Context, failKey string) (*models.Admin, bool) {
	adminID, ok := parsePathUint(c, "id", "error.admin_id_invalid")
	if !ok {
		return nil, false
	}
	admin, err := h.AdminRepo.GetByID(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, failKey, err)
		return nil, false
	}
	if admin == nil {
		respondError(c, response.CodeNotFound, "error.admin_not_found", nil)
		return nil, false
	}
	return admin, true
}

// authzChange 一次权限变更，写入审计表与日志
type authzChange struct {
	action string
	role   string
	object string
	method string
	target *models.Admin
	user   *models.User
	detail models.JSON
}

func (h *Handler) auditAuthz(c *gin.Context, change authzChange) {
	operatorID := currentAdminID(c)
	detail := models.JSON{}
	for k, v := range change.detail {
		detail[k] = v
	}
	fields := []interface{}{"operator_admin_id", operatorID}
	input := service.AuthzAuditRecordInput{
		OperatorAdminID:  operatorID,
		OperatorUsername: currentUsername(c),
		Action:           change.action,
		Role:             change.role,
		Object:           change.object,
		Method:           change.method,
		RequestID:        currentRequestID(c),
	}
	if change.role != "" {
		detail["role"] = change.role
		fields = append(fields, "role", change.role)
	}
	if change.object != "" {
		detail["object"] = change.object
		detail["method"] = change.method
		fields = append(fields, "object", change.object, "method", change.method)
	}
	if change.target != nil {
		input.TargetAdminID = &change.target.ID
		detail["target_admin_id"] = change.target.ID
		detail["target_username"] = change.target.Username
		fields = append(fields, "target_admin_id", change.target.ID, "target_username", change.target.Username)
	}
	if change.user != nil {
		input.TargetUserID = &change.user.ID
		detail["target_user_id"] = change.user.ID
		fields = append(fields, "target_user_id", change.user.ID)
	}
	input.Detail = detail
	logger.Infow("admin_authz_"+change.action, fields...)

	if h.AuthzAuditService == nil || operatorID == 0 {
		return
	}
	if err := h.AuthzAuditService.Record(input); err != nil {
		logger.Warnw("admin_authz_audit_record_failed", "error", err, "action", change.action, "operator_admin_id", operatorID)
	}
}

// roleParam 解析路径中经过 URL 编码的角色名
func roleParam(c *gin.Context) (string, bool) {
	raw := c.Param("role")
	role, err := url.QueryUnescape(raw)
	if err != nil {
		role = raw
	}
	role = strings.TrimSpace(role)
	if role == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return "", false
	}
	return role, true
}

// respondAuthzError 将 casbin 授权服务错误映射为响应
func respondAuthzError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrRoleImmutable):
		respondError(c, response.CodeConflict, "error.authz_role_immutable", nil)
	case errors.Is(err, authz.ErrRoleRequired), errors.Is(err, authz.ErrRoleReserved):
		respondError(c, response.CodeBadRequest, "error.authz_role_invalid", err)
	case errors.Is(err, authz.ErrActionRequired):
		respondError(c, response.CodeBadRequest, "error.authz_policy_invalid", err)
	case errors.Is(err, authz.ErrAdminRequired):
		respondError(c, response.CodeBadRequest, "error.admin_id_invalid", nil)
	default:
		respondError(c, response.CodeInternal, "error.authz_update_failed", err)
	}
}
