package public

import (
	"strings"

	"github.com/prepwise-next/internal/constants"
	"github.com/prepwise-next/internal/http/response"
	"github.com/prepwise-next/internal/models"
	"github.com/prepwise-next/internal/rbac"

	"github.com/gin-gonic/gin"
)

// PermissionCheckRequest 单项权限判定请求
type PermissionCheckRequest struct {
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
	TenantID string `json:"tenant_id"`
}

// loadSubject 读取当前用户及其权限主体，失败时已写入响应
func (h *Handler) loadSubject(c *gin.Context) (*models.User, *rbac.Subject, bool) {
	userID, ok := getUserID(c)
	if !ok {
		return nil, nil, false
	}
	user, subject, err := h.UserService.Subject(userID)
	if err != nil {
		respondWithMappedError(c, err, userAccountErrorRules, response.CodeInternal, "error.user_fetch_failed")
		return nil, nil, false
	}
	return user, subject, true
}

// GetMyPermissions 获取当前角色的层级、继承链与有效权限
func (h *Handler) GetMyPermissions(c *gin.Context) {
	user, subject, ok := h.loadSubject(c)
	if !ok {
		return
	}
	table := h.UserService.Table()
	level, _ := table.Level(user.Role)
	response.Success(c, gin.H{
		"role":         subject.Role,
		"level":        level,
		"tenant_id":    subject.TenantID,
		"trial_active": subject.TrialActive,
		"inherits":     table.InheritanceChain(user.Role),
		"permissions":  table.EffectivePermissions(user.Role),
	})
}

// CheckPermission 判定当前用户能否对资源执行动作，未指定租户时按本租户判定
func (h *Handler) CheckPermission(c *gin.Context) {
	var req PermissionCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	_, subject, ok := h.loadSubject(c)
	if !ok {
		return
	}
	tenantID := strings.TrimSpace(req.TenantID)
	if tenantID == "" {
		tenantID = subject.TenantID
	}
	allowTrial := false
	if h.Config != nil {
		allowTrial = h.Config.RBAC.AllowTrial
	}
	allowed := h.UserService.Table().HasPermission(subject, strings.TrimSpace(req.Resource), strings.TrimSpace(req.Action), rbac.AccessContext{
		constants.AccessContextTenantID:   tenantID,
		constants.AccessContextAllowTrial: allowTrial,
	})
	response.Success(c, gin.H{
		"resource": req.Resource,
		"action":   req.Action,
		"allowed":  allowed,
	})
}

// GetMyNavigation 获取可访问的页面路由与默认落地页
func (h *Handler) GetMyNavigation(c *gin.Context) {
	_, subject, ok := h.loadSubject(c)
	if !ok {
		return
	}
	table := h.UserService.Table()
	routes := table.AccessibleRoutes(subject)
	if routes == nil {
		routes = []string{}
	}
	response.Success(c, gin.H{
		"routes":        routes,
		"default_route": table.DefaultRoute(subject),
	})
}

// CheckRouteAccess 判定当前用户能否访问页面路由
func (h *Handler) CheckRouteAccess(c *gin.Context) {
	route := strings.TrimSpace(c.Query("path"))
	if route == "" {
		respondError(c, response.CodeBadRequest, "error.route_path_required", nil)
		return
	}
	_, subject, ok := h.loadSubject(c)
	if !ok {
		return
	}
	table := h.UserService.Table()
	allowed := table.CanAccessRoute(subject, route)
	data := gin.H{
		"path":    route,
		"allowed": allowed,
		"mapped":  table.RouteMapped(route),
	}
	if !allowed {
		data["redirect"] = table.DefaultRoute(subject)
	}
	response.Success(c, data)
}
