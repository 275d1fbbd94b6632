package public

import (
	"strconv"
	"strings"

	"github.com/prepwise-next/internal/http/response"
	"github.com/prepwise-next/internal/repository"
	"github.com/prepwise-next/internal/service"

	"github.com/gin-gonic/gin"
)

// MemberRoleRequest 机构内变更成员角色请求
type MemberRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// ListTenantMembers 列出本机构成员，权限中间件已校验租户范围
func (h *Handler) ListTenantMembers(c *gin.Context) {
	_, subject, ok := h.loadSubject(c)
	if !ok {
		return
	}
	tenantID, err := strconv.ParseUint(subject.TenantID, 10, 64)
	if err != nil || tenantID == 0 {
		respondError(c, response.CodeForbidden, "error.tenant_mismatch", nil)
		return
	}
	scoped := uint(tenantID)
	page, pageSize := parsePageQuery(c)
	users, total, err := h.UserService.List(repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Role:     strings.TrimSpace(c.Query("role")),
		TenantID: &scoped,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.user_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, users, response.NewPagination(page, pageSize, total))
}

// ChangeMemberRole 变更成员角色，操作者须能管理成员当前角色与目标角色
func (h *Handler) ChangeMemberRole(c *gin.Context) {
	actorID, ok := getUserID(c)
	if !ok {
		return
	}
	targetID, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || targetID == 0 {
		respondError(c, response.CodeBadRequest, "error.user_id_invalid", nil)
		return
	}
	var req MemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	allowTrial := false
	if h.Config != nil {
		allowTrial = h.Config.RBAC.AllowTrial
	}

	user, err := h.UserService.ChangeRole(service.ChangeRoleInput{
		ActorID:      actorID,
		TargetUserID: uint(targetID),
		Role:         req.Role,
		AllowTrial:   allowTrial,
	})
	if err != nil {
		respondWithMappedError(c, err, roleChangeErrorRules, response.CodeInternal, "error.user_update_failed")
		return
	}
	response.Success(c, user)
}
