package admin

import (
	"errors"
	"strings"

	"github.com/prepwise-next/internal/http/response"
	"github.com/prepwise-next/internal/models"
	"github.com/prepwise-next/internal/repository"
	"github.com/prepwise-next/internal/service"

	"github.com/gin-gonic/gin"
)

// UserRoleRequest 设置用户角色请求
type UserRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UserStatusRequest 设置用户状态请求
type UserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListUsers 获取用户列表
func (h *Handler) ListUsers(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	tenantID, err := parseQueryUint(c, "tenant_id")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdFrom, err := parseTimeNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := parseTimeNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	filter := repository.UserListFilter{
		Page:        page,
		PageSize:    pageSize,
		Keyword:     strings.TrimSpace(c.Query("keyword")),
		Status:      strings.TrimSpace(c.Query("status")),
		Role:        strings.TrimSpace(c.Query("role")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	}
	if tenantID > 0 {
		filter.TenantID = &tenantID
	}
	users, total, err := h.UserService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.user_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, users, response.NewPagination(page, pageSize, total))
}

// GetUser 获取用户详情，附带角色层级与有效权限
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := parsePathUint(c, "id", "error.user_id_invalid")
	if !ok {
		return
	}
	user, err := h.UserService.Get(id)
	if err != nil {
		respondUserAdminError(c, err, "error.user_fetch_failed")
		return
	}
	table := h.UserService.Table()
	level, _ := table.Level(user.Role)
	response.Success(c, gin.H{
		"user":        user,
		"level":       level,
		"inherits":    table.InheritanceChain(user.Role),
		"permissions": table.EffectivePermissions(user.Role),
	})
}

// UpdateUserRole 后台直接设置用户角色
func (h *Handler) UpdateUserRole(c *gin.Context) {
	id, ok := parsePathUint(c, "id", "error.user_id_invalid")
	if !ok {
		return
	}
	var req UserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	before, err := h.UserService.Get(id)
	if err != nil {
		respondUserAdminError(c, err, "error.user_update_failed")
		return
	}
	previousRole := before.Role

	user, err := h.UserService.SetRoleByStaff(currentAdminID(c), id, req.Role)
	if err != nil {
		respondUserAdminError(c, err, "error.user_update_failed")
		return
	}

	h.auditAuthz(c, authzChange{
		action: "user_role_update",
		role:   user.Role,
		user:   user,
		detail: models.JSON{"previous_role": previousRole},
	})

	response.Success(c, user)
}

// UpdateUserStatus 启用或禁用用户
func (h *Handler) UpdateUserStatus(c *gin.Context) {
	id, ok := parsePathUint(c, "id", "error.user_id_invalid")
	if !ok {
		return
	}
	var req UserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	user, err := h.UserService.UpdateStatus(id, req.Status)
	if err != nil {
		respondUserAdminError(c, err, "error.user_update_failed")
		return
	}
	h.auditAuthz(c, authzChange{
		action: "user_status_update",
		user:   user,
		detail: models.JSON{"status": user.Status},
	})
	response.Success(c, user)
}

// ListUserCouponUsages 获取指定用户的优惠券使用记录
func (h *Handler) ListUserCouponUsages(c *gin.Context) {
	id, ok := parsePathUint(c, "id", "error.user_id_invalid")
	if !ok {
		return
	}
	page, pageSize := parsePageQuery(c)
	usages, total, err := h.CouponAdminService.ListUsages(repository.CouponUsageListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   id,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.coupon_usage_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, usages, response.NewPagination(page, pageSize, total))
}

func respondUserAdminError(c *gin.Context, err error, fallbackKey string) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		respondError(c, response.CodeNotFound, "error.user_not_found", nil)
	case errors.Is(err, service.ErrRoleInvalid):
		respondError(c, response.CodeBadRequest, "error.role_invalid", nil)
	case errors.Is(err, service.ErrUserStatusInvalid):
		respondError(c, response.CodeBadRequest, "error.user_status_invalid", nil)
	default:
		respondError(c, response.CodeInternal, fallbackKey, err)
	}
}
