package admin

import (
	"errors"
	"strings"

	"github.com/prepwise-next/internal/http/response"
	"github.com/prepwise-next/internal/repository"
	"github.com/prepwise-next/internal/service"

	"github.com/gin-gonic/gin"
)

// TenantSaveRequest 创建/更新租户请求
type TenantSaveRequest struct {
	Slug   string `json:"slug" binding:"required"`
	Name   string `json:"name" binding:"required"`
	Status string `json:"status"`
}

func (r TenantSaveRequest) toInput() service.SaveTenantInput {
	return service.SaveTenantInput{Slug: r.Slug, Name: r.Name, Status: r.Status}
}

// ListTenants 获取租户列表
func (h *Handler) ListTenants(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	tenants, total, err := h.TenantService.List(repository.TenantListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.tenant_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, tenants, response.NewPagination(page, pageSize, total))
}

// GetTenant 获取租户详情（含成员数）
func (h *Handler) GetTenant(c *gin.Context) {
	id, ok := parsePathUint(c, "id", "error.bad_request")
	if !ok {
		return
	}
	detail, err := h.TenantService.Get(id)
	if err != nil {
		respondTenantError(c, err, "error.tenant_fetch_failed")
		return
	}
	response.Success(c, detail)
}

// CreateTenant 创建租户
func (h *Handler) CreateTenant(c *gin.Context) {
	var req TenantSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	tenant, err := h.TenantService.Create(req.toInput())
	if err != nil {
		respondTenantError(c, err, "error.tenant_save_failed")
		return
	}
	response.Success(c, tenant)
}

// UpdateTenant 更新租户
func (h *Handler) UpdateTenant(c *gin.Context) {
	id, ok := parsePathUint(c, "id", "error.bad_request")
	if !ok {
		return
	}
	var req TenantSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	tenant, err := h.TenantService.Update(id, req.toInput())
	if err != nil {
		respondTenantError(c, err, "error.tenant_save_failed")
		return
	}
	response.Success(c, tenant)
}

func respondTenantError(c *gin.Context, err error, fallbackKey string) {
	switch {
	case errors.Is(err, service.ErrTenantNotFound):
		respondError(c, response.CodeNotFound, "error.tenant_not_found", nil)
	case errors.Is(err, service.ErrTenantInvalid):
		respondError(c, response.CodeBadRequest, "error.tenant_invalid", nil)
	case errors.Is(err, service.ErrTenantSlugExists):
		respondError(c, response.CodeConflict, "error.tenant_slug_exists", nil)
	default:
		respondError(c, response.CodeInternal, fallbackKey, err)
	}
}
