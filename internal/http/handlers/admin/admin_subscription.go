package admin

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prepwise-next/internal/http/response"
	"github.com/prepwise-next/internal/repository"
	"github.com/prepwise-next/internal/service"

	"github.com/gin-gonic/gin"
)

// SubscriptionStatusRequest 修改订阅状态请求
type SubscriptionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func parseSubscriptionFilter(c *gin.Context) (repository.EmailSubscriptionListFilter, error) {
	page, pageSize := parsePageQuery(c)
	createdFrom, err := parseTimeNullable(c.Query("created_from"))
	if err != nil {
		return repository.EmailSubscriptionListFilter{}, err
	}
	createdTo, err := parseTimeNullable(c.Query("created_to"))
	if err != nil {
		return repository.EmailSubscriptionListFilter{}, err
	}
	return repository.EmailSubscriptionListFilter{
		Page:        page,
		PageSize:    pageSize,
		Keyword:     strings.TrimSpace(c.Query("keyword")),
		Status:      strings.TrimSpace(c.Query("status")),
		Source:      strings.TrimSpace(c.Query("source")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	}, nil
}

// ListSubscriptions 获取邮件订阅列表
func (h *Handler) ListSubscriptions(c *gin.Context) {
	filter, err := parseSubscriptionFilter(c)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	subs, total, err := h.SubscriptionService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.subscription_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, subs, response.NewPagination(filter.Page, filter.PageSize, total))
}

// GetSubscriptionStats 按状态统计订阅数
func (h *Handler) GetSubscriptionStats(c *gin.Context) {
	counts, err := h.SubscriptionService.CountByStatus()
	if err != nil {
		respondError(c, response.CodeInternal, "error.subscription_fetch_failed", err)
		return
	}
	response.Success(c, counts)
}

// UpdateSubscriptionStatus 修改订阅状态
func (h *Handler) UpdateSubscriptionStatus(c *gin.Context) {
	id, ok := parsePathUint(c, "id", "error.bad_request")
	if !ok {
		return
	}
	var req SubscriptionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	sub, err := h.SubscriptionService.UpdateStatus(id, req.Status)
	if err != nil {
		respondSubscriptionError(c, err)
		return
	}
	response.Success(c, sub)
}

// DeleteSubscription 删除订阅
func (h *Handler) DeleteSubscription(c *gin.Context) {
	id, ok := parsePathUint(c, "id", "error.bad_request")
	if !ok {
		return
	}
	if err := h.SubscriptionService.Delete(id); err != nil {
		respondSubscriptionError(c, err)
		return
	}
	response.Success(c, nil)
}

// ExportSubscriptions 按筛选条件导出 CSV
func (h *Handler) ExportSubscriptions(c *gin.Context) {
	filter, err := parseSubscriptionFilter(c)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	var buf bytes.Buffer
	rows, err := h.SubscriptionService.ExportCSV(&buf, filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.subscription_export_failed", err)
		return
	}
	requestLog(c).Infow("admin_subscription_exported", "rows", rows, "admin_id", currentAdminID(c))
	filename := fmt.Sprintf("subscriptions_%s.csv", time.Now().Format("20060102150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func respondSubscriptionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubscriptionNotFound):
		respondError(c, response.CodeNotFound, "error.subscription_not_found", nil)
	case errors.Is(err, service.ErrSubscriptionInvalid):
		respondError(c, response.CodeBadRequest, "error.subscription_invalid", nil)
	default:
		respondError(c, response.CodeInternal, "error.subscription_save_failed", err)
	}
}
