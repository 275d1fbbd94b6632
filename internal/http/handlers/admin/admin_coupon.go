package admin

import (
	"errors"
	"strings"

	"github.com/prepwise-next/internal/http/response"
	"github.com/prepwise-next/internal/i18n"
	"github.com/prepwise-next/internal/repository"
	"github.com/prepwise-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CouponSaveRequest 创建/更新优惠券请求
type CouponSaveRequest struct {
	service.CouponDataInput
	IsActive *bool `json:"is_active"`
}

// CouponStatusRequest 启停优惠券请求
type CouponStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// CouponGenerateRequest 生成优惠码请求，未填字段沿用配置默认值
type CouponGenerateRequest struct {
	Count          int     `json:"count"`
	Length         *int    `json:"length"`
	Prefix         *string `json:"prefix"`
	Suffix         *string `json:"suffix"`
	IncludeLetters *bool   `json:"include_letters"`
	IncludeNumbers *bool   `json:"include_numbers"`
	ExcludeSimilar *bool   `json:"exclude_similar"`
}

func (r CouponGenerateRequest) merge(defaults service.CouponCodeOptions) service.CouponCodeOptions {
	options := defaults
	if r.Length != nil {
		options.Length = *r.Length
	}
	if r.Prefix != nil {
		options.Prefix = *r.Prefix
	}
	if r.Suffix != nil {
		options.Suffix = *r.Suffix
	}
	if r.IncludeLetters != nil {
		options.IncludeLetters = *r.IncludeLetters
	}
	if r.IncludeNumbers != nil {
		options.IncludeNumbers = *r.IncludeNumbers
	}
	if r.ExcludeSimilar != nil {
		options.ExcludeSimilar = *r.ExcludeSimilar
	}
	return options
}

// ListCoupons 获取优惠券列表
func (h *Handler) ListCoupons(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	isActive, err := parseQueryBool(c, "is_active")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	coupons, total, err := h.CouponAdminService.List(repository.CouponListFilter{
		Page:         page,
		PageSize:     pageSize,
		Keyword:      strings.TrimSpace(c.Query("keyword")),
		DiscountType: strings.TrimSpace(c.Query("discount_type")),
		IsActive:     isActive,
		EligibleRole: strings.TrimSpace(c.Query("eligible_role")),
		EligiblePlan: strings.TrimSpace(c.Query("eligible_plan")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.coupon_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, coupons, response.NewPagination(page, pageSize, total))
}

// GetCoupon 获取优惠券详情
func (h *Handler) GetCoupon(c *gin.Context) {
	id, ok := parsePathUint(c, "id", "error.bad_request")
	if !ok {
		return
	}
	coupon, err := h.CouponAdminService.Get(id)
	if err != nil {
		respondCouponAdminError(c, err, "error.coupon_fetch_failed")
		return
	}
	response.Success(c, coupon)
}

// CreateCoupon 创建优惠券
func (h *Handler) CreateCoupon(c *gin.Context) {
	var req CouponSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	coupon, err := h.CouponAdminService.Create(service.SaveCouponInput{
		CouponDataInput: req.CouponDataInput,
		IsActive:        req.IsActive,
	}, currentAdminID(c))
	if err != nil {
		respondCouponAdminError(c, err, "error.coupon_create_failed")
		return
	}
	response.Success(c, coupon)
}

// UpdateCoupon 更新优惠券
func (h *Handler) UpdateCoupon(c *gin.Context) {
	id, ok := parsePathUint(c, "id", "error.bad_request")
	if !ok {
		return
	}
	var req CouponSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	coupon, err := h.CouponAdminService.Update(id, service.SaveCouponInput{
		CouponDataInput: req.CouponDataInput,
		IsActive:        req.IsActive,
	})
	if err != nil {
		respondCouponAdminError(c, err, "error.coupon_update_failed")
		return
	}
	response.Success(c, coupon)
}

// UpdateCouponStatus 启用或停用优惠券
func (h *Handler) UpdateCouponStatus(c *gin.Context) {
	id, ok := parsePathUint(c, "id", "error.bad_request")
	if !ok {
		return
	}
	var req CouponStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	coupon, err := h.CouponAdminService.SetActive(id, *req.IsActive)
	if err != nil {
		respondCouponAdminError(c, err, "error.coupon_update_failed")
		return
	}
	response.Success(c, coupon)
}

// DeleteCoupon 删除优惠券
func (h *Handler) DeleteCoupon(c *gin.Context) {
	id, ok := parsePathUint(c, "id", "error.bad_request")
	if !ok {
		return
	}
	if err := h.CouponAdminService.Delete(id); err != nil {
		respondCouponAdminError(c, err, "error.coupon_delete_failed")
		return
	}
	response.Success(c, nil)
}

// GenerateCouponCodes 批量生成未占用的优惠码
func (h *Handler) GenerateCouponCodes(c *gin.Context) {
	var req CouponGenerateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
	}
	options := req.merge(h.CouponAdminService.DefaultCodeOptions())
	codes, err := h.CouponAdminService.GenerateCodes(options, req.Count)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCouponCodeOptions):
			respondError(c, response.CodeBadRequest, "error.coupon_code_options_invalid", nil)
		case errors.Is(err, service.ErrCouponBatchSizeExceed):
			respondError(c, response.CodeBadRequest, "error.coupon_batch_too_large", nil)
		case errors.Is(err, service.ErrCouponCodeExhausted):
			respondError(c, response.CodeConflict, "error.coupon_generate_exhausted", nil)
		default:
			respondError(c, response.CodeInternal, "error.coupon_generate_failed", err)
		}
		return
	}
	response.Success(c, gin.H{
		"codes":   codes,
		"options": options,
	})
}

// ValidateCouponData 预检录入数据，返回全部违规项
func (h *Handler) ValidateCouponData(c *gin.Context) {
	var req service.CouponDataInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	violations := h.CouponAdminService.ValidateData(req)
	if violations == nil {
		violations = []string{}
	}
	response.Success(c, gin.H{
		"valid":      len(violations) == 0,
		"violations": violations,
	})
}

// ListCouponUsages 获取优惠券使用记录
func (h *Handler) ListCouponUsages(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	couponID, err := parseQueryUint(c, "coupon_id")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if raw := strings.TrimSpace(c.Param("id")); raw != "" {
		id, ok := parsePathUint(c, "id", "error.bad_request")
		if !ok {
			return
		}
		couponID = id
	}
	userID, err := parseQueryUint(c, "user_id")
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

	usages, total, err := h.CouponAdminService.ListUsages(repository.CouponUsageListFilter{
		Page:        page,
		PageSize:    pageSize,
		CouponID:    couponID,
		UserID:      userID,
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.coupon_usage_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, usages, response.NewPagination(page, pageSize, total))
}

// GetCouponStats 获取单张优惠券核销统计
func (h *Handler) GetCouponStats(c *gin.Context) {
	id, ok := parsePathUint(c, "id", "error.bad_request")
	if !ok {
		return
	}
	stats, err := h.CouponAdminService.Stats(id)
	if err != nil {
		respondCouponAdminError(c, err, "error.coupon_usage_fetch_failed")
		return
	}
	response.Success(c, stats)
}

// respondCouponAdminError 违规项随响应 data 一并返回
func respondCouponAdminError(c *gin.Context, err error, fallbackKey string) {
	var dataErr *service.CouponDataError
	switch {
	case errors.As(err, &dataErr):
		msg := i18n.T(i18n.ResolveLocale(c), "error.coupon_invalid")
		requestLog(c).Warnw("admin_coupon_data_rejected", "violations", dataErr.Violations)
		response.ErrorWithData(c, response.CodeUnprocessable, msg, gin.H{"violations": dataErr.Violations})
	case errors.Is(err, service.ErrCouponNotFound):
		respondError(c, response.CodeNotFound, "error.coupon_not_found", nil)
	case errors.Is(err, service.ErrCouponCodeExists):
		respondError(c, response.CodeConflict, "error.coupon_code_exists", nil)
	default:
		respondError(c, response.CodeInternal, fallbackKey, err)
	}
}
