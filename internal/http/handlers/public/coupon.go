package public

import (
	"strings"

	"github.com/prepwise-next/internal/http/response"
	"github.com/prepwise-next/internal/i18n"
	"github.com/prepwise-next/internal/models"
	"github.com/prepwise-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CouponApplyRequest 校验/核销优惠券请求
type CouponApplyRequest struct {
	Code     string       `json:"code" binding:"required"`
	PlanType string       `json:"plan_type"`
	Amount   models.Money `json:"amount"`
}

// ValidateCoupon 按当前用户校验优惠券并预估折扣，拒绝原因随 data 返回
func (h *Handler) ValidateCoupon(c *gin.Context) {
	var req CouponApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if req.Amount.Decimal.IsNegative() {
		respondError(c, response.CodeBadRequest, "error.coupon_amount_invalid", nil)
		return
	}
	user, _, ok := h.loadSubject(c)
	if !ok {
		return
	}
	planType := strings.TrimSpace(req.PlanType)
	if planType == "" {
		planType = user.PlanType
	}

	result, err := h.CouponService.ValidateCoupon(service.ValidateCouponInput{
		Code:     req.Code,
		UserID:   user.ID,
		UserRole: user.Role,
		PlanType: planType,
		Amount:   req.Amount,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.coupon_validate_failed", err)
		return
	}
	if !result.Valid {
		respondCouponRejected(c, result)
		return
	}
	response.Success(c, result)
}

// RedeemCoupon 核销优惠券
func (h *Handler) RedeemCoupon(c *gin.Context) {
	var req CouponApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	result, err := h.CouponService.RedeemCoupon(service.RedeemCouponInput{
		Code:     req.Code,
		UserID:   userID,
		PlanType: req.PlanType,
		Amount:   req.Amount,
		Locale:   i18n.ResolveLocale(c),
		Metadata: models.JSON{
			"ip":         c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		},
	})
	if err != nil {
		respondWithMappedError(c, err, couponRedeemErrorRules, response.CodeInternal, "error.coupon_redeem_failed")
		return
	}
	if !result.Redeemed {
		respondCouponRejected(c, result.Validation)
		return
	}
	response.Success(c, result)
}

// ListMyCouponUsages 获取当前用户的核销记录
func (h *Handler) ListMyCouponUsages(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := parsePageQuery(c)
	usages, total, err := h.CouponService.ListUserUsages(userID, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.coupon_usage_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, usages, response.NewPagination(page, pageSize, total))
}

// respondCouponRejected 业务拒绝返回 422，data 携带 reason 与英文说明
func respondCouponRejected(c *gin.Context, result *service.CouponValidationResult) {
	msg := i18n.T(i18n.ResolveLocale(c), "error.coupon_rejected")
	data := gin.H{"valid": false}
	if result != nil {
		data["reason"] = result.Reason
		data["error"] = result.Error
	}
	response.ErrorWithData(c, response.CodeUnprocessable, msg, data)
}
