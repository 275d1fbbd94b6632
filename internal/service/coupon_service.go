package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prepwise-next/internal/config"
	"github.com/prepwise-next/internal/constants"
	"github.com/prepwise-next/internal/logger"
	"github.com/prepwise-next/internal/metrics"
	"github.com/prepwise-next/internal/models"
	"github.com/prepwise-next/internal/queue"
	"github.com/prepwise-next/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 优惠券拒绝原因
const (
	CouponReasonNotFound       = "coupon_not_found"
	CouponReasonInactive       = "coupon_inactive"
	CouponReasonNotStarted     = "coupon_not_started"
	CouponReasonExpired        = "coupon_expired"
	CouponReasonUsageLimit     = "coupon_usage_limit"
	CouponReasonPerUserLimit   = "coupon_per_user_limit"
	CouponReasonRoleIneligible = "coupon_role_ineligible"
	CouponReasonPlanIneligible = "coupon_plan_ineligible"
	CouponReasonMinAmount      = "coupon_min_amount"
)

const couponZeroDiscountWarning = "Coupon does not provide a monetary discount"

var couponReasonMessages = map[string]string{
	CouponReasonNotFound:       "Coupon not found",
	CouponReasonInactive:       "Coupon is not active",
	CouponReasonNotStarted:     "Coupon is not yet valid",
	CouponReasonExpired:        "Coupon has expired",
	CouponReasonUsageLimit:     "Coupon usage limit reached",
	CouponReasonPerUserLimit:   "You have reached the usage limit for this coupon",
	CouponReasonRoleIneligible: "Coupon is not available for your account type",
	CouponReasonPlanIneligible: "Coupon is not valid for the selected plan",
}

// ValidateCouponInput 优惠券校验输入
type ValidateCouponInput struct {
	Code     string
	UserID   uint
	UserRole string
	PlanType string
	Amount   models.Money
}

// CouponValidationResult 优惠券校验结果，业务拒绝不作为 error 返回
type CouponValidationResult struct {
	Valid          bool           `json:"valid"`
	Coupon         *models.Coupon `json:"coupon,omitempty"`
	DiscountAmount models.Money   `json:"discount_amount"`
	FinalAmount    models.Money   `json:"final_amount"`
	Error          string         `json:"error,omitempty"`
	Reason         string         `json:"reason,omitempty"`
	Warnings       []string       `json:"warnings,omitempty"`
}

// RedeemCouponInput 优惠券核销输入
type RedeemCouponInput struct {
	Code     string
	UserID   uint
	PlanType string
	Amount   models.Money
	Locale   string
	Metadata models.JSON
}

// CouponRedemptionResult 核销结果
type CouponRedemptionResult struct {
	Redeemed    bool                    `json:"redeemed"`
	Validation  *CouponValidationResult `json:"validation"`
	Usage       *models.CouponUsage     `json:"usage,omitempty"`
	TrialEndsAt *time.Time              `json:"trial_ends_at,omitempty"`
}

// CouponService 优惠券服务
type CouponService struct {
	cfg         *config.CouponConfig
	couponRepo  repository.CouponRepository
	usageRepo   repository.CouponUsageRepository
	userRepo    repository.UserRepository
	queueClient *queue.Client
	now         func() time.Time
}

// NewCouponService 创建优惠券服务
func NewCouponService(cfg *config.CouponConfig, couponRepo repository.CouponRepository, usageRepo repository.CouponUsageRepository, userRepo repository.UserRepository, queueClient *queue.Client) *CouponService {
	return &CouponService{
		cfg:         cfg,
		couponRepo:  couponRepo,
		usageRepo:   usageRepo,
		userRepo:    userRepo,
		queueClient: queueClient,
		now:         time.Now,
	}
}

// CalculateDiscount 按配置计算折扣
func (s *CouponService) CalculateDiscount(coupon *models.Coupon, amount models.Money) DiscountResult {
	return calculateDiscount(coupon, amount, s.capUpgradePromo())
}

// ValidateCoupon 按固定顺序校验优惠券，首个失败项即返回
func (s *CouponService) ValidateCoupon(input ValidateCouponInput) (*CouponValidationResult, error) {
	result, err := s.validate(input, s.now())
	if err != nil {
		metrics.RecordCouponValidation(metrics.ResultError)
		return nil, err
	}
	if result.Valid {
		metrics.RecordCouponValidation(metrics.ResultValid)
	} else {
		metrics.RecordCouponValidation(metrics.ResultRejected)
	}
	return result, nil
}

func (s *CouponService) validate(input ValidateCouponInput, now time.Time) (*CouponValidationResult, error) {
	code := repository.NormalizeCouponCode(input.Code)
	if code == "" {
		return rejectCoupon(nil, CouponReasonNotFound), nil
	}
	coupon, err := s.couponRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return rejectCoupon(nil, CouponReasonNotFound), nil
	}
	if !coupon.IsActive {
		return rejectCoupon(coupon, CouponReasonInactive), nil
	}
	if now.Before(coupon.ValidFrom) {
		return rejectCoupon(coupon, CouponReasonNotStarted), nil
	}
	if now.After(coupon.ValidUntil) {
		return rejectCoupon(coupon, CouponReasonExpired), nil
	}
	if coupon.UsageLimit != nil && coupon.UsedCount >= *coupon.UsageLimit {
		return rejectCoupon(coupon, CouponReasonUsageLimit), nil
	}
	if coupon.UserUsageLimit != nil {
		count, err := s.usageRepo.CountByUser(coupon.ID, input.UserID)
		if err != nil {
			return nil, err
		}
		if count >= int64(*coupon.UserUsageLimit) {
			return rejectCoupon(coupon, CouponReasonPerUserLimit), nil
		}
	}
	if len(coupon.EligibleRoles) > 0 && !coupon.EligibleRoles.ContainsFold(input.UserRole) {
		return rejectCoupon(coupon, CouponReasonRoleIneligible), nil
	}
	if len(coupon.EligiblePlans) > 0 && !coupon.EligiblePlans.ContainsFold(input.PlanType) {
		return rejectCoupon(coupon, CouponReasonPlanIneligible), nil
	}
	if coupon.MinAmount != nil && input.Amount.Decimal.LessThan(coupon.MinAmount.Decimal) {
		result := rejectCoupon(coupon, CouponReasonMinAmount)
		result.Error = fmt.Sprintf("Minimum purchase amount of %s is required", coupon.MinAmount.String())
		return result, nil
	}

	discount := s.CalculateDiscount(coupon, input.Amount)
	result := &CouponValidationResult{
		Valid:          true,
		Coupon:         coupon,
		DiscountAmount: discount.DiscountAmount,
		FinalAmount:    discount.FinalAmount,
	}
	if discount.DiscountAmount.Decimal.IsZero() {
		result.Warnings = append(result.Warnings, couponZeroDiscountWarning)
	}
	return result, nil
}

// RedeemCoupon 复核后原子记录核销
func (s *CouponService) RedeemCoupon(input RedeemCouponInput) (*CouponRedemptionResult, error) {
	if input.Amount.Decimal.IsNegative() {
		return nil, ErrCouponAmountInvalid
	}
	user, err := s.userRepo.GetByID(input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Status == constants.UserStatusDisabled {
		return nil, ErrUserDisabled
	}
	planType := strings.TrimSpace(input.PlanType)
	if planType == "" {
		planType = user.PlanType
	}

	now := s.now()
	validation, err := s.validate(ValidateCouponInput{
		Code:     input.Code,
		UserID:   user.ID,
		UserRole: user.Role,
		PlanType: planType,
		Amount:   input.Amount,
	}, now)
	if err != nil {
		metrics.RecordCouponValidation(metrics.ResultError)
		return nil, err
	}
	if !validation.Valid {
		metrics.RecordCouponValidation(metrics.ResultRejected)
		return &CouponRedemptionResult{Validation: validation}, nil
	}
	metrics.RecordCouponValidation(metrics.ResultValid)

	coupon := validation.Coupon
	usage := &models.CouponUsage{
		RedemptionNo:   uuid.NewString(),
		CouponID:       coupon.ID,
		CouponCode:     coupon.Code,
		UserID:         user.ID,
		UserEmail:      user.Email,
		DiscountAmount: validation.DiscountAmount,
		OriginalAmount: models.NewMoneyFromDecimal(input.Amount.Decimal),
		FinalAmount:    validation.FinalAmount,
		PlanType:       planType,
		Metadata:       input.Metadata,
		CreatedAt:      now,
	}
	var trialEndsAt *time.Time
	var apply repository.RedeemHook
	if strings.EqualFold(coupon.DiscountType, constants.CouponTypeTrialExtension) {
		apply = func(tx *gorm.DB) error {
			until, err := s.extendTrial(s.userRepo.WithTx(tx), user.ID, coupon, now)
			if err != nil {
				return err
			}
			trialEndsAt = until
			return nil
		}
	}
	if err := s.couponRepo.Redeem(usage, apply); err != nil {
		reason := ""
		switch {
		case errors.Is(err, repository.ErrCouponUsageExhausted):
			reason = CouponReasonUsageLimit
		case errors.Is(err, repository.ErrCouponUserLimitReached):
			reason = CouponReasonPerUserLimit
		case errors.Is(err, repository.ErrCouponGone):
			reason = CouponReasonNotFound
		default:
			logger.Errorw("coupon_redeem_failed", "code", coupon.Code, "user_id", user.ID, "error", err)
			return nil, err
		}
		logger.Infow("coupon_redeem_race_rejected", "code", coupon.Code, "user_id", user.ID, "reason", reason)
		return &CouponRedemptionResult{Validation: rejectCoupon(coupon, reason)}, nil
	}
	metrics.RecordCouponRedemption()
	coupon.UsedCount++

	result := &CouponRedemptionResult{
		Redeemed:    true,
		Validation:  validation,
		Usage:       usage,
		TrialEndsAt: trialEndsAt,
	}

	logger.Infow("coupon_redeemed",
		"code", coupon.Code,
		"user_id", user.ID,
		"redemption_no", usage.RedemptionNo,
		"discount", usage.DiscountAmount.String(),
	)
	if err := s.queueClient.EnqueueCouponRedemptionReceipt(queue.CouponRedemptionReceiptPayload{
		UsageID: usage.ID,
		Locale:  input.Locale,
	}); err != nil {
		logger.Warnw("coupon_receipt_enqueue_failed", "usage_id", usage.ID, "error", err)
	}
	return result, nil
}

// ListUserUsages 查询用户自己的核销记录
func (s *CouponService) ListUserUsages(userID uint, page, pageSize int) ([]models.CouponUsage, int64, error) {
	return s.usageRepo.List(repository.CouponUsageListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
	})
}

// DeactivateExpired 停用已过有效期的优惠券
func (s *CouponService) DeactivateExpired() (int64, error) {
	count, err := s.couponRepo.DeactivateExpired(s.now())
	if err != nil {
		return 0, err
	}
	metrics.RecordCouponsExpired(count)
	if count > 0 {
		logger.Infow("coupon_expiry_sweep", "deactivated", count)
	}
	return count, nil
}

// extendTrial 以当前试用到期与 now 的较晚者为起点顺延，读写同在核销事务内
func (s *CouponService) extendTrial(users repository.UserRepository, userID uint, coupon *models.Coupon, now time.Time) (*time.Time, error) {
	days := int(coupon.Value.Decimal.IntPart())
	if days <= 0 {
		return nil, nil
	}
	user, err := users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	base := now
	if user.TrialEndsAt != nil && user.TrialEndsAt.After(now) {
		base = *user.TrialEndsAt
	}
	until := base.AddDate(0, 0, days)
	if err := users.ExtendTrial(user.ID, until); err != nil {
		return nil, err
	}
	return &until, nil
}

func (s *CouponService) capUpgradePromo() bool {
	return s != nil && s.cfg != nil && s.cfg.CapUpgradePromo
}

func rejectCoupon(coupon *models.Coupon, reason string) *CouponValidationResult {
	return &CouponValidationResult{
		Valid:  false,
		Coupon: coupon,
		Error:  couponReasonMessages[reason],
		Reason: reason,
	}
}
