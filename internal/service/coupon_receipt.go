package service

import (
	"strings"

	"github.com/prepwise-next/internal/constants"
	"github.com/prepwise-next/internal/repository"
)

// CouponReceiptService 核销回执邮件
type CouponReceiptService struct {
	usageRepo    repository.CouponUsageRepository
	couponRepo   repository.CouponRepository
	userRepo     repository.UserRepository
	emailService *EmailService
}

// NewCouponReceiptService 创建核销回执服务
func NewCouponReceiptService(usageRepo repository.CouponUsageRepository, couponRepo repository.CouponRepository, userRepo repository.UserRepository, emailService *EmailService) *CouponReceiptService {
	return &CouponReceiptService{
		usageRepo:    usageRepo,
		couponRepo:   couponRepo,
		userRepo:     userRepo,
		emailService: emailService,
	}
}

// Send 发送核销回执，记录不存在时静默跳过
func (s *CouponReceiptService) Send(usageID uint, locale string) error {
	if !s.emailService.Enabled() {
		return nil
	}
	usage, err := s.usageRepo.GetByID(usageID)
	if err != nil {
		return err
	}
	if usage == nil {
		return nil
	}

	toEmail := strings.TrimSpace(usage.UserEmail)
	user, err := s.userRepo.GetByID(usage.UserID)
	if err != nil {
		return err
	}
	if user != nil {
		if toEmail == "" {
			toEmail = user.Email
		}
		if strings.TrimSpace(locale) == "" {
			locale = user.Locale
		}
	}
	if toEmail == "" {
		return nil
	}

	input := CouponReceiptEmailInput{
		RedemptionNo:   usage.RedemptionNo,
		CouponCode:     usage.CouponCode,
		OriginalAmount: usage.OriginalAmount,
		DiscountAmount: usage.DiscountAmount,
		FinalAmount:    usage.FinalAmount,
		PlanType:       usage.PlanType,
	}
	coupon, err := s.couponRepo.GetByID(usage.CouponID)
	if err != nil {
		return err
	}
	if coupon != nil {
		input.DiscountType = coupon.DiscountType
		if coupon.DiscountType == constants.CouponTypeTrialExtension {
			input.TrialDays = int(coupon.Value.Decimal.IntPart())
		}
	}
	return s.emailService.SendCouponReceiptEmail(toEmail, input, locale)
}
