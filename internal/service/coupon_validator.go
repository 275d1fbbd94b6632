package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/prepwise-next/internal/config"
	"github.com/prepwise-next/internal/constants"
	"github.com/prepwise-next/internal/models"

	"github.com/shopspring/decimal"
)

var couponCodePattern = regexp.MustCompile(`^[A-Z0-9_-]+$`)

var couponTypes = []string{
	constants.CouponTypePercentage,
	constants.CouponTypeFixed,
	constants.CouponTypeTrialExtension,
	constants.CouponTypeUpgradePromo,
}

var couponPlans = []string{
	constants.PlanFree,
	constants.PlanBasic,
	constants.PlanPro,
	constants.PlanEnterprise,
}

// CouponDataInput 优惠券录入数据
type CouponDataInput struct {
	Code           string        `json:"code"`
	DiscountType   string        `json:"discount_type"`
	Value          models.Money  `json:"value"`
	MinAmount      *models.Money `json:"min_amount"`
	MaxDiscount    *models.Money `json:"max_discount"`
	UsageLimit     *int          `json:"usage_limit"`
	UserUsageLimit *int          `json:"user_usage_limit"`
	ValidFrom      *time.Time    `json:"valid_from"`
	ValidUntil     *time.Time    `json:"valid_until"`
	EligibleRoles  []string      `json:"eligible_roles"`
	EligiblePlans  []string      `json:"eligible_plans"`
	Description    string        `json:"description"`
}

// CouponPolicy 优惠券录入规则
type CouponPolicy struct {
	CodeMinLength        int
	CodeMaxLength        int
	ReservedCodes        []string
	DescriptionMaxLength int
	FixedMinValue        decimal.Decimal
	FixedMaxValue        decimal.Decimal
	TrialMaxDays         int
	UsageLimitMax        int
	// KnownRoles 为空时不校验适用角色
	KnownRoles []string
}

// CouponPolicyFromConfig 从配置构建录入规则
func CouponPolicyFromConfig(cfg config.CouponConfig, knownRoles []string) CouponPolicy {
	return CouponPolicy{
		CodeMinLength:        cfg.CodeMinLength,
		CodeMaxLength:        cfg.CodeMaxLength,
		ReservedCodes:        cfg.ReservedCodes,
		DescriptionMaxLength: cfg.DescriptionMaxLength,
		FixedMinValue:        decimal.NewFromFloat(cfg.FixedMinValue),
		FixedMaxValue:        decimal.NewFromFloat(cfg.FixedMaxValue),
		TrialMaxDays:         cfg.TrialMaxDays,
		UsageLimitMax:        cfg.UsageLimitMax,
		KnownRoles:           knownRoles,
	}
}

// ValidateCouponData 校验录入数据，返回全部违规项
func ValidateCouponData(input CouponDataInput, policy CouponPolicy, now time.Time) []string {
	violations := make([]string, 0)
	add := func(format string, args ...interface{}) {
		violations = append(violations, fmt.Sprintf(format, args...))
	}

	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		add("Coupon code is required")
	} else {
		length := utf8.RuneCountInString(code)
		if (policy.CodeMinLength > 0 && length < policy.CodeMinLength) || (policy.CodeMaxLength > 0 && length > policy.CodeMaxLength) {
			add("Coupon code must be between %d and %d characters", policy.CodeMinLength, policy.CodeMaxLength)
		}
		if !couponCodePattern.MatchString(code) {
			add("Coupon code may only contain letters, numbers, hyphens and underscores")
		}
		for _, reserved := range policy.ReservedCodes {
			if strings.EqualFold(strings.TrimSpace(reserved), code) {
				add("Coupon code %s is reserved", code)
				break
			}
		}
	}

	if policy.DescriptionMaxLength > 0 && utf8.RuneCountInString(input.Description) > policy.DescriptionMaxLength {
		add("Description must be at most %d characters", policy.DescriptionMaxLength)
	}

	value := input.Value.Decimal
	switch discountType := strings.ToLower(strings.TrimSpace(input.DiscountType)); discountType {
	case constants.CouponTypePercentage, constants.CouponTypeUpgradePromo:
		if !value.IsPositive() || value.GreaterThan(hundred) {
			add("Percentage value must be between 0 and 100")
		}
	case constants.CouponTypeFixed:
		if value.LessThan(policy.FixedMinValue) || value.GreaterThan(policy.FixedMaxValue) {
			add("Fixed discount value must be between %s and %s", policy.FixedMinValue.StringFixed(2), policy.FixedMaxValue.StringFixed(2))
		}
	case constants.CouponTypeTrialExtension:
		if !value.IsInteger() || value.LessThan(decimal.NewFromInt(1)) || value.GreaterThan(decimal.NewFromInt(int64(policy.TrialMaxDays))) {
			add("Trial extension must be a whole number of days between 1 and %d", policy.TrialMaxDays)
		}
	default:
		add("Discount type must be one of %s", strings.Join(couponTypes, ", "))
	}

	if input.MinAmount != nil && input.MinAmount.Decimal.IsNegative() {
		add("Minimum purchase amount cannot be negative")
	}
	if input.MaxDiscount != nil && !input.MaxDiscount.Decimal.IsPositive() {
		add("Maximum discount must be greater than 0")
	}

	if input.ValidFrom == nil {
		add("Valid from date is required")
	}
	if input.ValidUntil == nil {
		add("Valid until date is required")
	}
	if input.ValidFrom != nil && input.ValidUntil != nil && !input.ValidFrom.Before(*input.ValidUntil) {
		add("Valid from date must be before valid until date")
	}
	if input.ValidUntil != nil && !input.ValidUntil.After(now) {
		add("Valid until date must be in the future")
	}

	if input.UsageLimit != nil && (*input.UsageLimit < 1 || (policy.UsageLimitMax > 0 && *input.UsageLimit > policy.UsageLimitMax)) {
		add("Usage limit must be between 1 and %d", policy.UsageLimitMax)
	}
	if input.UserUsageLimit != nil {
		if *input.UserUsageLimit < 1 {
			add("Per-user usage limit must be at least 1")
		} else if input.UsageLimit != nil && *input.UserUsageLimit > *input.UsageLimit {
			add("Per-user usage limit cannot exceed the usage limit")
		}
	}

	if len(policy.KnownRoles) > 0 {
		for _, role := range input.EligibleRoles {
			if !containsFold(policy.KnownRoles, role) {
				add("Unknown eligible role: %s", strings.TrimSpace(role))
			}
		}
	}
	for _, plan := range input.EligiblePlans {
		if !containsFold(couponPlans, plan) {
			add("Unknown eligible plan: %s", strings.TrimSpace(plan))
		}
	}

	return violations
}

func containsFold(values []string, target string) bool {
	target = strings.TrimSpace(target)
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return true
		}
	}
	return false
}
