package service

import (
	"strings"
	"testing"
	"time"

	"github.com/prepwise-next/internal/config"
	"github.com/prepwise-next/internal/constants"
	"github.com/prepwise-next/internal/models"
)

func testCouponPolicy() CouponPolicy {
	return CouponPolicyFromConfig(config.Defaults().Coupon, []string{
		constants.RoleStudent,
		constants.RoleTrialUser,
		constants.RoleInstructor,
	})
}

func validCouponData(now time.Time) CouponDataInput {
	from := now.Add(-time.Hour)
	until := now.Add(30 * 24 * time.Hour)
	return CouponDataInput{
		Code:         "SPRING24",
		DiscountType: constants.CouponTypePercentage,
		Value:        models.NewMoneyFromFloat(20),
		ValidFrom:    &from,
		ValidUntil:   &until,
	}
}

func hasViolation(violations []string, fragment string) bool {
	for _, v := range violations {
		if strings.Contains(v, fragment) {
			return true
		}
	}
	return false
}

func TestValidateCouponDataAcceptsValidInput(t *testing.T) {
	now := time.Now()
	if violations := ValidateCouponData(validCouponData(now), testCouponPolicy(), now); len(violations) != 0 {
		t.Fatalf("expected no violations, got %v", violations)
	}
}

func TestValidateCouponDataReportsEveryViolation(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	earlier := now.Add(-2 * time.Hour)
	usageLimit, perUser := 2, 5
	input := CouponDataInput{
		Code:           "a!",
		DiscountType:   constants.CouponTypePercentage,
		Value:          models.NewMoneyFromFloat(150),
		MinAmount:      models.MoneyPtr(-1),
		ValidFrom:      &past,
		ValidUntil:     &earlier,
		UsageLimit:     &usageLimit,
		UserUsageLimit: &perUser,
		EligibleRoles:  []string{"wizard"},
		EligiblePlans:  []string{"gold"},
	}

	violations := ValidateCouponData(input, testCouponPolicy(), now)
	for _, fragment := range []string{
		"between 4 and 20 characters",
		"may only contain",
		"Percentage value must be between 0 and 100",
		"Minimum purchase amount cannot be negative",
		"Valid from date must be before valid until date",
		"Valid until date must be in the future",
		"cannot exceed the usage limit",
		"Unknown eligible role: wizard",
		"Unknown eligible plan: gold",
	} {
		if !hasViolation(violations, fragment) {
			t.Fatalf("missing violation %q in %v", fragment, violations)
		}
	}
}

func TestValidateCouponDataTypeRules(t *testing.T) {
	now := time.Now()
	policy := testCouponPolicy()
	tests := []struct {
		name     string
		mutate   func(*CouponDataInput)
		fragment string
	}{
		{"unknown_type", func(in *CouponDataInput) { in.DiscountType = "bogus" }, "Discount type must be one of"},
		{"fixed_too_large", func(in *CouponDataInput) {
			in.DiscountType = constants.CouponTypeFixed
			in.Value = models.NewMoneyFromFloat(20000)
		}, "Fixed discount value must be between 1.00 and 10000.00"},
		{"trial_fractional_days", func(in *CouponDataInput) {
			in.DiscountType = constants.CouponTypeTrialExtension
			in.Value = models.NewMoneyFromFloat(1.5)
		}, "whole number of days between 1 and 90"},
		{"trial_too_long", func(in *CouponDataInput) {
			in.DiscountType = constants.CouponTypeTrialExtension
			in.Value = models.NewMoneyFromFloat(120)
		}, "whole number of days"},
		{"reserved_code", func(in *CouponDataInput) { in.Code = "admin" }, "is reserved"},
		{"missing_dates", func(in *CouponDataInput) {
			in.ValidFrom = nil
			in.ValidUntil = nil
		}, "Valid from date is required"},
		{"zero_max_discount", func(in *CouponDataInput) { in.MaxDiscount = models.MoneyPtr(0) }, "Maximum discount must be greater than 0"},
		{"description_too_long", func(in *CouponDataInput) { in.Description = strings.Repeat("x", 501) }, "Description must be at most 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validCouponData(now)
			tt.mutate(&input)
			if violations := ValidateCouponData(input, policy, now); !hasViolation(violations, tt.fragment) {
				t.Fatalf("expected %q, got %v", tt.fragment, violations)
			}
		})
	}
}

func TestValidateCouponDataRoleMatchIgnoresCase(t *testing.T) {
	now := time.Now()
	input := validCouponData(now)
	input.EligibleRoles = []string{" Student "}
	input.EligiblePlans = []string{"PRO"}
	if violations := ValidateCouponData(input, testCouponPolicy(), now); len(violations) != 0 {
		t.Fatalf("expected no violations, got %v", violations)
	}
}
