package service

import (
	"strings"

	"github.com/prepwise-next/internal/constants"
	"github.com/prepwise-next/internal/models"

	"github.com/shopspring/decimal"
)

// DiscountResult 折扣计算结果
type DiscountResult struct {
	DiscountAmount models.Money `json:"discount_amount"`
	FinalAmount    models.Money `json:"final_amount"`
}

var hundred = decimal.NewFromInt(100)

// CalculateDiscount 按优惠券类型计算折扣，upgrade_promo 不受最大优惠限制
func CalculateDiscount(coupon *models.Coupon, amount models.Money) DiscountResult {
	return calculateDiscount(coupon, amount, false)
}

func calculateDiscount(coupon *models.Coupon, amount models.Money, capUpgradePromo bool) DiscountResult {
	base := amount.Decimal
	if base.IsNegative() {
		base = decimal.Zero
	}
	if coupon == nil {
		return DiscountResult{
			DiscountAmount: models.NewMoneyFromDecimal(decimal.Zero),
			FinalAmount:    models.NewMoneyFromDecimal(base),
		}
	}

	discount := decimal.Zero
	switch strings.ToLower(strings.TrimSpace(coupon.DiscountType)) {
	case constants.CouponTypePercentage:
		discount = percentOf(base, coupon.Value.Decimal)
		discount = applyMaxDiscount(discount, coupon.MaxDiscount)
	case constants.CouponTypeFixed:
		discount = decimal.Min(coupon.Value.Decimal, base)
	case constants.CouponTypeTrialExtension:
		discount = decimal.Zero
	case constants.CouponTypeUpgradePromo:
		discount = percentOf(base, coupon.Value.Decimal)
		if capUpgradePromo {
			discount = applyMaxDiscount(discount, coupon.MaxDiscount)
		}
	}

	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(base) {
		discount = base
	}
	discount = discount.Round(2)
	final := base.Sub(discount)
	if final.IsNegative() {
		final = decimal.Zero
	}
	return DiscountResult{
		DiscountAmount: models.NewMoneyFromDecimal(discount),
		FinalAmount:    models.NewMoneyFromDecimal(final),
	}
}

func percentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(hundred)
}

func applyMaxDiscount(discount decimal.Decimal, maxDiscount *models.Money) decimal.Decimal {
	if maxDiscount == nil {
		return discount
	}
	return decimal.Min(discount, maxDiscount.Decimal)
}
