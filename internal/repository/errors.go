package repository

import "errors"

var (
	// ErrCouponUsageExhausted 条件自增失败，总使用次数已达上限
	ErrCouponUsageExhausted = errors.New("coupon usage limit exhausted")
	// ErrCouponUserLimitReached 用户使用次数已达上限
	ErrCouponUserLimitReached = errors.New("coupon user usage limit reached")
	// ErrCouponGone 核销时优惠券已不存在
	ErrCouponGone = errors.New("coupon no longer exists")
)
