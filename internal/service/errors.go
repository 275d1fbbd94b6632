package service

import "errors"

// 通用错误
var (
	ErrNotFound         = errors.New("not found")
	ErrQueueUnavailable = errors.New("queue unavailable")
)

// 认证相关错误
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("weak password")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrEmailExists        = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserDisabled       = errors.New("user disabled")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrUserStatusInvalid  = errors.New("user status invalid")
)

// 验证码相关错误
var (
	ErrCaptchaRequired      = errors.New("captcha required")
	ErrCaptchaInvalid       = errors.New("captcha invalid")
	ErrCaptchaConfigInvalid = errors.New("captcha config invalid")
)

// 角色与租户相关错误
var (
	ErrRoleInvalid         = errors.New("role invalid")
	ErrRoleChangeForbidden = errors.New("role change forbidden")
	ErrTenantMismatch      = errors.New("tenant mismatch")
	ErrTenantNotFound      = errors.New("tenant not found")
	ErrTenantInvalid       = errors.New("tenant invalid")
	ErrTenantSlugExists    = errors.New("tenant slug exists")
	ErrTenantSuspended     = errors.New("tenant suspended")
)

// 优惠券相关错误
var (
	ErrCouponInvalid         = errors.New("coupon invalid")
	ErrCouponNotFound        = errors.New("coupon not found")
	ErrCouponCodeExists      = errors.New("coupon code exists")
	ErrCouponAmountInvalid   = errors.New("coupon amount invalid")
	ErrCouponRejected        = errors.New("coupon rejected")
	ErrCouponCodeOptions     = errors.New("coupon code options invalid")
	ErrCouponCodeExhausted   = errors.New("coupon code space exhausted")
	ErrCouponBatchSizeExceed = errors.New("coupon batch size exceeded")
)

// 邮件订阅相关错误
var (
	ErrSubscriptionNotFound     = errors.New("subscription not found")
	ErrSubscriptionInvalid      = errors.New("subscription invalid")
	ErrSubscriptionTokenInvalid = errors.New("subscription token invalid")
)

// 邮件相关错误
var (
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
)
