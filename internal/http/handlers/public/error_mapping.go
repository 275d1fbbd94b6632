package public

import (
	"errors"

	"github.com/prepwise-next/internal/http/response"
	"github.com/prepwise-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var captchaErrorRules = []mappedHandlerError{
	{target: service.ErrCaptchaRequired, code: response.CodeBadRequest, key: "error.captcha_required"},
	{target: service.ErrCaptchaInvalid, code: response.CodeBadRequest, key: "error.captcha_invalid"},
	{target: service.ErrCaptchaConfigInvalid, code: response.CodeInternal, key: "error.captcha_config_invalid"},
}

var userAccountErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, key: "error.email_invalid"},
	{target: service.ErrUserNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
	{target: service.ErrUserDisabled, code: response.CodeUnauthorized, key: "error.user_disabled"},
}

var registerErrorRules = concatMappedHandlerErrors(userAccountErrorRules, []mappedHandlerError{
	{target: service.ErrEmailExists, code: response.CodeConflict, key: "error.email_exists"},
	{target: service.ErrTenantNotFound, code: response.CodeBadRequest, key: "error.tenant_not_found"},
	{target: service.ErrTenantSuspended, code: response.CodeForbidden, key: "error.tenant_suspended"},
})

var loginErrorRules = concatMappedHandlerErrors(userAccountErrorRules, []mappedHandlerError{
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized, key: "error.login_invalid"},
})

var changePasswordErrorRules = concatMappedHandlerErrors(userAccountErrorRules, []mappedHandlerError{
	{target: service.ErrInvalidPassword, code: response.CodeBadRequest, key: "error.password_old_invalid"},
})

var roleChangeErrorRules = concatMappedHandlerErrors(userAccountErrorRules, []mappedHandlerError{
	{target: service.ErrRoleInvalid, code: response.CodeBadRequest, key: "error.role_invalid"},
	{target: service.ErrTenantMismatch, code: response.CodeForbidden, key: "error.tenant_mismatch"},
	{target: service.ErrRoleChangeForbidden, code: response.CodeForbidden, key: "error.role_change_forbidden"},
})

var couponRedeemErrorRules = concatMappedHandlerErrors(userAccountErrorRules, []mappedHandlerError{
	{target: service.ErrCouponAmountInvalid, code: response.CodeBadRequest, key: "error.coupon_amount_invalid"},
})

var subscriptionErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, key: "error.email_invalid"},
	{target: service.ErrSubscriptionInvalid, code: response.CodeBadRequest, key: "error.subscription_invalid"},
	{target: service.ErrSubscriptionNotFound, code: response.CodeNotFound, key: "error.subscription_not_found"},
	{target: service.ErrSubscriptionTokenInvalid, code: response.CodeBadRequest, key: "error.subscription_token_invalid"},
}
