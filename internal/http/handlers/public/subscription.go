package public

import (
	"strings"

	"github.com/prepwise-next/internal/constants"
	"github.com/prepwise-next/internal/http/response"
	"github.com/prepwise-next/internal/i18n"
	"github.com/prepwise-next/internal/service"

	"github.com/gin-gonic/gin"
)

// SubscribeRequest 订阅请求
type SubscribeRequest struct {
	Email string `json:"email" binding:"required"`
	Name  string `json:"name"`
}

// UnsubscribeRequest 退订请求
type UnsubscribeRequest struct {
	Token string `json:"token"`
}

// Subscribe 订阅学习周报，重复订阅幂等
func (h *Handler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	locale := i18n.ResolveLocale(c)
	sub, created, err := h.SubscriptionService.Subscribe(service.SubscribeInput{
		Email:  req.Email,
		Name:   req.Name,
		Source: constants.SubscriptionSourceWebsite,
		Locale: locale,
	})
	if err != nil {
		respondWithMappedError(c, err, subscriptionErrorRules, response.CodeInternal, "error.subscription_save_failed")
		return
	}
	response.SuccessWithMsg(c, i18n.T(locale, "success.subscribed"), gin.H{
		"email":   sub.Email,
		"status":  sub.Status,
		"created": created,
	})
}

// Unsubscribe 凭退订令牌退订，令牌可来自 query 或请求体
func (h *Handler) Unsubscribe(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		var req UnsubscribeRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			token = strings.TrimSpace(req.Token)
		}
	}
	if token == "" {
		respondError(c, response.CodeBadRequest, "error.subscription_token_invalid", nil)
		return
	}
	sub, err := h.SubscriptionService.Unsubscribe(token)
	if err != nil {
		respondWithMappedError(c, err, subscriptionErrorRules, response.CodeInternal, "error.subscription_save_failed")
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "success.unsubscribed"), gin.H{
		"email":  sub.Email,
		"status": sub.Status,
	})
}
