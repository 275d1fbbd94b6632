package admin

import (
	"errors"
	"strings"

	"github.com/prepwise-next/internal/http/response"
	"github.com/prepwise-next/internal/i18n"
	"github.com/prepwise-next/internal/rbac"
	"github.com/prepwise-next/internal/service"

	"github.com/gin-gonic/gin"
)

// SMTPTestRequest 发送测试邮件请求
type SMTPTestRequest struct {
	ToEmail string `json:"to_email" binding:"required"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// GetSMTPSettings 获取 SMTP 配置（密码脱敏）
func (h *Handler) GetSMTPSettings(c *gin.Context) {
	response.Success(c, service.MaskSMTPConfigForAdmin(h.Config.Email))
}

// TestSMTPSettings 使用当前配置发送测试邮件
func (h *Handler) TestSMTPSettings(c *gin.Context) {
	var req SMTPTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = i18n.T(i18n.ResolveLocale(c), "email.test_subject")
	}

	if err := h.EmailService.SendCustomEmail(strings.TrimSpace(req.ToEmail), subject, req.Body); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, response.CodeBadRequest, "error.email_invalid", nil)
		case errors.Is(err, service.ErrEmailServiceDisabled):
			respondError(c, response.CodeBadRequest, "error.email_service_disabled", nil)
		case errors.Is(err, service.ErrEmailServiceNotConfigured):
			respondError(c, response.CodeBadRequest, "error.email_service_not_configured", nil)
		case errors.Is(err, service.ErrEmailRecipientRejected):
			respondError(c, response.CodeBadRequest, "error.email_recipient_rejected", nil)
		default:
			respondError(c, response.CodeInternal, "error.email_send_failed", err)
		}
		return
	}
	requestLog(c).Infow("admin_smtp_test_sent", "admin_id", currentAdminID(c))
	response.Success(c, nil)
}

// GetCaptchaSettings 获取验证码配置
func (h *Handler) GetCaptchaSettings(c *gin.Context) {
	response.Success(c, h.CaptchaService.GetPublicSetting())
}

// GetRBACRoles 查看用户侧角色表：层级、继承链、有效权限与落地页
func (h *Handler) GetRBACRoles(c *gin.Context) {
	table := h.UserService.Table()
	roles := table.Roles()
	items := make([]gin.H, 0, len(roles))
	for _, role := range roles {
		items = append(items, gin.H{
			"name":          role.Name,
			"level":         role.Level,
			"inherits":      role.Inherits,
			"chain":         table.InheritanceChain(role.Name),
			"permissions":   table.EffectivePermissions(role.Name),
			"default_route": table.DefaultRoute(&rbac.Subject{Role: role.Name, IsActive: true}),
		})
	}
	response.Success(c, items)
}
