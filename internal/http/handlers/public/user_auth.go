package public

import (
	"time"

	"github.com/prepwise-next/internal/constants"
	handlershared "github.com/prepwise-next/internal/http/handlers/shared"
	"github.com/prepwise-next/internal/http/response"
	"github.com/prepwise-next/internal/i18n"
	"github.com/prepwise-next/internal/models"
	"github.com/prepwise-next/internal/service"

	"github.com/gin-gonic/gin"
)

// UserRegisterRequest 注册请求
type UserRegisterRequest struct {
	Email               string                              `json:"email" binding:"required"`
	Password            string                              `json:"password" binding:"required"`
	DisplayName         string                              `json:"display_name"`
	TenantSlug          string                              `json:"tenant_slug"`
	SubscribeNewsletter bool                                `json:"subscribe_newsletter"`
	CaptchaPayload      handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// UserLoginRequest 登录请求
type UserLoginRequest struct {
	Email          string                              `json:"email" binding:"required"`
	Password       string                              `json:"password" binding:"required"`
	RememberMe     bool                                `json:"remember_me"`
	CaptchaPayload handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// UpdateProfileRequest 更新资料请求
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Locale      *string `json:"locale"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UserRegister 用户注册，新用户以试用身份开通
func (h *Handler) UserRegister(c *gin.Context) {
	var req UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if !h.verifyCaptcha(c, constants.CaptchaSceneRegister, req.CaptchaPayload) {
		return
	}

	locale := i18n.ResolveLocale(c)
	user, token, expiresAt, err := h.UserAuthService.Register(service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Locale:      locale,
		TenantSlug:  req.TenantSlug,
	})
	if err != nil {
		if respondPasswordPolicyError(c, err) {
			return
		}
		respondWithMappedError(c, err, registerErrorRules, response.CodeInternal, "error.register_failed")
		return
	}

	if req.SubscribeNewsletter && h.SubscriptionService != nil {
		if _, _, subErr := h.SubscriptionService.Subscribe(service.SubscribeInput{
			Email:  user.Email,
			Name:   user.DisplayName,
			Source: constants.SubscriptionSourceSignup,
			Locale: locale,
		}); subErr != nil {
			requestLog(c).Warnw("user_register_subscribe_failed", "user_id", user.ID, "error", subErr)
		}
	}

	response.Success(c, gin.H{
		"user":       h.userProfileResponse(user),
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
	})
}

// UserLogin 用户登录
func (h *Handler) UserLogin(c *gin.Context) {
	var req UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if !h.verifyCaptcha(c, constants.CaptchaSceneLogin, req.CaptchaPayload) {
		return
	}

	user, token, expiresAt, err := h.UserAuthService.LoginWithRememberMe(req.Email, req.Password, req.RememberMe)
	if err != nil {
		respondWithMappedError(c, err, loginErrorRules, response.CodeInternal, "error.login_failed")
		return
	}

	response.Success(c, gin.H{
		"user":       h.userProfileResponse(user),
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
	})
}

// GetCurrentUser 获取当前用户资料
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUserByID(userID)
	if err != nil {
		respondWithMappedError(c, err, userAccountErrorRules, response.CodeInternal, "error.user_fetch_failed")
		return
	}
	response.Success(c, h.userProfileResponse(user))
}

// UpdateUserProfile 更新昵称与语言偏好
func (h *Handler) UpdateUserProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	user, err := h.UserAuthService.UpdateProfile(userID, req.DisplayName, req.Locale)
	if err != nil {
		respondWithMappedError(c, err, userAccountErrorRules, response.CodeInternal, "error.user_update_failed")
		return
	}
	response.Success(c, h.userProfileResponse(user))
}

// ChangeUserPassword 修改密码，旧 token 随即失效
func (h *Handler) ChangeUserPassword(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.UserAuthService.ChangePassword(userID, req.OldPassword, req.NewPassword); err != nil {
		if respondPasswordPolicyError(c, err) {
			return
		}
		respondWithMappedError(c, err, changePasswordErrorRules, response.CodeInternal, "error.user_update_failed")
		return
	}
	response.Success(c, nil)
}

func (h *Handler) userProfileResponse(user *models.User) gin.H {
	subject := service.NewSubject(user, time.Now())
	profile := gin.H{
		"id":            user.ID,
		"email":         user.Email,
		"display_name":  user.DisplayName,
		"locale":        user.Locale,
		"role":          user.Role,
		"tenant_id":     user.TenantID,
		"plan":          user.PlanType,
		"status":        user.Status,
		"trial_ends_at": user.TrialEndsAt,
		"trial_active":  subject.TrialActive,
	}
	if h.RBAC != nil {
		profile["default_route"] = h.RBAC.DefaultRoute(subject)
	}
	return profile
}
