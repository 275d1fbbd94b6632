package service

import (
	"strings"

	"github.com/prepwise-next/internal/config"
	"github.com/prepwise-next/internal/constants"
	"github.com/prepwise-next/internal/models"
)

// CaptchaSetting 运行时验证码配置
type CaptchaSetting struct {
	Provider string
	Scenes   config.CaptchaSceneConfig
	Image    config.CaptchaImageConfig
}

// NormalizeCaptchaSetting 归一化验证码配置
func NormalizeCaptchaSetting(cfg config.CaptchaConfig) CaptchaSetting {
	setting := CaptchaSetting{
		Provider: strings.ToLower(strings.TrimSpace(cfg.Provider)),
		Scenes:   cfg.Scenes,
		Image:    cfg.Image,
	}
	if setting.Provider != constants.CaptchaProviderImage {
		setting.Provider = constants.CaptchaProviderNone
	}
	if setting.Image.Length < 4 || setting.Image.Length > 8 {
		setting.Image.Length = 5
	}
	if setting.Image.Width < 100 {
		setting.Image.Width = 240
	}
	if setting.Image.Height < 40 {
		setting.Image.Height = 80
	}
	if setting.Image.NoiseCount < 0 {
		setting.Image.NoiseCount = 2
	}
	if setting.Image.ShowLine < 0 {
		setting.Image.ShowLine = 2
	}
	if setting.Image.ExpireSeconds < 30 || setting.Image.ExpireSeconds > 3600 {
		setting.Image.ExpireSeconds = 300
	}
	if setting.Image.MaxStore < 100 {
		setting.Image.MaxStore = 10240
	}
	return setting
}

// IsSceneEnabled 判断指定场景是否需要验证码
func (s CaptchaSetting) IsSceneEnabled(scene string) bool {
	if s.Provider == constants.CaptchaProviderNone {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(scene)) {
	case constants.CaptchaSceneLogin:
		return s.Scenes.Login
	case constants.CaptchaSceneAdminLogin:
		return s.Scenes.AdminLogin
	case constants.CaptchaSceneRegister:
		return s.Scenes.Register
	default:
		return false
	}
}

// PublicCaptchaSetting 返回可公开下发前端的验证码配置
func PublicCaptchaSetting(setting CaptchaSetting) models.JSON {
	return models.JSON{
		"provider": setting.Provider,
		"scenes": map[string]interface{}{
			"login":       setting.IsSceneEnabled(constants.CaptchaSceneLogin),
			"admin_login": setting.IsSceneEnabled(constants.CaptchaSceneAdminLogin),
			"register":    setting.IsSceneEnabled(constants.CaptchaSceneRegister),
		},
	}
}
