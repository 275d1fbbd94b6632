package service

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/prepwise-next/internal/config"
	"github.com/prepwise-next/internal/models"
)

const defaultSMTPPort = 587

// NormalizeSMTPConfig 归一化 SMTP 配置
func NormalizeSMTPConfig(cfg config.EmailConfig) config.EmailConfig {
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.Username = strings.TrimSpace(cfg.Username)
	cfg.Password = strings.TrimSpace(cfg.Password)
	cfg.From = strings.TrimSpace(cfg.From)
	cfg.FromName = strings.TrimSpace(cfg.FromName)
	if cfg.Port <= 0 || cfg.Port > 65535 {
		cfg.Port = defaultSMTPPort
	}
	return cfg
}

// ValidateSMTPConfig 校验 SMTP 配置，未启用时跳过必填项
func ValidateSMTPConfig(cfg config.EmailConfig) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("%w: SMTP 端口必须在 1-65535", ErrEmailServiceNotConfigured)
	}
	if cfg.UseTLS && cfg.UseSSL {
		return fmt.Errorf("%w: TLS 与 SSL 不能同时开启", ErrEmailServiceNotConfigured)
	}
	if !cfg.Enabled {
		return nil
	}
	if strings.TrimSpace(cfg.Host) == "" {
		return fmt.Errorf("%w: SMTP 主机不能为空", ErrEmailServiceNotConfigured)
	}
	if strings.TrimSpace(cfg.From) == "" {
		return fmt.Errorf("%w: 发件人邮箱不能为空", ErrEmailServiceNotConfigured)
	}
	if _, err := mail.ParseAddress(cfg.From); err != nil {
		return fmt.Errorf("%w: 发件人邮箱格式无效", ErrEmailServiceNotConfigured)
	}
	return nil
}

// MaskSMTPConfigForAdmin 返回脱敏后的 SMTP 配置
func MaskSMTPConfigForAdmin(cfg config.EmailConfig) models.JSON {
	normalized := NormalizeSMTPConfig(cfg)
	valid := ValidateSMTPConfig(normalized) == nil
	return models.JSON{
		"enabled":      normalized.Enabled,
		"host":         normalized.Host,
		"port":         normalized.Port,
		"username":     normalized.Username,
		"password":     "",
		"has_password": normalized.Password != "",
		"from":         normalized.From,
		"from_name":    normalized.FromName,
		"use_tls":      normalized.UseTLS,
		"use_ssl":      normalized.UseSSL,
		"valid":        valid,
	}
}
