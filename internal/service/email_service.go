package service

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/prepwise-next/internal/config"
	"github.com/prepwise-next/internal/i18n"
	"github.com/prepwise-next/internal/models"
)

// EmailService 邮件发送服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	if cfg == nil {
		return &EmailService{}
	}
	normalized := NormalizeSMTPConfig(*cfg)
	return &EmailService{cfg: &normalized}
}

// Setting 返回脱敏后的当前配置
func (s *EmailService) Setting() models.JSON {
	if s == nil || s.cfg == nil {
		return MaskSMTPConfigForAdmin(config.EmailConfig{})
	}
	return MaskSMTPConfigForAdmin(*s.cfg)
}

// Enabled 邮件服务是否可用
func (s *EmailService) Enabled() bool {
	return s != nil && s.cfg != nil && s.cfg.Enabled
}

// SendWelcomeEmail 发送订阅欢迎邮件
func (s *EmailService) SendWelcomeEmail(toEmail, name, unsubscribeToken, locale string) error {
	subject, body := buildWelcomeContent(name, unsubscribeToken, locale)
	return s.sendTextEmail(toEmail, subject, body)
}

// CouponReceiptEmailInput 优惠券核销回执邮件输入
type CouponReceiptEmailInput struct {
	RedemptionNo   string
	CouponCode     string
	DiscountType   string
	OriginalAmount models.Money
	DiscountAmount models.Money
	FinalAmount    models.Money
	PlanType       string
	TrialDays      int
}

// SendCouponReceiptEmail 发送优惠券核销回执
func (s *EmailService) SendCouponReceiptEmail(toEmail string, input CouponReceiptEmailInput, locale string) error {
	subject, body := buildCouponReceiptContent(input, locale)
	return s.sendTextEmail(toEmail, subject, body)
}

// SendCustomEmail 发送测试邮件或自定义邮件
func (s *EmailService) SendCustomEmail(toEmail, subject, body string) error {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = "SMTP 配置测试邮件"
	}
	body = strings.TrimSpace(body)
	if body == "" {
		body = "这是一封来自 PrepWise 的 SMTP 测试邮件，说明当前配置可正常发送。"
	}
	return s.sendTextEmail(toEmail, subject, body)
}

func (s *EmailService) sendTextEmail(toEmail, subject, body string) error {
	if s == nil || s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if err := ValidateSMTPConfig(*s.cfg); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}

	from := buildFromAddress(s.cfg.From, s.cfg.FromName)
	msg := buildEmailMessage(from, toEmail, subject, body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if s.cfg.UseSSL {
		return normalizeEmailSendError(sendMailWithSSL(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg)))
	}
	if s.cfg.UseTLS {
		return normalizeEmailSendError(sendMailWithStartTLS(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg)))
	}
	return normalizeEmailSendError(sendMailPlain(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg)))
}

func buildWelcomeContent(name, unsubscribeToken, locale string) (string, string) {
	name = strings.TrimSpace(name)
	switch i18n.NormalizeLocale(locale) {
	case i18n.LocaleTW:
		greeting := "您好"
		if name != "" {
			greeting = name + "，您好"
		}
		body := fmt.Sprintf("%s：\n\n感謝訂閱 PrepWise 學習週報，我們會定期寄送備考技巧與產品更新。\n\n退訂憑證：%s", greeting, unsubscribeToken)
		return "歡迎訂閱 PrepWise", body
	case i18n.LocaleEN:
		greeting := "Hi"
		if name != "" {
			greeting = "Hi " + name
		}
		body := fmt.Sprintf("%s,\n\nThanks for subscribing to the PrepWise study digest. Expect exam tips and product updates in your inbox.\n\nUnsubscribe token: %s", greeting, unsubscribeToken)
		return "Welcome to PrepWise", body
	default:
		greeting := "您好"
		if name != "" {
			greeting = name + "，您好"
		}
		body := fmt.Sprintf("%s：\n\n感谢订阅 PrepWise 学习周报，我们会定期发送备考技巧与产品更新。\n\n退订凭证：%s", greeting, unsubscribeToken)
		return "欢迎订阅 PrepWise", body
	}
}

func buildCouponReceiptContent(input CouponReceiptEmailInput, locale string) (string, string) {
	switch i18n.NormalizeLocale(locale) {
	case i18n.LocaleTW:
		subject := fmt.Sprintf("優惠券已使用：%s", input.CouponCode)
		body := fmt.Sprintf("核銷編號：%s\n優惠碼：%s\n原價：%s\n優惠：%s\n實付：%s",
			input.RedemptionNo, input.CouponCode, input.OriginalAmount.String(), input.DiscountAmount.String(), input.FinalAmount.String())
		if input.TrialDays > 0 {
			body += fmt.Sprintf("\n試用期已延長 %d 天", input.TrialDays)
		}
		return subject, body
	case i18n.LocaleEN:
		subject := fmt.Sprintf("Coupon redeemed: %s", input.CouponCode)
		body := fmt.Sprintf("Redemption No: %s\nCoupon: %s\nOriginal: %s\nDiscount: %s\nTotal: %s",
			input.RedemptionNo, input.CouponCode, input.OriginalAmount.String(), input.DiscountAmount.String(), input.FinalAmount.String())
		if input.TrialDays > 0 {
			body += fmt.Sprintf("\nYour trial has been extended by %d days", input.TrialDays)
		}
		return subject, body
	default:
		subject := fmt.Sprintf("优惠券已使用：%s", input.CouponCode)
		body := fmt.Sprintf("核销编号：%s\n优惠码：%s\n原价：%s\n优惠：%s\n实付：%s",
			input.RedemptionNo, input.CouponCode, input.OriginalAmount.String(), input.DiscountAmount.String(), input.FinalAmount.String())
		if input.TrialDays > 0 {
			body += fmt.Sprintf("\n试用期已延长 %d 天", input.TrialDays)
		}
		return subject, body
	}
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.String()
}

func sendMailWithSSL(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendMailWithStartTLS(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return err
	}

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendMailPlain(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendSMTPData(client *smtp.Client, from string, to []string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return ErrEmailRecipientRejected
	}
	return err
}

func isEmailRecipientRejected(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	if message == "" {
		return false
	}
	directKeywords := []string{
		"no such recipient",
		"no such user",
		"recipient not found",
		"recipient address rejected",
		"invalid recipient",
		"user unknown",
		"unknown user",
		"unknown mailbox",
		"mailbox unavailable",
	}
	for _, keyword := range directKeywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	if strings.Contains(message, "550") {
		hints := []string{"recipient", "user", "mailbox", "address", "rcpt"}
		for _, hint := range hints {
			if strings.Contains(message, hint) {
				return true
			}
		}
	}
	return false
}
