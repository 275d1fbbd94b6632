package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/prepwise-next/internal/config"
	"github.com/prepwise-next/internal/i18n"
	"github.com/prepwise-next/internal/models"
)

func TestBuildCouponReceiptContent(t *testing.T) {
	tests := []struct {
		name                string
		locale              string
		trialDays           int
		wantSubjectContains []string
		wantBodyContains    []string
	}{
		{
			name:                "percentage_zh",
			locale:              i18n.LocaleZH,
			wantSubjectContains: []string{"优惠券已使用", "SAVE20"},
			wantBodyContains:    []string{"核销编号：R-1", "优惠：200.00", "实付：800.00"},
		},
		{
			name:                "percentage_en",
			locale:              i18n.LocaleEN,
			wantSubjectContains: []string{"Coupon redeemed", "SAVE20"},
			wantBodyContains:    []string{"Redemption No: R-1", "Discount: 200.00"},
		},
		{
			name:                "trial_tw",
			locale:              i18n.LocaleTW,
			trialDays:           14,
			wantSubjectContains: []string{"優惠券已使用"},
			wantBodyContains:    []string{"試用期已延長 14 天"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, body := buildCouponReceiptContent(CouponReceiptEmailInput{
				RedemptionNo:   "R-1",
				CouponCode:     "SAVE20",
				OriginalAmount: models.NewMoneyFromFloat(1000),
				DiscountAmount: models.NewMoneyFromFloat(200),
				FinalAmount:    models.NewMoneyFromFloat(800),
				TrialDays:      tt.trialDays,
			}, tt.locale)
			for _, expected := range tt.wantSubjectContains {
				if !strings.Contains(subject, expected) {
					t.Fatalf("subject missing %q: %s", expected, subject)
				}
			}
			for _, expected := range tt.wantBodyContains {
				if !strings.Contains(body, expected) {
					t.Fatalf("body missing %q: %s", expected, body)
				}
			}
		})
	}
}

func TestBuildWelcomeContent(t *testing.T) {
	subject, body := buildWelcomeContent("Ada", "tok-1", "en")
	if subject != "Welcome to PrepWise" {
		t.Fatalf("unexpected subject: %s", subject)
	}
	if !strings.Contains(body, "Hi Ada") || !strings.Contains(body, "tok-1") {
		t.Fatalf("unexpected body: %s", body)
	}
	subject, _ = buildWelcomeContent("", "tok-2", "fr-FR")
	if subject != "欢迎订阅 PrepWise" {
		t.Fatalf("unsupported locale should fall back to default, got %s", subject)
	}
}

func TestSendTextEmailGuards(t *testing.T) {
	disabled := NewEmailService(&config.EmailConfig{Enabled: false})
	if err := disabled.SendCustomEmail("a@example.com", "", ""); !errors.Is(err, ErrEmailServiceDisabled) {
		t.Fatalf("expected disabled error, got %v", err)
	}
	missingHost := NewEmailService(&config.EmailConfig{Enabled: true, Port: 25, From: "noreply@example.com"})
	if err := missingHost.SendCustomEmail("a@example.com", "", ""); !errors.Is(err, ErrEmailServiceNotConfigured) {
		t.Fatalf("expected not configured error, got %v", err)
	}
	configured := NewEmailService(&config.EmailConfig{Enabled: true, Host: "smtp.example.com", Port: 25, From: "noreply@example.com"})
	if err := configured.SendCustomEmail("not-an-email", "", ""); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected invalid email error, got %v", err)
	}
}

func TestNormalizeEmailSendError(t *testing.T) {
	if err := normalizeEmailSendError(errors.New("550 5.1.1 recipient address rejected")); !errors.Is(err, ErrEmailRecipientRejected) {
		t.Fatalf("expected recipient rejected, got %v", err)
	}
	raw := errors.New("connection reset")
	if err := normalizeEmailSendError(raw); err != raw {
		t.Fatalf("unexpected mapping: %v", err)
	}
	if normalizeEmailSendError(nil) != nil {
		t.Fatalf("nil should stay nil")
	}
}
