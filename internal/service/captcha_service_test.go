package service

import (
	"errors"
	"testing"

	"github.com/prepwise-next/internal/config"
	"github.com/prepwise-next/internal/constants"
)

func TestNormalizeCaptchaSettingDefaults(t *testing.T) {
	setting := NormalizeCaptchaSetting(config.CaptchaConfig{Provider: "turnstile"})
	if setting.Provider != constants.CaptchaProviderNone {
		t.Fatalf("unsupported provider should fall back to none, got %s", setting.Provider)
	}
	if setting.Image.Length != 5 || setting.Image.Width != 240 || setting.Image.Height != 80 {
		t.Fatalf("unexpected image defaults: %+v", setting.Image)
	}
	if setting.Image.ExpireSeconds != 300 || setting.Image.MaxStore != 10240 {
		t.Fatalf("unexpected store defaults: %+v", setting.Image)
	}
}

func TestCaptchaVerifySceneDisabled(t *testing.T) {
	svc := NewCaptchaService(config.CaptchaConfig{
		Provider: constants.CaptchaProviderImage,
		Scenes:   config.CaptchaSceneConfig{Login: true},
	})
	if err := svc.Verify(constants.CaptchaSceneRegister, CaptchaVerifyPayload{}); err != nil {
		t.Fatalf("disabled scene should pass, got %v", err)
	}
	if err := svc.Verify(constants.CaptchaSceneLogin, CaptchaVerifyPayload{}); !errors.Is(err, ErrCaptchaRequired) {
		t.Fatalf("expected captcha required, got %v", err)
	}
	if err := svc.Verify(constants.CaptchaSceneLogin, CaptchaVerifyPayload{CaptchaID: "missing", CaptchaCode: "abcde"}); !errors.Is(err, ErrCaptchaInvalid) {
		t.Fatalf("expected captcha invalid, got %v", err)
	}
}

func TestCaptchaProviderNoneSkipsScenes(t *testing.T) {
	svc := NewCaptchaService(config.CaptchaConfig{
		Provider: constants.CaptchaProviderNone,
		Scenes:   config.CaptchaSceneConfig{Login: true, Register: true},
	})
	if err := svc.Verify(constants.CaptchaSceneLogin, CaptchaVerifyPayload{}); err != nil {
		t.Fatalf("provider none should skip verify, got %v", err)
	}
	if _, err := svc.GenerateImageChallenge(); !errors.Is(err, ErrCaptchaConfigInvalid) {
		t.Fatalf("expected config invalid, got %v", err)
	}
	public := svc.GetPublicSetting()
	scenes := public["scenes"].(map[string]interface{})
	if scenes["login"] != false {
		t.Fatalf("public scenes should be disabled when provider is none")
	}
}

func TestCaptchaGenerateImageChallenge(t *testing.T) {
	svc := NewCaptchaService(config.CaptchaConfig{
		Provider: constants.CaptchaProviderImage,
		Scenes:   config.CaptchaSceneConfig{AdminLogin: true},
	})
	challenge, err := svc.GenerateImageChallenge()
	if err != nil {
		t.Fatalf("generate challenge failed: %v", err)
	}
	if challenge.CaptchaID == "" || challenge.ImageBase64 == "" {
		t.Fatalf("unexpected empty challenge: %+v", challenge)
	}
	answer := svc.imageStore.Get(challenge.CaptchaID, false)
	if err := svc.Verify(constants.CaptchaSceneAdminLogin, CaptchaVerifyPayload{CaptchaID: challenge.CaptchaID, CaptchaCode: answer}); err != nil {
		t.Fatalf("expected verify ok, got %v", err)
	}
	if err := svc.Verify(constants.CaptchaSceneAdminLogin, CaptchaVerifyPayload{CaptchaID: challenge.CaptchaID, CaptchaCode: answer}); !errors.Is(err, ErrCaptchaInvalid) {
		t.Fatalf("captcha should be single use, got %v", err)
	}
}
