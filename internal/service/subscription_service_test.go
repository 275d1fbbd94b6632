package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/prepwise-next/internal/config"
	"github.com/prepwise-next/internal/constants"
	"github.com/prepwise-next/internal/models"
	"github.com/prepwise-next/internal/repository"
)

func setupSubscriptionServiceTest(t *testing.T) *SubscriptionService {
	t.Helper()
	db := openServiceTestDB(t, "subscription_service_test", &models.EmailSubscription{})
	svc := NewSubscriptionService(
		repository.NewEmailSubscriptionRepository(db),
		NewEmailService(&config.EmailConfig{}),
		nil,
	)
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc
}

func TestSubscribeIsIdempotent(t *testing.T) {
	svc := setupSubscriptionServiceTest(t)

	sub, created, err := svc.Subscribe(SubscribeInput{Email: " Ada@Example.com ", Name: "Ada", Locale: "en"})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if !created || sub.Email != "ada@example.com" || sub.Status != constants.SubscriptionStatusSubscribed {
		t.Fatalf("unexpected subscription: %+v created=%v", sub, created)
	}
	if sub.Source != constants.SubscriptionSourceWebsite || sub.Locale != constants.LocaleEnUS {
		t.Fatalf("unexpected source/locale: %s/%s", sub.Source, sub.Locale)
	}
	if sub.UnsubscribeToken == "" {
		t.Fatalf("expected unsubscribe token")
	}

	again, created, err := svc.Subscribe(SubscribeInput{Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("resubscribe failed: %v", err)
	}
	if created || again.ID != sub.ID || again.UnsubscribeToken != sub.UnsubscribeToken {
		t.Fatalf("active subscription should be returned unchanged")
	}
}

func TestUnsubscribeAndResubscribe(t *testing.T) {
	svc := setupSubscriptionServiceTest(t)
	sub, _, err := svc.Subscribe(SubscribeInput{Email: "grace@example.com", Source: "signup"})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if sub.Source != constants.SubscriptionSourceSignup {
		t.Fatalf("expected signup source, got %s", sub.Source)
	}

	if _, err := svc.Unsubscribe("bogus"); !errors.Is(err, ErrSubscriptionTokenInvalid) {
		t.Fatalf("expected token invalid, got %v", err)
	}
	left, err := svc.Unsubscribe(sub.UnsubscribeToken)
	if err != nil {
		t.Fatalf("unsubscribe failed: %v", err)
	}
	if left.Status != constants.SubscriptionStatusUnsubscribed || left.UnsubscribedAt == nil {
		t.Fatalf("unexpected unsubscribe state: %+v", left)
	}
	if _, err := svc.Unsubscribe(sub.UnsubscribeToken); err != nil {
		t.Fatalf("second unsubscribe should be idempotent, got %v", err)
	}
	if err := svc.SendWelcome(sub.ID); err != nil {
		t.Fatalf("welcome for unsubscribed address should be skipped, got %v", err)
	}

	back, created, err := svc.Subscribe(SubscribeInput{Email: "grace@example.com"})
	if err != nil {
		t.Fatalf("resubscribe failed: %v", err)
	}
	if !created || back.ID != sub.ID || back.UnsubscribedAt != nil {
		t.Fatalf("resubscribe should reactivate the same row: %+v", back)
	}
	if back.UnsubscribeToken == sub.UnsubscribeToken {
		t.Fatalf("resubscribe should rotate the token")
	}
	if err := svc.SendWelcome(back.ID); !errors.Is(err, ErrEmailServiceDisabled) {
		t.Fatalf("expected email disabled error, got %v", err)
	}
}

func TestSubscribeRejectsInvalidInput(t *testing.T) {
	svc := setupSubscriptionServiceTest(t)
	if _, _, err := svc.Subscribe(SubscribeInput{Email: "nope"}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected invalid email, got %v", err)
	}
	long := make([]rune, subscriptionNameMaxLength+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, _, err := svc.Subscribe(SubscribeInput{Email: "a@example.com", Name: string(long)}); !errors.Is(err, ErrSubscriptionInvalid) {
		t.Fatalf("expected invalid subscription, got %v", err)
	}
}

func TestSubscriptionAdminOperations(t *testing.T) {
	svc := setupSubscriptionServiceTest(t)
	first, _, _ := svc.Subscribe(SubscribeInput{Email: "one@example.com", Name: "One"})
	second, _, _ := svc.Subscribe(SubscribeInput{Email: "two@example.com", Source: "admin"})

	if _, err := svc.UpdateStatus(first.ID, "paused"); !errors.Is(err, ErrSubscriptionInvalid) {
		t.Fatalf("expected invalid status, got %v", err)
	}
	updated, err := svc.UpdateStatus(first.ID, "Unsubscribed")
	if err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if updated.Status != constants.SubscriptionStatusUnsubscribed {
		t.Fatalf("expected unsubscribed, got %s", updated.Status)
	}

	counts, err := svc.CountByStatus()
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if counts[constants.SubscriptionStatusSubscribed] != 1 || counts[constants.SubscriptionStatusUnsubscribed] != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}

	var buf bytes.Buffer
	exported, err := svc.ExportCSV(&buf, repository.EmailSubscriptionListFilter{PageSize: 1})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if exported != 2 {
		t.Fatalf("export should ignore pagination, got %d rows", exported)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv failed: %v", err)
	}
	if len(records) != 3 || records[0][0] != "email" {
		t.Fatalf("unexpected csv: %v", records)
	}
	if records[1][0] != "two@example.com" || records[2][6] == "" {
		t.Fatalf("unexpected csv rows: %v", records)
	}

	if err := svc.Delete(second.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.Delete(second.ID); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
