package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prepwise-next/internal/config"
	"github.com/prepwise-next/internal/constants"
	"github.com/prepwise-next/internal/models"
	"github.com/prepwise-next/internal/repository"
	"github.com/prepwise-next/internal/repository/jsonstore"
)

func setupCouponAdminServiceTest(t *testing.T) (*CouponAdminService, *jsonstore.Store) {
	t.Helper()
	store, err := jsonstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open json store failed: %v", err)
	}
	cfg := config.Defaults()
	svc := NewCouponAdminService(&cfg.Coupon, store, store.Usages(), []string{constants.RoleStudent, constants.RoleTrialUser})
	return svc, store
}

func newSaveCouponInput(code string) SaveCouponInput {
	from := time.Now().Add(-time.Hour)
	until := time.Now().Add(7 * 24 * time.Hour)
	return SaveCouponInput{CouponDataInput: CouponDataInput{
		Code:          code,
		DiscountType:  "Percentage",
		Value:         models.NewMoneyFromFloat(15),
		ValidFrom:     &from,
		ValidUntil:    &until,
		EligibleRoles: []string{constants.RoleStudent, constants.RoleStudent, " "},
		EligiblePlans: []string{"PRO"},
	}}
}

func TestCouponAdminCreateNormalizes(t *testing.T) {
	svc, _ := setupCouponAdminServiceTest(t)
	coupon, err := svc.Create(newSaveCouponInput(" welcome15 "), 3)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if coupon.Code != "WELCOME15" || coupon.DiscountType != constants.CouponTypePercentage {
		t.Fatalf("unexpected normalized coupon: %+v", coupon)
	}
	if !coupon.IsActive {
		t.Fatalf("new coupons default to active")
	}
	if len(coupon.EligibleRoles) != 1 || coupon.EligiblePlans[0] != constants.PlanPro {
		t.Fatalf("lists not normalized: roles=%v plans=%v", coupon.EligibleRoles, coupon.EligiblePlans)
	}
	if coupon.CreatedByAdminID == nil || *coupon.CreatedByAdminID != 3 {
		t.Fatalf("creator not recorded")
	}

	if _, err := svc.Create(newSaveCouponInput("Welcome15"), 3); !errors.Is(err, ErrCouponCodeExists) {
		t.Fatalf("expected duplicate code error, got %v", err)
	}
}

func TestCouponAdminCreatedRolesMatchUserRoles(t *testing.T) {
	svc, store := setupCouponAdminServiceTest(t)
	input := newSaveCouponInput("ROLECASE")
	input.EligibleRoles = []string{"Student"}
	input.EligiblePlans = nil
	coupon, err := svc.Create(input, 1)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(coupon.EligibleRoles) != 1 || coupon.EligibleRoles[0] != constants.RoleStudent {
		t.Fatalf("roles should be stored lowercased, got %v", coupon.EligibleRoles)
	}

	cfg := config.Defaults()
	validator := NewCouponService(&cfg.Coupon, store, store.Usages(), nil, nil)
	result, err := validator.ValidateCoupon(ValidateCouponInput{
		Code:     "rolecase",
		UserID:   1,
		UserRole: constants.RoleStudent,
		PlanType: constants.PlanBasic,
		Amount:   models.NewMoneyFromFloat(100),
	})
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !result.Valid {
		t.Fatalf("student should be eligible, got %+v", result)
	}
}

func TestCouponAdminCreateReturnsAllViolations(t *testing.T) {
	svc, _ := setupCouponAdminServiceTest(t)
	input := newSaveCouponInput("x")
	input.Value = models.NewMoneyFromFloat(0)
	_, err := svc.Create(input, 0)
	if !errors.Is(err, ErrCouponInvalid) {
		t.Fatalf("expected invalid coupon error, got %v", err)
	}
	var dataErr *CouponDataError
	if !errors.As(err, &dataErr) || len(dataErr.Violations) < 2 {
		t.Fatalf("expected multiple violations, got %v", err)
	}
}

func TestCouponAdminUpdateKeepsUsageInvariant(t *testing.T) {
	svc, store := setupCouponAdminServiceTest(t)
	coupon, err := svc.Create(newSaveCouponInput("KEEPCOUNT"), 0)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		usage := &models.CouponUsage{RedemptionNo: fmt.Sprintf("r-%d", i), CouponID: coupon.ID, UserID: uint(i + 1)}
		if err := store.Redeem(usage, nil); err != nil {
			t.Fatalf("redeem failed: %v", err)
		}
	}

	input := newSaveCouponInput("KEEPCOUNT")
	one := 1
	input.UsageLimit = &one
	_, err = svc.Update(coupon.ID, input)
	var dataErr *CouponDataError
	if !errors.As(err, &dataErr) || !strings.Contains(dataErr.Error(), "lower than the current usage count") {
		t.Fatalf("expected usage count violation, got %v", err)
	}

	input = newSaveCouponInput("RENAMED")
	input.Description = "renamed"
	updated, err := svc.Update(coupon.ID, input)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Code != "RENAMED" || updated.UsedCount != 2 {
		t.Fatalf("unexpected updated coupon: %+v", updated)
	}
	if old, _ := store.GetByCode("KEEPCOUNT"); old != nil {
		t.Fatalf("old code should no longer resolve")
	}
}

func TestCouponAdminSetActiveAndDelete(t *testing.T) {
	svc, _ := setupCouponAdminServiceTest(t)
	coupon, err := svc.Create(newSaveCouponInput("TOGGLE"), 0)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	toggled, err := svc.SetActive(coupon.ID, false)
	if err != nil || toggled.IsActive {
		t.Fatalf("deactivate failed: %+v err=%v", toggled, err)
	}
	if err := svc.Delete(coupon.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.Get(coupon.ID); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := svc.Delete(coupon.ID); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("second delete should report not found, got %v", err)
	}
}

func TestCouponAdminGenerateCodes(t *testing.T) {
	svc, _ := setupCouponAdminServiceTest(t)
	options := svc.DefaultCodeOptions()
	options.Prefix = "PW"
	codes, err := svc.GenerateCodes(options, 25)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	seen := map[string]bool{}
	for _, code := range codes {
		if !strings.HasPrefix(code, "PW") || len(code) != 10 {
			t.Fatalf("unexpected code %s", code)
		}
		if seen[code] {
			t.Fatalf("duplicate code %s", code)
		}
		seen[code] = true
	}

	if _, err := svc.GenerateCodes(options, 101); !errors.Is(err, ErrCouponBatchSizeExceed) {
		t.Fatalf("expected batch size error, got %v", err)
	}
}

func TestCouponAdminGenerateCodesExhausted(t *testing.T) {
	svc, _ := setupCouponAdminServiceTest(t)
	options := CouponCodeOptions{Length: 1, IncludeNumbers: true}
	if _, err := svc.GenerateCodes(options, 11); !errors.Is(err, ErrCouponCodeExhausted) {
		t.Fatalf("expected exhausted error, got %v", err)
	}
}

func TestCouponAdminStats(t *testing.T) {
	svc, store := setupCouponAdminServiceTest(t)
	coupon, err := svc.Create(newSaveCouponInput("STATS"), 0)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	usage := &models.CouponUsage{
		RedemptionNo:   "s-1",
		CouponID:       coupon.ID,
		UserID:         1,
		DiscountAmount: models.NewMoneyFromFloat(15),
	}
	if err := store.Redeem(usage, nil); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	stats, err := svc.Stats(coupon.ID)
	if err != nil || stats.Redemptions != 1 || stats.TotalDiscount != "15.00" {
		t.Fatalf("unexpected stats %+v err=%v", stats, err)
	}
	rows, total, err := svc.ListUsages(repository.CouponUsageListFilter{CouponID: coupon.ID})
	if err != nil || total != 1 || rows[0].RedemptionNo != "s-1" {
		t.Fatalf("unexpected usages total=%d err=%v", total, err)
	}
	if _, err := svc.Stats(coupon.ID + 99); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
