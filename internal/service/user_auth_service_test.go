package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prepwise-next/internal/config"
	"github.com/prepwise-next/internal/constants"
	"github.com/prepwise-next/internal/models"
	"github.com/prepwise-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openServiceTestDB(t *testing.T, name string, dst ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(dst...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

type userAuthFixture struct {
	svc        *UserAuthService
	userRepo   *repository.GormUserRepository
	tenantRepo *repository.GormTenantRepository
}

func setupUserAuthServiceTest(t *testing.T) *userAuthFixture {
	t.Helper()
	db := openServiceTestDB(t, "user_auth_service_test", &models.User{}, &models.Tenant{})
	userRepo := repository.NewUserRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	cfg := config.Defaults()
	return &userAuthFixture{
		svc:        NewUserAuthService(cfg, userRepo, tenantRepo),
		userRepo:   userRepo,
		tenantRepo: tenantRepo,
	}
}

func TestRegisterCreatesTrialUser(t *testing.T) {
	f := setupUserAuthServiceTest(t)
	now := time.Now().UTC().Truncate(time.Second)
	f.svc.now = func() time.Time { return now }

	user, token, expiresAt, err := f.svc.Register(RegisterInput{
		Email:    "  Ada@Example.com ",
		Password: "Passw0rdX",
		Locale:   "en",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("email should be normalized, got %s", user.Email)
	}
	if user.Role != constants.RoleTrialUser || user.PlanType != constants.PlanFree {
		t.Fatalf("unexpected role/plan: %s/%s", user.Role, user.PlanType)
	}
	if user.TrialEndsAt == nil || !user.TrialEndsAt.Equal(now.AddDate(0, 0, defaultTrialDays)) {
		t.Fatalf("unexpected trial end: %v", user.TrialEndsAt)
	}
	if user.DisplayName != "ada" {
		t.Fatalf("display name should default to email prefix, got %s", user.DisplayName)
	}
	if token == "" || !expiresAt.After(now) {
		t.Fatalf("expected token with future expiry")
	}

	claims, err := f.svc.ParseUserJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != constants.RoleTrialUser {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, _, _, err := f.svc.Register(RegisterInput{Email: "ada@example.com", Password: "Passw0rdX"}); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected email exists, got %v", err)
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	f := setupUserAuthServiceTest(t)

	if _, _, _, err := f.svc.Register(RegisterInput{Email: "not-an-email", Password: "Passw0rdX"}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected invalid email, got %v", err)
	}
	if _, _, _, err := f.svc.Register(RegisterInput{Email: "weak@example.com", Password: "short"}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected weak password, got %v", err)
	}
}

func TestRegisterWithTenantSlug(t *testing.T) {
	f := setupUserAuthServiceTest(t)
	active := &models.Tenant{Slug: "north-high", Name: "North High", Status: constants.TenantStatusActive}
	suspended := &models.Tenant{Slug: "old-school", Name: "Old School", Status: constants.TenantStatusSuspended}
	for _, tenant := range []*models.Tenant{active, suspended} {
		if err := f.tenantRepo.Create(tenant); err != nil {
			t.Fatalf("create tenant failed: %v", err)
		}
	}

	user, _, _, err := f.svc.Register(RegisterInput{Email: "kid@example.com", Password: "Passw0rdX", TenantSlug: "North-High"})
	if err != nil {
		t.Fatalf("register with tenant failed: %v", err)
	}
	if user.TenantID == nil || *user.TenantID != active.ID {
		t.Fatalf("expected tenant %d, got %v", active.ID, user.TenantID)
	}

	if _, _, _, err := f.svc.Register(RegisterInput{Email: "a@example.com", Password: "Passw0rdX", TenantSlug: "missing"}); !errors.Is(err, ErrTenantNotFound) {
		t.Fatalf("expected tenant not found, got %v", err)
	}
	if _, _, _, err := f.svc.Register(RegisterInput{Email: "b@example.com", Password: "Passw0rdX", TenantSlug: "old-school"}); !errors.Is(err, ErrTenantSuspended) {
		t.Fatalf("expected tenant suspended, got %v", err)
	}
}

func TestLoginAndDisabledUser(t *testing.T) {
	f := setupUserAuthServiceTest(t)
	user, _, _, err := f.svc.Register(RegisterInput{Email: "grace@example.com", Password: "Passw0rdX"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, _, _, err := f.svc.Login("grace@example.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, _, _, err := f.svc.Login("nobody@example.com", "Passw0rdX"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}

	_, _, shortExpiry, err := f.svc.Login("GRACE@example.com", "Passw0rdX")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	_, _, longExpiry, err := f.svc.LoginWithRememberMe("grace@example.com", "Passw0rdX", true)
	if err != nil {
		t.Fatalf("remember me login failed: %v", err)
	}
	if !longExpiry.After(shortExpiry) {
		t.Fatalf("remember me should extend expiry: %v <= %v", longExpiry, shortExpiry)
	}

	if err := f.userRepo.UpdateStatus(user.ID, constants.UserStatusDisabled); err != nil {
		t.Fatalf("disable user failed: %v", err)
	}
	if _, _, _, err := f.svc.Login("grace@example.com", "Passw0rdX"); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("expected user disabled, got %v", err)
	}
}

func TestChangePasswordBumpsTokenVersion(t *testing.T) {
	f := setupUserAuthServiceTest(t)
	user, _, _, err := f.svc.Register(RegisterInput{Email: "lin@example.com", Password: "Passw0rdX"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := f.svc.ChangePassword(user.ID, "bad-old", "N3wPassword"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected invalid password, got %v", err)
	}
	if err := f.svc.ChangePassword(user.ID, "Passw0rdX", "N3wPassword"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	updated, err := f.userRepo.GetByID(user.ID)
	if err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if updated.TokenVersion != user.TokenVersion+1 || updated.TokenInvalidBefore == nil {
		t.Fatalf("password change should revoke tokens: version=%d", updated.TokenVersion)
	}
	if _, _, _, err := f.svc.Login("lin@example.com", "N3wPassword"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	f := setupUserAuthServiceTest(t)
	user, _, _, err := f.svc.Register(RegisterInput{Email: "mei@example.com", Password: "Passw0rdX"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	name := "  Mei  "
	locale := "zh-Hant"
	updated, err := f.svc.UpdateProfile(user.ID, &name, &locale)
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.DisplayName != "Mei" || updated.Locale != constants.LocaleZhTW {
		t.Fatalf("unexpected profile: %s/%s", updated.DisplayName, updated.Locale)
	}
	if _, err := f.svc.UpdateProfile(9999, &name, nil); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestParseUserJWTRejectsForeignSecret(t *testing.T) {
	f := setupUserAuthServiceTest(t)
	user, token, _, err := f.svc.Register(RegisterInput{Email: "eve@example.com", Password: "Passw0rdX"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	other := config.Defaults()
	other.UserJWT.SecretKey = "another-secret"
	foreign := NewUserAuthService(other, f.userRepo, f.tenantRepo)
	if _, err := foreign.ParseUserJWT(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected token invalid, got %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected persisted user")
	}
}
