package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/prepwise-next/internal/constants"
	"github.com/prepwise-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupUserRepositoryTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:user_repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Tenant{}, &models.User{}, &models.EmailSubscription{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func TestUserRepositoryUpdateRoleBumpsTokenVersion(t *testing.T) {
	repo := NewUserRepository(setupUserRepositoryTest(t))
	user := &models.User{
		Email:        "learner@example.com",
		PasswordHash: "hash",
		Role:         constants.RoleTrialUser,
		PlanType:     constants.PlanFree,
		Status:       constants.UserStatusActive,
	}
	if err := repo.Create(user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	if err := repo.UpdateRole(user.ID, constants.RoleStudent); err != nil {
		t.Fatalf("update role failed: %v", err)
	}
	got, err := repo.GetByEmail(" Learner@Example.com ")
	if err != nil || got == nil {
		t.Fatalf("get by email failed: %v", err)
	}
	if got.Role != constants.RoleStudent || got.TokenVersion != 1 || got.TokenInvalidBefore == nil {
		t.Fatalf("unexpected user after role change: %+v", got)
	}
}

func TestUserRepositoryStatusAndTenantQueries(t *testing.T) {
	db := setupUserRepositoryTest(t)
	repo := NewUserRepository(db)
	tenantRepo := NewTenantRepository(db)
	tenant := &models.Tenant{Slug: "north-high", Name: "North High", Status: constants.TenantStatusActive}
	if err := tenantRepo.Create(tenant); err != nil {
		t.Fatalf("create tenant failed: %v", err)
	}

	for i, role := range []string{constants.RoleStudent, constants.RoleInstructor, constants.RoleStudent} {
		user := &models.User{
			Email:        fmt.Sprintf("u%d@example.com", i),
			PasswordHash: "hash",
			Role:         role,
			PlanType:     constants.PlanBasic,
			Status:       constants.UserStatusActive,
			TenantID:     &tenant.ID,
		}
		if err := repo.Create(user); err != nil {
			t.Fatalf("create user failed: %v", err)
		}
	}

	count, err := repo.CountByTenant(tenant.ID)
	if err != nil || count != 3 {
		t.Fatalf("count by tenant want 3 got %d err=%v", count, err)
	}
	_, total, err := repo.List(UserListFilter{Role: constants.RoleStudent, TenantID: &tenant.ID})
	if err != nil || total != 2 {
		t.Fatalf("role filter want 2 got %d err=%v", total, err)
	}

	if err := repo.UpdateStatus(1, " Disabled "); err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	disabled, _ := repo.GetByID(1)
	if disabled.TokenVersion != 1 {
		t.Fatalf("disabling should revoke tokens, version=%d", disabled.TokenVersion)
	}

	found, err := tenantRepo.GetBySlug("NORTH-HIGH")
	if err != nil || found == nil || found.ID != tenant.ID {
		t.Fatalf("get tenant by slug failed: %+v err=%v", found, err)
	}
}

func TestEmailSubscriptionRepositoryCountByStatus(t *testing.T) {
	repo := NewEmailSubscriptionRepository(setupUserRepositoryTest(t))
	now := time.Now()
	rows := []models.EmailSubscription{
		{Email: "a@example.com", Status: constants.SubscriptionStatusSubscribed, UnsubscribeToken: "t-a", SubscribedAt: now},
		{Email: "b@example.com", Status: constants.SubscriptionStatusSubscribed, UnsubscribeToken: "t-b", SubscribedAt: now},
		{Email: "c@example.com", Status: constants.SubscriptionStatusUnsubscribed, UnsubscribeToken: "t-c", SubscribedAt: now},
	}
	for i := range rows {
		if err := repo.Create(&rows[i]); err != nil {
			t.Fatalf("create subscription failed: %v", err)
		}
	}

	counts, err := repo.CountByStatus()
	if err != nil {
		t.Fatalf("count by status failed: %v", err)
	}
	if counts[constants.SubscriptionStatusSubscribed] != 2 || counts[constants.SubscriptionStatusUnsubscribed] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
	byToken, err := repo.GetByToken("t-c")
	if err != nil || byToken == nil || byToken.Email != "c@example.com" {
		t.Fatalf("get by token failed: %+v err=%v", byToken, err)
	}
	if empty, _ := repo.GetByToken("  "); empty != nil {
		t.Fatalf("blank token should not match")
	}
}
