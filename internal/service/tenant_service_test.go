package service

import (
	"errors"
	"testing"

	"github.com/prepwise-next/internal/constants"
	"github.com/prepwise-next/internal/models"
	"github.com/prepwise-next/internal/repository"
)

func setupTenantServiceTest(t *testing.T) (*TenantService, *repository.GormUserRepository) {
	t.Helper()
	db := openServiceTestDB(t, "tenant_service_test", &models.Tenant{}, &models.User{})
	userRepo := repository.NewUserRepository(db)
	return NewTenantService(repository.NewTenantRepository(db), userRepo), userRepo
}

func TestTenantCreateNormalizesAndRejectsDuplicates(t *testing.T) {
	svc, _ := setupTenantServiceTest(t)

	tenant, err := svc.Create(SaveTenantInput{Slug: " North-High ", Name: " North High "})
	if err != nil {
		t.Fatalf("create tenant failed: %v", err)
	}
	if tenant.Slug != "north-high" || tenant.Name != "North High" || tenant.Status != constants.TenantStatusActive {
		t.Fatalf("unexpected tenant: %+v", tenant)
	}
	if _, err := svc.Create(SaveTenantInput{Slug: "NORTH-HIGH", Name: "Dup"}); !errors.Is(err, ErrTenantSlugExists) {
		t.Fatalf("expected slug exists, got %v", err)
	}

	invalid := []SaveTenantInput{
		{Slug: "x", Name: "Too short"},
		{Slug: "bad slug", Name: "Space"},
		{Slug: "-leading", Name: "Dash"},
		{Slug: "valid-slug", Name: "  "},
		{Slug: "valid-slug", Name: "Status", Status: "archived"},
	}
	for _, input := range invalid {
		if _, err := svc.Create(input); !errors.Is(err, ErrTenantInvalid) {
			t.Fatalf("expected invalid tenant for %+v, got %v", input, err)
		}
	}
}

func TestTenantUpdateAndGet(t *testing.T) {
	svc, userRepo := setupTenantServiceTest(t)
	first, _ := svc.Create(SaveTenantInput{Slug: "alpha", Name: "Alpha"})
	second, _ := svc.Create(SaveTenantInput{Slug: "beta", Name: "Beta"})

	if _, err := svc.Update(second.ID, SaveTenantInput{Slug: "alpha", Name: "Beta"}); !errors.Is(err, ErrTenantSlugExists) {
		t.Fatalf("expected slug exists on rename, got %v", err)
	}
	updated, err := svc.Update(second.ID, SaveTenantInput{Slug: "beta", Name: "Beta Academy", Status: "suspended"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Beta Academy" || updated.Status != constants.TenantStatusSuspended {
		t.Fatalf("unexpected update: %+v", updated)
	}
	kept, err := svc.Update(second.ID, SaveTenantInput{Slug: "beta", Name: "Beta Academy"})
	if err != nil {
		t.Fatalf("update without status failed: %v", err)
	}
	if kept.Status != constants.TenantStatusSuspended {
		t.Fatalf("blank status should keep current, got %s", kept.Status)
	}
	if _, err := svc.Update(9999, SaveTenantInput{Slug: "gamma", Name: "Gamma"}); !errors.Is(err, ErrTenantNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	for _, email := range []string{"a@example.com", "b@example.com"} {
		if err := userRepo.Create(&models.User{Email: email, PasswordHash: "hash", Role: constants.RoleStudent, TenantID: &first.ID}); err != nil {
			t.Fatalf("create user failed: %v", err)
		}
	}
	detail, err := svc.Get(first.ID)
	if err != nil {
		t.Fatalf("get tenant failed: %v", err)
	}
	if detail.UserCount != 2 || detail.Slug != "alpha" {
		t.Fatalf("unexpected detail: %+v", detail)
	}

	list, total, err := svc.List(repository.TenantListFilter{Status: constants.TenantStatusActive})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].ID != first.ID {
		t.Fatalf("unexpected list: total=%d", total)
	}
}
