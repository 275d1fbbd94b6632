package service

import (
	"regexp"
	"strings"

	"github.com/prepwise-next/internal/constants"
	"github.com/prepwise-next/internal/logger"
	"github.com/prepwise-next/internal/models"
	"github.com/prepwise-next/internal/repository"
)

var tenantSlugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}$`)

// SaveTenantInput 创建或更新租户
type SaveTenantInput struct {
	Slug   string
	Name   string
	Status string
}

// TenantService 租户服务
type TenantService struct {
	repo     repository.TenantRepository
	userRepo repository.UserRepository
}

// NewTenantService 创建租户服务
func NewTenantService(repo repository.TenantRepository, userRepo repository.UserRepository) *TenantService {
	return &TenantService{repo: repo, userRepo: userRepo}
}

// TenantDetail 租户详情
type TenantDetail struct {
	models.Tenant
	UserCount int64 `json:"user_count"`
}

// Create 创建租户
func (s *TenantService) Create(input SaveTenantInput) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	if err := applyTenantInput(tenant, input); err != nil {
		return nil, err
	}
	exist, err := s.repo.GetBySlug(tenant.Slug)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrTenantSlugExists
	}
	if err := s.repo.Create(tenant); err != nil {
		return nil, err
	}
	logger.Infow("tenant_created", "tenant_id", tenant.ID, "slug", tenant.Slug)
	return tenant, nil
}

// Update 更新租户
func (s *TenantService) Update(id uint, input SaveTenantInput) (*models.Tenant, error) {
	tenant, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}
	previousSlug := tenant.Slug
	if err := applyTenantInput(tenant, input); err != nil {
		return nil, err
	}
	if tenant.Slug != previousSlug {
		exist, err := s.repo.GetBySlug(tenant.Slug)
		if err != nil {
			return nil, err
		}
		if exist != nil && exist.ID != tenant.ID {
			return nil, ErrTenantSlugExists
		}
	}
	if err := s.repo.Update(tenant); err != nil {
		return nil, err
	}
	logger.Infow("tenant_updated", "tenant_id", tenant.ID, "status", tenant.Status)
	return tenant, nil
}

// Get 获取租户详情
func (s *TenantService) Get(id uint) (*TenantDetail, error) {
	tenant, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}
	count, err := s.userRepo.CountByTenant(id)
	if err != nil {
		return nil, err
	}
	return &TenantDetail{Tenant: *tenant, UserCount: count}, nil
}

// List 租户列表
func (s *TenantService) List(filter repository.TenantListFilter) ([]models.Tenant, int64, error) {
	return s.repo.List(filter)
}

func applyTenantInput(tenant *models.Tenant, input SaveTenantInput) error {
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	name := strings.TrimSpace(input.Name)
	if !tenantSlugPattern.MatchString(slug) || name == "" || len([]rune(name)) > 200 {
		return ErrTenantInvalid
	}
	status := strings.ToLower(strings.TrimSpace(input.Status))
	switch status {
	case "":
		if tenant.Status == "" {
			status = constants.TenantStatusActive
		} else {
			status = tenant.Status
		}
	case constants.TenantStatusActive, constants.TenantStatusSuspended:
	default:
		return ErrTenantInvalid
	}
	tenant.Slug = slug
	tenant.Name = name
	tenant.Status = status
	return nil
}
