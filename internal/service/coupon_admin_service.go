package service

import (
	"strings"
	"time"

	"github.com/prepwise-next/internal/config"
	"github.com/prepwise-next/internal/logger"
	"github.com/prepwise-next/internal/models"
	"github.com/prepwise-next/internal/repository"
)

// CouponDataError 录入数据违规，携带全部违规项
type CouponDataError struct {
	Violations []string
}

func (e *CouponDataError) Error() string {
	return strings.Join(e.Violations, "; ")
}

// Is 使 errors.Is(err, ErrCouponInvalid) 成立
func (e *CouponDataError) Is(target error) bool {
	return target == ErrCouponInvalid
}

// SaveCouponInput 创建或更新优惠券输入
type SaveCouponInput struct {
	CouponDataInput
	IsActive *bool
}

// CouponAdminService 优惠券管理服务
type CouponAdminService struct {
	cfg        *config.CouponConfig
	repo       repository.CouponRepository
	usageRepo  repository.CouponUsageRepository
	knownRoles []string
	now        func() time.Time
}

// NewCouponAdminService 创建优惠券管理服务
func NewCouponAdminService(cfg *config.CouponConfig, repo repository.CouponRepository, usageRepo repository.CouponUsageRepository, knownRoles []string) *CouponAdminService {
	return &CouponAdminService{
		cfg:        cfg,
		repo:       repo,
		usageRepo:  usageRepo,
		knownRoles: append([]string(nil), knownRoles...),
		now:        time.Now,
	}
}

// Policy 返回当前录入规则
func (s *CouponAdminService) Policy() CouponPolicy {
	var cfg config.CouponConfig
	if s.cfg != nil {
		cfg = *s.cfg
	}
	return CouponPolicyFromConfig(cfg, s.knownRoles)
}

// ValidateData 校验录入数据并返回全部违规项
func (s *CouponAdminService) ValidateData(input CouponDataInput) []string {
	return ValidateCouponData(input, s.Policy(), s.now())
}

// Create 创建优惠券
func (s *CouponAdminService) Create(input SaveCouponInput, adminID uint) (*models.Coupon, error) {
	if violations := s.ValidateData(input.CouponDataInput); len(violations) > 0 {
		return nil, &CouponDataError{Violations: violations}
	}
	code := repository.NormalizeCouponCode(input.Code)
	taken, err := s.repo.CodeTaken(code, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrCouponCodeExists
	}

	coupon := &models.Coupon{}
	applyCouponInput(coupon, input)
	coupon.Code = code
	if adminID != 0 {
		coupon.CreatedByAdminID = &adminID
	}
	if err := s.repo.Create(coupon); err != nil {
		return nil, err
	}
	logger.Infow("coupon_created", "coupon_id", coupon.ID, "code", coupon.Code, "admin_id", adminID)
	return coupon, nil
}

// Update 更新优惠券，已使用次数不受影响
func (s *CouponAdminService) Update(id uint, input SaveCouponInput) (*models.Coupon, error) {
	coupon, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	violations := s.ValidateData(input.CouponDataInput)
	if input.UsageLimit != nil && *input.UsageLimit < coupon.UsedCount {
		violations = append(violations, "Usage limit cannot be lower than the current usage count")
	}
	if len(violations) > 0 {
		return nil, &CouponDataError{Violations: violations}
	}
	code := repository.NormalizeCouponCode(input.Code)
	if code != coupon.Code {
		taken, err := s.repo.CodeTaken(code, coupon.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrCouponCodeExists
		}
	}

	applyCouponInput(coupon, input)
	coupon.Code = code
	if err := s.repo.Update(coupon); err != nil {
		return nil, err
	}
	logger.Infow("coupon_updated", "coupon_id", coupon.ID, "code", coupon.Code)
	return coupon, nil
}

// SetActive 启用或停用优惠券
func (s *CouponAdminService) SetActive(id uint, active bool) (*models.Coupon, error) {
	coupon, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	if coupon.IsActive == active {
		return coupon, nil
	}
	coupon.IsActive = active
	if err := s.repo.Update(coupon); err != nil {
		return nil, err
	}
	logger.Infow("coupon_active_changed", "coupon_id", coupon.ID, "is_active", active)
	return coupon, nil
}

// Delete 删除优惠券，使用记录保留
func (s *CouponAdminService) Delete(id uint) error {
	coupon, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if coupon == nil {
		return ErrCouponNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	logger.Infow("coupon_deleted", "coupon_id", id, "code", coupon.Code)
	return nil
}

// Get 获取优惠券详情
func (s *CouponAdminService) Get(id uint) (*models.Coupon, error) {
	coupon, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	return coupon, nil
}

// List 获取优惠券列表
func (s *CouponAdminService) List(filter repository.CouponListFilter) ([]models.Coupon, int64, error) {
	return s.repo.List(filter)
}

// ListUsages 获取使用记录
func (s *CouponAdminService) ListUsages(filter repository.CouponUsageListFilter) ([]models.CouponUsage, int64, error) {
	return s.usageRepo.List(filter)
}

// Stats 汇总单张优惠券核销数据
func (s *CouponAdminService) Stats(id uint) (*repository.CouponUsageStats, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	return s.usageRepo.StatsByCoupon(id)
}

// GenerateCodes 批量生成未被占用的优惠码
func (s *CouponAdminService) GenerateCodes(options CouponCodeOptions, count int) ([]string, error) {
	if count <= 0 {
		count = 1
	}
	maxBatch, maxCollisions := 100, 20
	if s.cfg != nil {
		if s.cfg.GenerateMaxBatch > 0 {
			maxBatch = s.cfg.GenerateMaxBatch
		}
		if s.cfg.GenerateMaxCollisions > 0 {
			maxCollisions = s.cfg.GenerateMaxCollisions
		}
	}
	if count > maxBatch {
		return nil, ErrCouponBatchSizeExceed
	}

	codes := make([]string, 0, count)
	seen := make(map[string]struct{}, count)
	collisions := 0
	for len(codes) < count {
		code, err := GenerateCouponCode(options)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[code]; !dup {
			taken, err := s.repo.CodeTaken(code, 0)
			if err != nil {
				return nil, err
			}
			if !taken {
				seen[code] = struct{}{}
				codes = append(codes, code)
				continue
			}
		}
		collisions++
		if collisions > maxCollisions {
			return nil, ErrCouponCodeExhausted
		}
	}
	return codes, nil
}

// DefaultCodeOptions 返回配置中的默认生成参数
func (s *CouponAdminService) DefaultCodeOptions() CouponCodeOptions {
	if s.cfg == nil {
		return CouponCodeOptions{Length: defaultCouponCodeSize, IncludeLetters: true, IncludeNumbers: true, ExcludeSimilar: true}
	}
	return CouponCodeOptionsFromConfig(s.cfg.Generator)
}

func applyCouponInput(coupon *models.Coupon, input SaveCouponInput) {
	coupon.DiscountType = strings.ToLower(strings.TrimSpace(input.DiscountType))
	coupon.Value = models.NewMoneyFromDecimal(input.Value.Decimal)
	coupon.MinAmount = input.MinAmount
	coupon.MaxDiscount = input.MaxDiscount
	coupon.UsageLimit = input.UsageLimit
	coupon.UserUsageLimit = input.UserUsageLimit
	if input.ValidFrom != nil {
		coupon.ValidFrom = *input.ValidFrom
	}
	if input.ValidUntil != nil {
		coupon.ValidUntil = *input.ValidUntil
	}
	coupon.EligibleRoles = normalizeStringList(input.EligibleRoles, true)
	coupon.EligiblePlans = normalizeStringList(input.EligiblePlans, true)
	coupon.Description = strings.TrimSpace(input.Description)
	if input.IsActive != nil {
		coupon.IsActive = *input.IsActive
	} else if coupon.ID == 0 {
		coupon.IsActive = true
	}
}

func normalizeStringList(values []string, lower bool) models.StringArray {
	if len(values) == 0 {
		return nil
	}
	out := make(models.StringArray, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if lower {
			v = strings.ToLower(v)
		}
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
