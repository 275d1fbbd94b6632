package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/prepwise-next/internal/models"

	"gorm.io/gorm"
)

// CouponRepository 优惠券数据访问接口
type CouponRepository interface {
	GetByID(id uint) (*models.Coupon, error)
	GetByCode(code string) (*models.Coupon, error)
	// CodeTaken 判断优惠码是否已被占用（含已删除记录），excludeID 为自身 ID
	CodeTaken(code string, excludeID uint) (bool, error)
	Create(coupon *models.Coupon) error
	Update(coupon *models.Coupon) error
	Delete(id uint) error
	List(filter CouponListFilter) ([]models.Coupon, int64, error)
	DeactivateExpired(now time.Time) (int64, error)
	// Redeem 在同一事务中校验次数、递增使用次数并追加使用记录，apply 失败时整体回滚
	Redeem(usage *models.CouponUsage, apply RedeemHook) error
}

// RedeemHook 核销事务内执行的附加写入，tx 为空表示调用方需使用自身连接
type RedeemHook func(tx *gorm.DB) error

// NormalizeCouponCode 优惠码统一去空格并转大写
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// GormCouponRepository GORM 实现
type GormCouponRepository struct {
	db *gorm.DB
}

// NewCouponRepository 创建优惠券仓库
func NewCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// GetByID 根据ID获取优惠券
func (r *GormCouponRepository) GetByID(id uint) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.First(&coupon, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// GetByCode 根据优惠码获取优惠券（不区分大小写，走唯一索引）
func (r *GormCouponRepository) GetByCode(code string) (*models.Coupon, error) {
	normalized := NormalizeCouponCode(code)
	if normalized == "" {
		return nil, nil
	}
	var coupon models.Coupon
	if err := r.db.Where("code = ?", normalized).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// CodeTaken 软删除的优惠券仍占用唯一索引
func (r *GormCouponRepository) CodeTaken(code string, excludeID uint) (bool, error) {
	normalized := NormalizeCouponCode(code)
	if normalized == "" {
		return false, nil
	}
	var count int64
	query := r.db.Unscoped().Model(&models.Coupon{}).Where("code = ?", normalized)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create 创建优惠券
func (r *GormCouponRepository) Create(coupon *models.Coupon) error {
	coupon.Code = NormalizeCouponCode(coupon.Code)
	return r.db.Create(coupon).Error
}

// Update 更新优惠券，used_count 只由核销递增
func (r *GormCouponRepository) Update(coupon *models.Coupon) error {
	coupon.Code = NormalizeCouponCode(coupon.Code)
	return r.db.Omit("used_count", "created_at").Save(coupon).Error
}

// Delete 删除优惠券（软删除，使用记录保留）
func (r *GormCouponRepository) Delete(id uint) error {
	return r.db.Delete(&models.Coupon{}, id).Error
}

// List 获取优惠券列表
func (r *GormCouponRepository) List(filter CouponListFilter) ([]models.Coupon, int64, error) {
	query := r.db.Model(&models.Coupon{})

	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		condition, argCount := buildKeywordLikeCondition(r.db, "code", "description")
		query = query.Where(condition, repeatLikeArgs("%"+keyword+"%", argCount)...)
	}
	if filter.DiscountType != "" {
		query = query.Where("discount_type = ?", filter.DiscountType)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.EligibleRole != "" {
		query = query.Where("eligible_roles LIKE ?", jsonArrayElementLike(strings.ToLower(strings.TrimSpace(filter.EligibleRole))))
	}
	if filter.EligiblePlan != "" {
		query = query.Where("eligible_plans LIKE ?", jsonArrayElementLike(strings.ToLower(strings.TrimSpace(filter.EligiblePlan))))
	}
	if filter.ValidAt != nil {
		query = query.Where("valid_from <= ? AND valid_until >= ?", *filter.ValidAt, *filter.ValidAt)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	coupons := make([]models.Coupon, 0)
	if err := query.Order("id desc").Find(&coupons).Error; err != nil {
		return nil, 0, err
	}
	return coupons, total, nil
}

// DeactivateExpired 将已过期但仍启用的优惠券置为停用
func (r *GormCouponRepository) DeactivateExpired(now time.Time) (int64, error) {
	result := r.db.Model(&models.Coupon{}).
		Where("is_active = ? AND valid_until < ?", true, now).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

// Redeem 原子核销：先条件递增 used_count 锁定优惠券行，再复核单用户次数并追加使用记录
func (r *GormCouponRepository) Redeem(usage *models.CouponUsage, apply RedeemHook) error {
	if usage == nil {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Coupon{}).
			Where("id = ?", usage.CouponID).
			Where("usage_limit IS NULL OR used_count < usage_limit").
			UpdateColumn("used_count", gorm.Expr("used_count + ?", 1))
		if result.Error != nil {
			return result.Error
		}

		var coupon models.Coupon
		if err := tx.First(&coupon, usage.CouponID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCouponGone
			}
			return err
		}
		if result.RowsAffected == 0 {
			return ErrCouponUsageExhausted
		}

		if coupon.UserUsageLimit != nil {
			var count int64
			if err := tx.Model(&models.CouponUsage{}).
				Where("coupon_id = ? AND user_id = ?", coupon.ID, usage.UserID).
				Count(&count).Error; err != nil {
				return err
			}
			if count >= int64(*coupon.UserUsageLimit) {
				return ErrCouponUserLimitReached
			}
		}

		usage.CouponCode = coupon.Code
		if err := tx.Create(usage).Error; err != nil {
			return err
		}
		if apply != nil {
			return apply(tx)
		}
		return nil
	})
}
