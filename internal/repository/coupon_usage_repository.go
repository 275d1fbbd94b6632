package repository

import (
	"errors"

	"github.com/prepwise-next/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CouponUsageRepository 优惠券使用记录数据访问接口（只追加）
type CouponUsageRepository interface {
	GetByID(id uint) (*models.CouponUsage, error)
	CountByUser(couponID, userID uint) (int64, error)
	List(filter CouponUsageListFilter) ([]models.CouponUsage, int64, error)
	StatsByCoupon(couponID uint) (*CouponUsageStats, error)
}

// GormCouponUsageRepository GORM 实现
type GormCouponUsageRepository struct {
	db *gorm.DB
}

// NewCouponUsageRepository 创建优惠券使用记录仓库
func NewCouponUsageRepository(db *gorm.DB) *GormCouponUsageRepository {
	return &GormCouponUsageRepository{db: db}
}

// GetByID 根据ID获取使用记录
func (r *GormCouponUsageRepository) GetByID(id uint) (*models.CouponUsage, error) {
	var usage models.CouponUsage
	if err := r.db.First(&usage, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &usage, nil
}

// CountByUser 获取用户对某张优惠券的历史核销次数
func (r *GormCouponUsageRepository) CountByUser(couponID, userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.CouponUsage{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// List 获取使用记录
func (r *GormCouponUsageRepository) List(filter CouponUsageListFilter) ([]models.CouponUsage, int64, error) {
	query := r.db.Model(&models.CouponUsage{})
	if filter.CouponID != 0 {
		query = query.Where("coupon_id = ?", filter.CouponID)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	usages := make([]models.CouponUsage, 0)
	if err := query.Order("id desc").Find(&usages).Error; err != nil {
		return nil, 0, err
	}
	return usages, total, nil
}

// StatsByCoupon 汇总单张优惠券的核销数据
func (r *GormCouponUsageRepository) StatsByCoupon(couponID uint) (*CouponUsageStats, error) {
	var row struct {
		Redemptions   int64
		UniqueUsers   int64
		TotalDiscount models.Money
		TotalOriginal models.Money
		TotalFinal    models.Money
	}
	err := r.db.Model(&models.CouponUsage{}).
		Select(
			"COUNT(*) AS redemptions, " +
				"COUNT(DISTINCT user_id) AS unique_users, " +
				"COALESCE(SUM(discount_amount), 0) AS total_discount, " +
				"COALESCE(SUM(original_amount), 0) AS total_original, " +
				"COALESCE(SUM(final_amount), 0) AS total_final",
		).
		Where("coupon_id = ?", couponID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	stats := &CouponUsageStats{
		Redemptions:   row.Redemptions,
		UniqueUsers:   row.UniqueUsers,
		TotalDiscount: row.TotalDiscount.String(),
		TotalOriginal: row.TotalOriginal.String(),
		TotalFinal:    row.TotalFinal.String(),
	}

	var last models.CouponUsage
	if err := r.db.Where("coupon_id = ?", couponID).Order("id desc").First(&last).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	} else {
		stats.LastRedeemedAt = &last.CreatedAt
	}
	return stats, nil
}

// SumMoney 累加金额，供非数据库实现复用
func SumMoney(values ...models.Money) models.Money {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v.Decimal)
	}
	return models.NewMoneyFromDecimal(total)
}
