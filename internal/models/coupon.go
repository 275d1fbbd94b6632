package models

import (
	"time"

	"gorm.io/gorm"
)

// Coupon 优惠券
type Coupon struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                 // 主键
	Code             string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`    // 优惠码（统一大写存储）
	DiscountType     string         `gorm:"type:varchar(32);not null" json:"discount_type"`       // 类型（percentage/fixed/trial_extension/upgrade_promo）
	Value            Money          `gorm:"type:decimal(20,2);not null" json:"value"`             // 数值（百分比、固定金额或试用天数）
	MinAmount        *Money         `gorm:"type:decimal(20,2)" json:"min_amount"`                 // 最低消费金额
	MaxDiscount      *Money         `gorm:"type:decimal(20,2)" json:"max_discount"`               // 最大优惠金额
	UsageLimit       *int           `json:"usage_limit"`                                          // 总使用上限
	UserUsageLimit   *int           `json:"user_usage_limit"`                                     // 每人使用上限
	UsedCount        int            `gorm:"not null;default:0" json:"used_count"`                 // 已使用次数
	IsActive         bool           `gorm:"not null;index" json:"is_active"`                      // 是否启用
	ValidFrom        time.Time      `gorm:"index;not null" json:"valid_from"`                     // 生效时间
	ValidUntil       time.Time      `gorm:"index;not null" json:"valid_until"`                    // 失效时间
	EligibleRoles    StringArray    `gorm:"type:json" json:"eligible_roles"`                      // 适用角色
	EligiblePlans    StringArray    `gorm:"type:json" json:"eligible_plans"`                      // 适用套餐
	Description      string         `gorm:"type:text" json:"description"`                         // 描述
	CreatedByAdminID *uint          `gorm:"index" json:"created_by_admin_id,omitempty"`           // 创建人
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                              // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                              // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                       // 软删除时间
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}
