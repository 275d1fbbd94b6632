package models

import "time"

// CouponUsage 优惠券使用记录（只追加）
type CouponUsage struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                         // 主键
	RedemptionNo   string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"redemption_no"`   // 核销编号
	CouponID       uint      `gorm:"index;not null" json:"coupon_id"`                              // 优惠券ID
	CouponCode     string    `gorm:"type:varchar(64);index;not null" json:"coupon_code"`           // 优惠码
	UserID         uint      `gorm:"index;not null" json:"user_id"`                                // 用户ID
	UserEmail      string    `gorm:"type:varchar(255);not null;default:''" json:"user_email"`      // 用户邮箱
	DiscountAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 优惠金额
	OriginalAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"original_amount"` // 原价
	FinalAmount    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"final_amount"`    // 实付金额
	PlanType       string    `gorm:"type:varchar(32);not null;default:''" json:"plan_type"`        // 套餐类型
	Metadata       JSON      `gorm:"type:json" json:"metadata,omitempty"`                          // 请求元数据
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                                      // 核销时间
}

// TableName 指定表名
func (CouponUsage) TableName() string {
	return "coupon_usages"
}
