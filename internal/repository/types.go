package repository

import "time"

// CouponListFilter 查询优惠券列表的过滤条件
type CouponListFilter struct {
	Page         int
	PageSize     int
	Keyword      string
	DiscountType string
	IsActive     *bool
	EligibleRole string
	EligiblePlan string
	// ValidAt 非空时仅返回该时间点处于有效期内的优惠券
	ValidAt *time.Time
}

// CouponUsageListFilter 查询优惠券使用记录列表的过滤条件
type CouponUsageListFilter struct {
	Page        int
	PageSize    int
	CouponID    uint
	UserID      uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// CouponUsageStats 单张优惠券的核销统计
type CouponUsageStats struct {
	Redemptions    int64      `json:"redemptions"`
	UniqueUsers    int64      `json:"unique_users"`
	TotalDiscount  string     `json:"total_discount"`
	TotalOriginal  string     `json:"total_original"`
	TotalFinal     string     `json:"total_final"`
	LastRedeemedAt *time.Time `json:"last_redeemed_at"`
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Status      string
	Role        string
	TenantID    *uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// TenantListFilter 查询租户列表的过滤条件
type TenantListFilter struct {
	Page     int
	PageSize int
	Keyword  string
	Status   string
}

// EmailSubscriptionListFilter 查询邮件订阅列表的过滤条件
type EmailSubscriptionListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Status      string
	Source      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// AuthzAuditLogListFilter 查询权限审计日志列表的过滤条件
type AuthzAuditLogListFilter struct {
	Page            int
	PageSize        int
	OperatorAdminID uint
	TargetAdminID   uint
	TargetUserID    uint
	Action          string
	Role            string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}
