package constants

// 用户角色常量
const (
	RoleSuperAdmin  = "super_admin"
	RoleAdmin       = "admin"
	RoleTenantAdmin = "tenant_admin"
	RoleInstructor  = "instructor"
	RoleStudent     = "student"
	RoleTrialUser   = "trial_user"
)

// 权限资源常量
const (
	ResourceAll           = "*"
	ResourceDashboard     = "dashboard"
	ResourceExams         = "exams"
	ResourceWellness      = "wellness"
	ResourcePomodoro      = "pomodoro"
	ResourceInsights      = "insights"
	ResourceProfile       = "profile"
	ResourceContent       = "content"
	ResourceProgress      = "student_progress"
	ResourceUsers         = "users"
	ResourceAnalytics     = "analytics"
	ResourceTenants       = "tenants"
	ResourceCoupons       = "coupons"
	ResourceSubscriptions = "subscriptions"
	ResourceSettings      = "settings"
	ResourceBilling       = "billing"
)

// 权限动作常量
const (
	ActionAll    = "*"
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionManage = "manage"
	ActionRedeem = "redeem"
)

// 权限条件键常量
const (
	ConditionOwnTenant    = "own_tenant"
	ConditionSameTenant   = "same_tenant"
	ConditionTenantScoped = "tenant_scoped"
	ConditionLimited      = "limited"
)

// 权限上下文键常量
const (
	AccessContextTenantID   = "tenantId"
	AccessContextAllowTrial = "allowTrial"
)

// 未映射路由策略常量
const (
	UnmappedRouteDeny  = "deny"
	UnmappedRouteAllow = "allow"
)

// 优惠券类型常量
const (
	CouponTypePercentage     = "percentage"
	CouponTypeFixed          = "fixed"
	CouponTypeTrialExtension = "trial_extension"
	CouponTypeUpgradePromo   = "upgrade_promo"
)

// 优惠券存储驱动常量
const (
	CouponStoreDatabase = "database"
	CouponStoreJSON     = "json"
)

// 套餐类型常量
const (
	PlanFree       = "free"
	PlanBasic      = "basic"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 租户状态常量
const (
	TenantStatusActive    = "active"
	TenantStatusSuspended = "suspended"
)

// 邮件订阅状态常量
const (
	SubscriptionStatusSubscribed   = "subscribed"
	SubscriptionStatusUnsubscribed = "unsubscribed"
)

// 邮件订阅来源常量
const (
	SubscriptionSourceWebsite = "website"
	SubscriptionSourceAdmin   = "admin"
	SubscriptionSourceSignup  = "signup"
)

// 验证码提供方常量
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// 验证码校验场景常量
const (
	CaptchaSceneLogin      = "login"
	CaptchaSceneAdminLogin = "admin_login"
	CaptchaSceneRegister   = "register"
)

// 队列常量
const (
	QueueDefault                 = "default"
	QueueCritical                = "critical"
	TaskCouponRedemptionReceipt  = "coupon:redemption_receipt"
	TaskSubscriptionWelcomeEmail = "subscription:welcome_email"
	TaskCouponExpirySweep        = "coupon:expiry_sweep"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "pw"
)

// 站点语言常量
const (
	LocaleZhCN = "zh-CN"
	LocaleZhTW = "zh-TW"
	LocaleEnUS = "en-US"
)

// SupportedLocales 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleZhCN, LocaleZhTW, LocaleEnUS}

// 导出格式常量
const (
	ExportFormatCSV = "csv"
)
