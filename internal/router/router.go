package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prepwise-next/internal/authz"
	"github.com/prepwise-next/internal/cache"
	"github.com/prepwise-next/internal/config"
	"github.com/prepwise-next/internal/constants"
	adminhandlers "github.com/prepwise-next/internal/http/handlers/admin"
	publichandlers "github.com/prepwise-next/internal/http/handlers/public"
	"github.com/prepwise-next/internal/http/response"
	"github.com/prepwise-next/internal/logger"
	"github.com/prepwise-next/internal/metrics"
	"github.com/prepwise-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "pw"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}
	allowTrial := cfg.RBAC.AllowTrial

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))
	if cfg.Metrics.Enabled {
		r.Use(metrics.GinMiddleware())
		metricsPath := strings.TrimSpace(cfg.Metrics.Path)
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		r.GET(metricsPath, metrics.Handler())
	}

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/config", publicHandler.GetConfig)
			public.GET("/captcha/image", publicHandler.GetImageCaptcha)
			public.POST("/subscriptions", publicHandler.Subscribe)
			public.POST("/subscriptions/unsubscribe", publicHandler.Unsubscribe)
			public.GET("/subscriptions/unsubscribe", publicHandler.Unsubscribe)
		}

		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetCurrentUser)
			user.PUT("/me/profile", publicHandler.UpdateUserProfile)
			user.PUT("/me/password", publicHandler.ChangeUserPassword)
			user.GET("/me/permissions", publicHandler.GetMyPermissions)
			user.POST("/me/permissions/check", publicHandler.CheckPermission)
			user.GET("/me/navigation", publicHandler.GetMyNavigation)
			user.GET("/me/route-access", publicHandler.CheckRouteAccess)
			user.GET("/me/coupon-usages", publicHandler.ListMyCouponUsages)

			redeem := RequirePermission(c.UserService, constants.ResourceCoupons, constants.ActionRedeem, PermissionOptions{AllowTrial: allowTrial})
			user.POST("/coupons/validate", redeem, publicHandler.ValidateCoupon)
			user.POST("/coupons/redeem", redeem, publicHandler.RedeemCoupon)

			user.GET("/tenant/members",
				RequirePermission(c.UserService, constants.ResourceUsers, constants.ActionRead, PermissionOptions{AllowTrial: allowTrial}),
				publicHandler.ListTenantMembers,
			)
			user.PATCH("/tenant/members/:id/role",
				RequirePermission(c.UserService, constants.ResourceUsers, constants.ActionUpdate, PermissionOptions{AllowTrial: allowTrial}),
				publicHandler.ChangeMemberRole,
			)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.PUT("/password", adminHandler.UpdateAdminPassword) // 修改密码

				// 权限管理
				authorized.GET("/authz/me", adminHandler.GetAuthzMe)
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.GET("/authz/user-roles", adminHandler.ListUserRoleMatrix)
				authorized.GET("/authz/admins", adminHandler.ListAuthzAdmins)
				authorized.GET("/authz/audit-logs", adminHandler.ListAuthzAuditLogs)
				authorized.POST("/authz/admins", adminHandler.CreateAuthzAdmin)
				authorized.PUT("/authz/admins/:id", adminHandler.UpdateAuthzAdmin)
				authorized.DELETE("/authz/admins/:id", adminHandler.DeleteAuthzAdmin)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
				authorized.POST("/authz/roles", adminHandler.CreateAuthzRole)
				authorized.DELETE("/authz/roles/:role", adminHandler.DeleteAuthzRole)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
				authorized.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
				authorized.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
				authorized.GET("/authz/admins/:id/roles", adminHandler.GetAuthzAdminRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAuthzAdminRoles)

				// 优惠券
				authorized.GET("/coupons", adminHandler.ListCoupons)
				authorized.POST("/coupons", adminHandler.CreateCoupon)
				authorized.POST("/coupons/generate-code", adminHandler.GenerateCouponCodes)
				authorized.POST("/coupons/validate-data", adminHandler.ValidateCouponData)
				authorized.GET("/coupons/:id", adminHandler.GetCoupon)
				authorized.PUT("/coupons/:id", adminHandler.UpdateCoupon)
				authorized.DELETE("/coupons/:id", adminHandler.DeleteCoupon)
				authorized.PATCH("/coupons/:id/status", adminHandler.UpdateCouponStatus)
				authorized.GET("/coupons/:id/usages", adminHandler.ListCouponUsages)
				authorized.GET("/coupons/:id/stats", adminHandler.GetCouponStats)
				authorized.GET("/coupon-usages", adminHandler.ListCouponUsages)

				// 邮件订阅
				authorized.GET("/subscriptions", adminHandler.ListSubscriptions)
				authorized.GET("/subscriptions/stats", adminHandler.GetSubscriptionStats)
				authorized.GET("/subscriptions/export", adminHandler.ExportSubscriptions)
				authorized.PATCH("/subscriptions/:id/status", adminHandler.UpdateSubscriptionStatus)
				authorized.DELETE("/subscriptions/:id", adminHandler.DeleteSubscription)

				// 用户管理
				authorized.GET("/users", adminHandler.ListUsers)
				authorized.GET("/users/:id", adminHandler.GetUser)
				authorized.PATCH("/users/:id/role", adminHandler.UpdateUserRole)
				authorized.PATCH("/users/:id/status", adminHandler.UpdateUserStatus)
				authorized.GET("/users/:id/coupon-usages", adminHandler.ListUserCouponUsages)

				// 租户管理
				authorized.GET("/tenants", adminHandler.ListTenants)
				authorized.POST("/tenants", adminHandler.CreateTenant)
				authorized.GET("/tenants/:id", adminHandler.GetTenant)
				authorized.PUT("/tenants/:id", adminHandler.UpdateTenant)

				// 设置
				authorized.GET("/settings/smtp", adminHandler.GetSMTPSettings)
				authorized.POST("/settings/smtp/test", adminHandler.TestSMTPSettings)
				authorized.GET("/settings/captcha", adminHandler.GetCaptchaSettings)
				authorized.GET("/settings/rbac/roles", adminHandler.GetRBACRoles)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
