package router

import (
	"errors"
	"strings"

	"github.com/prepwise-next/internal/constants"
	"github.com/prepwise-next/internal/http/response"
	"github.com/prepwise-next/internal/i18n"
	"github.com/prepwise-next/internal/logger"
	"github.com/prepwise-next/internal/metrics"
	"github.com/prepwise-next/internal/rbac"
	"github.com/prepwise-next/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	tenantIDHeader        = "X-Tenant-ID"
	rbacSubjectContextKey = "rbac_subject"
	rbacAccessContextKey  = "rbac_access_context"
)

// PermissionOptions 权限中间件选项
type PermissionOptions struct {
	AllowTrial bool
	// TenantParam 从路由参数读取目标租户，为空时读取 X-Tenant-ID 请求头
	TenantParam string
}

// RequirePermission 用户侧资源权限中间件，需在 UserJWTAuthMiddleware 之后使用
func RequirePermission(userService *service.UserService, resource, action string, opts PermissionOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userService == nil || userService.Table() == nil {
			logger.Errorw("rbac_table_unavailable", "resource", resource, "action", action)
			response.Forbidden(c, i18n.T(i18n.ResolveLocale(c), "error.forbidden"))
			c.Abort()
			return
		}
		userID := contextUint(c, userIDContextKey)
		if userID == 0 {
			response.Unauthorized(c, i18n.T(i18n.ResolveLocale(c), "error.unauthorized"))
			c.Abort()
			return
		}
		_, subject, err := userService.Subject(userID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				response.Unauthorized(c, i18n.T(i18n.ResolveLocale(c), "error.token_invalid"))
			} else {
				logger.Errorw("rbac_subject_load_failed", "user_id", userID, "error", err)
				response.Error(c, response.CodeInternal, i18n.T(i18n.ResolveLocale(c), "error.user_fetch_failed"))
			}
			c.Abort()
			return
		}

		accessCtx := rbac.AccessContext{
			constants.AccessContextTenantID:   resolveTargetTenant(c, subject, opts.TenantParam),
			constants.AccessContextAllowTrial: opts.AllowTrial,
		}
		allowed := userService.Table().HasPermission(subject, resource, action, accessCtx)
		metrics.RecordPermissionCheck(allowed)
		if !allowed {
			logger.Warnw("rbac_permission_denied",
				"user_id", userID,
				"role", subject.Role,
				"resource", resource,
				"action", action,
				"tenant_id", accessCtx[constants.AccessContextTenantID],
				"path", c.Request.URL.Path,
			)
			response.Forbidden(c, i18n.T(i18n.ResolveLocale(c), "error.forbidden"))
			c.Abort()
			return
		}

		c.Set(rbacSubjectContextKey, subject)
		c.Set(rbacAccessContextKey, accessCtx)
		c.Next()
	}
}

// resolveTargetTenant 依次取路由参数、请求头与主体所属租户
func resolveTargetTenant(c *gin.Context, subject *rbac.Subject, param string) string {
	if param = strings.TrimSpace(param); param != "" {
		if value := strings.TrimSpace(c.Param(param)); value != "" {
			return value
		}
	}
	if value := strings.TrimSpace(c.GetHeader(tenantIDHeader)); value != "" {
		return value
	}
	if subject != nil {
		return subject.TenantID
	}
	return ""
}
