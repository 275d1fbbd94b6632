package public

import (
	"time"

	"github.com/prepwise-next/internal/cache"
	"github.com/prepwise-next/internal/constants"
	"github.com/prepwise-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

const (
	publicConfigCacheKey = "public:config"
	publicConfigCacheTTL = 60 * time.Second
)

// GetConfig 获取前台公开配置
func (h *Handler) GetConfig(c *gin.Context) {
	var cached map[string]interface{}
	if hit, err := cache.GetJSON(c.Request.Context(), publicConfigCacheKey, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	data := map[string]interface{}{
		"languages": constants.SupportedLocales,
		"plans":     []string{constants.PlanFree, constants.PlanBasic, constants.PlanPro, constants.PlanEnterprise},
	}
	if h.CaptchaService != nil {
		data["captcha"] = h.CaptchaService.GetPublicSetting()
	}
	if h.Config != nil {
		data["registration"] = map[string]interface{}{
			"allow_trial": h.Config.RBAC.AllowTrial,
		}
	}

	_ = cache.SetJSON(c.Request.Context(), publicConfigCacheKey, data, publicConfigCacheTTL)
	response.Success(c, data)
}
