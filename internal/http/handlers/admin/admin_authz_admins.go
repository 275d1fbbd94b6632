package admin

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/prepwise-next/internal/cache"
	"github.com/prepwise-next/internal/http/response"
	"github.com/prepwise-next/internal/models"

	"github.com/gin-gonic/gin"
)

// 种子脚本创建的平台管理员账号，始终为超级管理员且不可删除
const protectedSuperAdminUsername = "admin"

var (
	errAdminUsernameRequired   = errors.New("username is required")
	errAdminUsernameWhitespace = errors.New("username contains whitespace")
	errAdminUsernameLength     = errors.New("username length out of range")
)

type authzCreateAdminPayload struct {
	Username    string   `json:"username" binding:"required"`
	DisplayName string   `json:"display_name"`
	Password    string   `json:"password" binding:"required"`
	IsSuper     *bool    `json:"is_super"`
	Roles       []string `json:"roles"`
}

type authzUpdateAdminPayload struct {
	Username    *string `json:"username"`
	DisplayName *string `json:"display_name"`
	Password    *string `json:"password"`
	IsSuper     *bool   `json:"is_super"`
}

func isProtectedAdmin(username string) bool {
	return strings.EqualFold(strings.TrimSpace(username), protectedSuperAdminUsername)
}

// CreateAuthzAdmin 创建后台运营账号
func (h *Handler) CreateAuthzAdmin(c *gin.Context) {
	var req authzCreateAdminPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	username, ok := h.claimAdminUsername(c, req.Username, 0, "error.admin_create_failed")
	if !ok {
		return
	}
	hash, ok := h.hashAdminPassword(c, req.Password, "error.admin_create_failed")
	if !ok {
		return
	}

	admin := &models.Admin{
		Username:     username,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		PasswordHash: hash,
		IsSuper:      (req.IsSuper != nil && *req.IsSuper) || isProtectedAdmin(username),
	}
	if err := h.AdminRepo.Create(admin); err != nil {
		respondError(c, response.CodeInternal, "error.admin_create_failed", err)
		return
	}
	if len(req.Roles) > 0 {
		if err := h.AuthzService.SetAdminRoles(admin.ID, req.Roles); err != nil {
			respondAuthzError(c, err)
			return
		}
	}
	_ = cache.SetAdminAuthState(c.Request.Context(), cache.BuildAdminAuthState(admin))

	h.auditAuthz(c, authzChange{
		action: "admin_create",
		target: admin,
		detail: models.JSON{"is_super": admin.IsSuper, "roles": req.Roles},
	})
	response.Success(c, admin)
}

// UpdateAuthzAdmin 修改账号资料；改密码会让该账号已签发的 token 全部失效
func (h *Handler) UpdateAuthzAdmin(c *gin.Context) {
	admin, ok := h.loadTargetAdmin(c, "error.admin_update_failed")
	if !ok {
		return
	}
	var req authzUpdateAdminPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	var changed []string
	if req.Username != nil {
		username, ok := h.claimAdminUsername(c, *req.Username, admin.ID, "error.admin_update_failed")
		if !ok {
			return
		}
		if username != admin.Username {
			admin.Username = username
			changed = append(changed, "username")
		}
	}
	if req.DisplayName != nil {
		if name := strings.TrimSpace(*req.DisplayName); name != admin.DisplayName {
			admin.DisplayName = name
			changed = append(changed, "display_name")
		}
	}
	if req.IsSuper != nil {
		isSuper := *req.IsSuper || isProtectedAdmin(admin.Username)
		if isSuper != admin.IsSuper {
			admin.IsSuper = isSuper
			changed = append(changed, "is_super")
		}
	}
	if req.Password != nil {
		hash, ok := h.hashAdminPassword(c, *req.Password, "error.admin_update_failed")
		if !ok {
			return
		}
		now := time.Now()
		admin.PasswordHash = hash
		admin.TokenVersion++
		admin.TokenInvalidBefore = &now
		changed = append(changed, "password")
	}
	if len(changed) == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	if err := h.AdminRepo.Update(admin); err != nil {
		respondError(c, response.CodeInternal, "error.admin_update_failed", err)
		return
	}
	_ = cache.SetAdminAuthState(c.Request.Context(), cache.BuildAdminAuthState(admin))
	if currentAdminID(c) == admin.ID {
		c.Set("admin_is_super", admin.IsSuper)
	}

	sort.Strings(changed)
	h.auditAuthz(c, authzChange{
		action: "admin_update",
		target: admin,
		detail: models.JSON{"updated_fields": changed, "is_super": admin.IsSuper},
	})
	response.Success(c, admin)
}

// DeleteAuthzAdmin 删除运营账号，同时清空其 casbin 角色
func (h *Handler) DeleteAuthzAdmin(c *gin.Context) {
	admin, ok := h.loadTargetAdmin(c, "error.admin_delete_failed")
	if !ok {
		return
	}
	if key, err := h.adminDeleteBlocker(c, admin); key != "" {
		code := response.CodeBadRequest
		if err != nil {
			code = response.CodeInternal
		}
		respondError(c, code, key, err)
		return
	}

	if err := h.AuthzService.SetAdminRoles(admin.ID, []string{}); err != nil {
		respondError(c, response.CodeInternal, "error.admin_delete_failed", err)
		return
	}
	if err := h.AdminRepo.Delete(admin.ID); err != nil {
		respondError(c, response.CodeInternal, "error.admin_delete_failed", err)
		return
	}
	_ = cache.DelAdminAuthState(c.Request.Context(), admin.ID)

	h.auditAuthz(c, authzChange{action: "admin_delete", target: admin})
	response.Success(c, nil)
}

// adminDeleteBlocker 返回阻止删除的消息键；不能删自己、受保护账号和最后一个账号
func (h *Handler) adminDeleteBlocker(c *gin.Context, admin *models.Admin) (string, error) {
	switch {
	case currentAdminID(c) == admin.ID:
		return "error.admin_delete_self_forbidden", nil
	case isProtectedAdmin(admin.Username):
		return "error.admin_delete_protected", nil
	}
	count, err := h.AdminRepo.Count()
	if err != nil {
		return "error.admin_delete_failed", err
	}
	if count <= 1 {
		return "error.admin_delete_last_forbidden", nil
	}
	return "", nil
}

// claimAdminUsername 校验用户名格式并确认未被其他账号占用，失败时已写出响应
func (h *Handler) claimAdminUsername(c *gin.Context, raw string, selfID uint, failKey string) (string, bool) {
	username, err := normalizeAdminUsername(raw)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.admin_username_invalid", err)
		return "", false
	}
	existing, err := h.AdminRepo.GetByUsername(username)
	if err != nil {
		respondError(c, response.CodeInternal, failKey, err)
		return "", false
	}
	if existing != nil && existing.ID != selfID {
		respondError(c, response.CodeConflict, "error.admin_username_exists", nil)
		return "", false
	}
	return username, true
}

// hashAdminPassword 按密码策略校验后生成 bcrypt 哈希，失败时已写出响应
func (h *Handler) hashAdminPassword(c *gin.Context, raw, failKey string) (string, bool) {
	password := strings.TrimSpace(raw)
	if password == "" {
		respondError(c, response.CodeBadRequest, "error.password_weak", nil)
		return "", false
	}
	if err := h.AuthService.ValidatePassword(password); err != nil {
		if !respondPasswordPolicyError(c, err) {
			respondError(c, response.CodeBadRequest, "error.password_weak", err)
		}
		return "", false
	}
	hash, err := h.AuthService.HashPassword(password)
	if err != nil {
		respondError(c, response.CodeInternal, failKey, err)
		return "", false
	}
	return hash, true
}

func normalizeAdminUsername(username string) (string, error) {
	trimmed := strings.TrimSpace(username)
	switch n := len([]rune(trimmed)); {
	case n == 0:
		return "", errAdminUsernameRequired
	case strings.ContainsAny(trimmed, " \t\r\n"):
		return "", errAdminUsernameWhitespace
	case n < 3 || n > 64:
		return "", errAdminUsernameLength
	}
	return trimmed, nil
}
