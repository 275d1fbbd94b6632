package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/prepwise-next/internal/cache"
	"github.com/prepwise-next/internal/constants"
	"github.com/prepwise-next/internal/logger"
	"github.com/prepwise-next/internal/metrics"
	"github.com/prepwise-next/internal/models"
	"github.com/prepwise-next/internal/rbac"
	"github.com/prepwise-next/internal/repository"
)

// UserService 用户角色与状态管理
type UserService struct {
	userRepo repository.UserRepository
	table    *rbac.Table
	now      func() time.Time
}

// NewUserService 创建用户管理服务
func NewUserService(userRepo repository.UserRepository, table *rbac.Table) *UserService {
	return &UserService{userRepo: userRepo, table: table, now: time.Now}
}

// NewSubject 由用户构建权限判定主体
func NewSubject(user *models.User, now time.Time) *rbac.Subject {
	if user == nil {
		return nil
	}
	subject := &rbac.Subject{
		ID:       strconv.FormatUint(uint64(user.ID), 10),
		Role:     user.Role,
		IsActive: strings.EqualFold(strings.TrimSpace(user.Status), constants.UserStatusActive),
	}
	if user.TenantID != nil {
		subject.TenantID = strconv.FormatUint(uint64(*user.TenantID), 10)
	}
	if user.TrialEndsAt != nil && user.TrialEndsAt.After(now) {
		subject.TrialActive = true
	}
	return subject
}

// TenantKey 将租户 ID 转为权限上下文使用的字符串
func TenantKey(tenantID *uint) string {
	if tenantID == nil || *tenantID == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(*tenantID), 10)
}

// Table 返回当前角色表
func (s *UserService) Table() *rbac.Table {
	return s.table
}

// Subject 加载用户并构建权限主体
func (s *UserService) Subject(userID uint) (*models.User, *rbac.Subject, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrUserNotFound
	}
	return user, NewSubject(user, s.now()), nil
}

// ChangeRoleInput 机构内角色变更参数
type ChangeRoleInput struct {
	ActorID      uint
	TargetUserID uint
	Role         string
	AllowTrial   bool
}

// ChangeRole 机构管理者变更成员角色，需同时能管理当前角色与目标角色
func (s *UserService) ChangeRole(input ChangeRoleInput) (*models.User, error) {
	role := strings.TrimSpace(input.Role)
	if !s.table.HasRole(role) {
		return nil, ErrRoleInvalid
	}
	_, actor, err := s.Subject(input.ActorID)
	if err != nil {
		return nil, err
	}
	target, err := s.userRepo.GetByID(input.TargetUserID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	ctx := rbac.AccessContext{
		constants.AccessContextTenantID:   TenantKey(target.TenantID),
		constants.AccessContextAllowTrial: input.AllowTrial,
	}
	allowed := s.table.HasPermission(actor, constants.ResourceUsers, constants.ActionUpdate, ctx)
	metrics.RecordPermissionCheck(allowed)
	if !allowed {
		logger.Warnw("rbac_permission_denied",
			"actor_id", input.ActorID,
			"target_user_id", target.ID,
			"resource", constants.ResourceUsers,
			"action", constants.ActionUpdate,
		)
		return nil, ErrTenantMismatch
	}
	if !s.table.CanChangeRole(actor.Role, target.Role) || !s.table.CanChangeRole(actor.Role, role) {
		return nil, ErrRoleChangeForbidden
	}
	return s.applyRole(target, role, "actor_id", input.ActorID)
}

// SetRoleByStaff 后台人员直接设置角色，只校验角色存在
func (s *UserService) SetRoleByStaff(adminID, userID uint, role string) (*models.User, error) {
	role = strings.TrimSpace(role)
	if !s.table.HasRole(role) {
		return nil, ErrRoleInvalid
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return s.applyRole(user, role, "admin_id", adminID)
}

// UpdateStatus 启用或禁用用户
func (s *UserService) UpdateStatus(userID uint, status string) (*models.User, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != constants.UserStatusActive && status != constants.UserStatusDisabled {
		return nil, ErrUserStatusInvalid
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if err := s.userRepo.UpdateStatus(userID, status); err != nil {
		return nil, err
	}
	_ = cache.DelUserAuthState(context.Background(), userID)
	logger.Infow("user_status_changed", "user_id", userID, "status", status)
	return s.userRepo.GetByID(userID)
}

// List 用户列表
func (s *UserService) List(filter repository.UserListFilter) ([]models.User, int64, error) {
	return s.userRepo.List(filter)
}

// Get 获取用户
func (s *UserService) Get(userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) applyRole(user *models.User, role string, actorKey string, actorID uint) (*models.User, error) {
	if user.Role == role {
		return user, nil
	}
	previous := user.Role
	if err := s.userRepo.UpdateRole(user.ID, role); err != nil {
		return nil, err
	}
	_ = cache.DelUserAuthState(context.Background(), user.ID)
	logger.Infow("user_role_changed", "user_id", user.ID, "from", previous, "to", role, actorKey, actorID)
	return s.userRepo.GetByID(user.ID)
}
