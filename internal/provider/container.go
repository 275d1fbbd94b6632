package provider

import (
	"strings"

	"github.com/prepwise-next/internal/authz"
	"github.com/prepwise-next/internal/cache"
	"github.com/prepwise-next/internal/config"
	"github.com/prepwise-next/internal/constants"
	"github.com/prepwise-next/internal/logger"
	"github.com/prepwise-next/internal/models"
	"github.com/prepwise-next/internal/queue"
	"github.com/prepwise-next/internal/rbac"
	"github.com/prepwise-next/internal/repository"
	"github.com/prepwise-next/internal/repository/jsonstore"
	"github.com/prepwise-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	RBAC        *rbac.Table

	// Repositories
	AdminRepo             repository.AdminRepository
	UserRepo              repository.UserRepository
	TenantRepo            repository.TenantRepository
	CouponRepo            repository.CouponRepository
	CouponUsageRepo       repository.CouponUsageRepository
	EmailSubscriptionRepo repository.EmailSubscriptionRepository
	AuthzAuditLogRepo     repository.AuthzAuditLogRepository

	// Services
	AuthzService         *authz.Service
	AuthService          *service.AuthService
	UserAuthService      *service.UserAuthService
	UserService          *service.UserService
	TenantService        *service.TenantService
	EmailService         *service.EmailService
	CaptchaService       *service.CaptchaService
	CouponService        *service.CouponService
	CouponAdminService   *service.CouponAdminService
	CouponReceiptService *service.CouponReceiptService
	SubscriptionService  *service.SubscriptionService
	AuthzAuditService    *service.AuthzAuditService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	table, err := rbac.NewTableFromConfig(cfg.RBAC)
	if err != nil {
		logger.Errorw("provider_init_rbac_failed", "error", err)
		panic(err)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		RBAC:        table,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.TenantRepo = repository.NewTenantRepository(db)
	c.EmailSubscriptionRepo = repository.NewEmailSubscriptionRepository(db)
	c.AuthzAuditLogRepo = repository.NewAuthzAuditLogRepository(db)
	c.initCouponStore()
}

// initCouponStore 按配置选择优惠券存储：数据库或 JSON 文件
func (c *Container) initCouponStore() {
	driver := strings.ToLower(strings.TrimSpace(c.Config.CouponStore.Driver))
	if driver == constants.CouponStoreJSON {
		store, err := jsonstore.Open(c.Config.CouponStore.Dir)
		if err != nil {
			logger.Errorw("provider_open_coupon_json_store_failed", "dir", c.Config.CouponStore.Dir, "error", err)
			panic(err)
		}
		c.CouponRepo = store
		c.CouponUsageRepo = store.Usages()
		logger.Infow("provider_coupon_store_selected", "driver", constants.CouponStoreJSON, "dir", c.Config.CouponStore.Dir)
		return
	}
	c.CouponRepo = repository.NewCouponRepository(models.DB)
	c.CouponUsageRepo = repository.NewCouponUsageRepository(models.DB)
	logger.Infow("provider_coupon_store_selected", "driver", constants.CouponStoreDatabase)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo, c.TenantRepo)
	c.UserService = service.NewUserService(c.UserRepo, c.RBAC)
	c.TenantService = service.NewTenantService(c.TenantRepo, c.UserRepo)
	c.CouponService = service.NewCouponService(&c.Config.Coupon, c.CouponRepo, c.CouponUsageRepo, c.UserRepo, c.QueueClient)
	c.CouponAdminService = service.NewCouponAdminService(&c.Config.Coupon, c.CouponRepo, c.CouponUsageRepo, c.RBAC.RoleNames())
	c.CouponReceiptService = service.NewCouponReceiptService(c.CouponUsageRepo, c.CouponRepo, c.UserRepo, c.EmailService)
	c.SubscriptionService = service.NewSubscriptionService(c.EmailSubscriptionRepo, c.EmailService, c.QueueClient)
	c.AuthzAuditService = service.NewAuthzAuditService(c.AuthzAuditLogRepo)
}
