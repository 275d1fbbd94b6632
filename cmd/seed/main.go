package main

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/prepwise-next/internal/config"
	"github.com/prepwise-next/internal/constants"
	"github.com/prepwise-next/internal/logger"
	"github.com/prepwise-next/internal/models"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const defaultSeedPassword = "Prepwise123"

type seedUser struct {
	Email       string
	DisplayName string
	Role        string
	TenantSlug  string
	Plan        string
	TrialDays   int
}

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed demo tenants, users and coupons",
	Long: `Populate the configured database with demo data.

Existing rows are left untouched, so the command can be re-run safely.

Examples:
  seed
  seed --password 'S3cure-pass' --skip-coupons
  seed --only-coupons`,
	SilenceUsage: true,
	RunE:         runSeed,
}

func init() {
	rootCmd.Flags().String("password", "", "password for seeded users (default $PW_SEED_PASSWORD or built-in demo password)")
	rootCmd.Flags().Bool("skip-users", false, "do not create tenants and users")
	rootCmd.Flags().Bool("skip-coupons", false, "do not create sample coupons")
	rootCmd.Flags().Bool("only-coupons", false, "only create sample coupons")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	skipUsers, _ := cmd.Flags().GetBool("skip-users")
	skipCoupons, _ := cmd.Flags().GetBool("skip-coupons")
	onlyCoupons, _ := cmd.Flags().GetBool("only-coupons")
	if onlyCoupons {
		skipUsers = true
		skipCoupons = false
	}

	// 连接数据库
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		return err
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		return err
	}

	now := time.Now()
	if !skipUsers {
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password = os.Getenv("PW_SEED_PASSWORD")
		}
		if password == "" {
			password = defaultSeedPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		seedUsers(stdLog, seedTenants(stdLog), string(hash), now)
		if password == defaultSeedPassword {
			logger.Warnw("seed_users_use_default_password")
		}
	}
	if !skipCoupons {
		seedCoupons(stdLog, now)
	}

	stdLog.Printf("Seed completed")
	return nil
}

// seedTenants 返回 slug 到租户 ID 的映射
func seedTenants(stdLog *log.Logger) map[string]uint {
	tenants := []models.Tenant{
		{Slug: "northside-academy", Name: "Northside Academy", Status: constants.TenantStatusActive},
		{Slug: "lakeview-prep", Name: "Lakeview Prep", Status: constants.TenantStatusActive},
	}
	tenantIDs := map[string]uint{}
	for _, tenant := range tenants {
		var existing models.Tenant
		err := models.DB.Where("slug = ?", tenant.Slug).First(&existing).Error
		switch {
		case err == nil:
			stdLog.Printf("Tenant already exists: %s", tenant.Slug)
			tenantIDs[tenant.Slug] = existing.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			item := tenant
			if err := models.DB.Create(&item).Error; err != nil {
				stdLog.Printf("Failed to create tenant %s: %v", tenant.Slug, err)
				continue
			}
			stdLog.Printf("Created tenant: %s", tenant.Slug)
			tenantIDs[tenant.Slug] = item.ID
		default:
			stdLog.Printf("Failed to load tenant %s: %v", tenant.Slug, err)
		}
	}
	return tenantIDs
}

func seedUsers(stdLog *log.Logger, tenantIDs map[string]uint, passwordHash string, now time.Time) {
	// 添加每个角色的示例用户
	users := []seedUser{
		{Email: "superadmin@prepwise.test", DisplayName: "Super Admin", Role: constants.RoleSuperAdmin, Plan: constants.PlanEnterprise},
		{Email: "admin@prepwise.test", DisplayName: "Platform Admin", Role: constants.RoleAdmin, Plan: constants.PlanEnterprise},
		{Email: "tenant-admin@northside.test", DisplayName: "Northside Admin", Role: constants.RoleTenantAdmin, TenantSlug: "northside-academy", Plan: constants.PlanPro},
		{Email: "instructor@northside.test", DisplayName: "Northside Instructor", Role: constants.RoleInstructor, TenantSlug: "northside-academy", Plan: constants.PlanPro},
		{Email: "student@northside.test", DisplayName: "Northside Student", Role: constants.RoleStudent, TenantSlug: "northside-academy", Plan: constants.PlanBasic},
		{Email: "student@lakeview.test", DisplayName: "Lakeview Student", Role: constants.RoleStudent, TenantSlug: "lakeview-prep", Plan: constants.PlanBasic},
		{Email: "trial@prepwise.test", DisplayName: "Trial User", Role: constants.RoleTrialUser, Plan: constants.PlanFree, TrialDays: 14},
	}
	for _, item := range users {
		var existing models.User
		err := models.DB.Where("email = ?", item.Email).First(&existing).Error
		if err == nil {
			stdLog.Printf("User already exists: %s", item.Email)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			stdLog.Printf("Failed to load user %s: %v", item.Email, err)
			continue
		}
		user := models.User{
			Email:        item.Email,
			PasswordHash: passwordHash,
			DisplayName:  item.DisplayName,
			Locale:       constants.LocaleEnUS,
			Role:         item.Role,
			PlanType:     item.Plan,
			Status:       constants.UserStatusActive,
		}
		if item.TenantSlug != "" {
			if id, ok := tenantIDs[item.TenantSlug]; ok {
				tenantID := id
				user.TenantID = &tenantID
			}
		}
		if item.TrialDays > 0 {
			endsAt := now.AddDate(0, 0, item.TrialDays)
			user.TrialEndsAt = &endsAt
		}
		if err := models.DB.Create(&user).Error; err != nil {
			stdLog.Printf("Failed to create user %s: %v", item.Email, err)
			continue
		}
		stdLog.Printf("Created user: %s (%s)", item.Email, item.Role)
	}
}

func seedCoupons(stdLog *log.Logger, now time.Time) {
	// 添加示例优惠券
	usageLimit := 500
	perUser := 1
	coupons := []models.Coupon{
		{
			Code:           "SAVE20",
			DiscountType:   constants.CouponTypePercentage,
			Value:          models.NewMoneyFromFloat(20),
			MaxDiscount:    models.MoneyPtr(50),
			UsageLimit:     &usageLimit,
			UserUsageLimit: &perUser,
			IsActive:       true,
			ValidFrom:      now,
			ValidUntil:     now.AddDate(0, 3, 0),
			Description:    "20% off any paid plan",
		},
		{
			Code:           "FLAT100",
			DiscountType:   constants.CouponTypeFixed,
			Value:          models.NewMoneyFromFloat(100),
			MinAmount:      models.MoneyPtr(300),
			UserUsageLimit: &perUser,
			IsActive:       true,
			ValidFrom:      now,
			ValidUntil:     now.AddDate(0, 6, 0),
			EligiblePlans:  models.StringArray{constants.PlanPro, constants.PlanEnterprise},
			Description:    "Flat 100 off orders above 300",
		},
		{
			Code:           "TRIAL14",
			DiscountType:   constants.CouponTypeTrialExtension,
			Value:          models.NewMoneyFromFloat(14),
			UserUsageLimit: &perUser,
			IsActive:       true,
			ValidFrom:      now,
			ValidUntil:     now.AddDate(0, 1, 0),
			EligibleRoles:  models.StringArray{constants.RoleTrialUser},
			Description:    "Extend the free trial by 14 days",
		},
		{
			Code:           "UPGRADE30",
			DiscountType:   constants.CouponTypeUpgradePromo,
			Value:          models.NewMoneyFromFloat(30),
			UserUsageLimit: &perUser,
			IsActive:       true,
			ValidFrom:      now,
			ValidUntil:     now.AddDate(0, 2, 0),
			EligiblePlans:  models.StringArray{constants.PlanFree, constants.PlanBasic},
			Description:    "30% off when upgrading from free or basic",
		},
	}
	for _, coupon := range coupons {
		var existing models.Coupon
		err := models.DB.Where("code = ?", coupon.Code).First(&existing).Error
		if err == nil {
			stdLog.Printf("Coupon already exists: %s", coupon.Code)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			stdLog.Printf("Failed to load coupon %s: %v", coupon.Code, err)
			continue
		}
		item := coupon
		if err := models.DB.Create(&item).Error; err != nil {
			stdLog.Printf("Failed to create coupon %s: %v", coupon.Code, err)
			continue
		}
		stdLog.Printf("Created coupon: %s", coupon.Code)
	}
}
