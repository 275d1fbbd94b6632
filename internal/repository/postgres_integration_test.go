//go:build integration
// +build integration

package repository

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prepwise-next/internal/constants"
	"github.com/prepwise-next/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.CouponUsage{},
		&models.Coupon{},
		&models.User{},
		&models.Tenant{},
		&models.EmailSubscription{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestPostgresKeywordSearchIsCaseInsensitive(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	userRepo := NewUserRepository(db)
	couponRepo := NewCouponRepository(db)

	if err := userRepo.Create(&models.User{
		Email:        "ada@example.com",
		PasswordHash: "x",
		DisplayName:  "Ada Lovelace",
		Role:         constants.RoleStudent,
		PlanType:     constants.PlanFree,
		Status:       constants.UserStatusActive,
	}); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	now := time.Now()
	if err := couponRepo.Create(&models.Coupon{
		Code:         "spring",
		DiscountType: constants.CouponTypePercentage,
		Value:        models.NewMoneyFromFloat(10),
		IsActive:     true,
		ValidFrom:    now.Add(-time.Hour),
		ValidUntil:   now.Add(time.Hour),
		Description:  "Spring Campaign",
	}); err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	users, total, err := userRepo.List(UserListFilter{Keyword: "LOVELACE"})
	if err != nil || total != 1 || len(users) != 1 {
		t.Fatalf("user ILIKE search failed: total=%d err=%v", total, err)
	}
	coupons, total, err := couponRepo.List(CouponListFilter{Keyword: "campaign"})
	if err != nil || total != 1 || coupons[0].Code != "SPRING" {
		t.Fatalf("coupon ILIKE search failed: total=%d err=%v", total, err)
	}
}

func TestPostgresRedeemRespectsUsageLimit(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	couponRepo := NewCouponRepository(db)
	limit := 1
	now := time.Now()
	coupon := &models.Coupon{
		Code:         "ONCE",
		DiscountType: constants.CouponTypeFixed,
		Value:        models.NewMoneyFromFloat(5),
		UsageLimit:   &limit,
		IsActive:     true,
		ValidFrom:    now.Add(-time.Hour),
		ValidUntil:   now.Add(time.Hour),
	}
	if err := couponRepo.Create(coupon); err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	if err := couponRepo.Redeem(&models.CouponUsage{RedemptionNo: "pg-1", CouponID: coupon.ID, UserID: 1}, nil); err != nil {
		t.Fatalf("first redeem failed: %v", err)
	}
	err := couponRepo.Redeem(&models.CouponUsage{RedemptionNo: "pg-2", CouponID: coupon.ID, UserID: 2}, nil)
	if !errors.Is(err, ErrCouponUsageExhausted) {
		t.Fatalf("expected exhausted, got %v", err)
	}
}
