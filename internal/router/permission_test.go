package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prepwise-next/internal/constants"
	"github.com/prepwise-next/internal/models"
	"github.com/prepwise-next/internal/rbac"
	"github.com/prepwise-next/internal/repository"
	"github.com/prepwise-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupPermissionTest(t *testing.T) (*service.UserService, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router_permission_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	table, err := rbac.NewTable(rbac.BuiltinRoles())
	if err != nil {
		t.Fatalf("build rbac table failed: %v", err)
	}
	return service.NewUserService(repository.NewUserRepository(db), table), db
}

func createPermissionUser(t *testing.T, db *gorm.DB, email, role string, tenantID *uint, trialEndsAt *time.Time) models.User {
	t.Helper()
	user := models.User{
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
		TenantID:     tenantID,
		PlanType:     constants.PlanFree,
		Status:       constants.UserStatusActive,
		TrialEndsAt:  trialEndsAt,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func performPermissionRequest(t *testing.T, mw gin.HandlerFunc, routePath, target string, userID uint, tenantHeader string) int {
	t.Helper()
	r := gin.New()
	r.GET(routePath, func(c *gin.Context) {
		if userID != 0 {
			c.Set(userIDContextKey, userID)
		}
		c.Next()
	}, mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status_code": 0})
	})

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if tenantHeader != "" {
		req.Header.Set(tenantIDHeader, tenantHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp.StatusCode
}

func TestRequirePermissionAllowsGrantedAction(t *testing.T) {
	userService, db := setupPermissionTest(t)
	student := createPermissionUser(t, db, "student@example.com", constants.RoleStudent, nil, nil)

	mw := RequirePermission(userService, constants.ResourceCoupons, constants.ActionRedeem, PermissionOptions{})
	if code := performPermissionRequest(t, mw, "/coupons", "/coupons", student.ID, ""); code != 0 {
		t.Fatalf("student should redeem coupons, got %d", code)
	}

	denied := RequirePermission(userService, constants.ResourceUsers, constants.ActionUpdate, PermissionOptions{})
	if code := performPermissionRequest(t, denied, "/users", "/users", student.ID, ""); code != 403 {
		t.Fatalf("student should not update users, got %d", code)
	}
}

func TestRequirePermissionWithoutUser(t *testing.T) {
	userService, _ := setupPermissionTest(t)

	mw := RequirePermission(userService, constants.ResourceDashboard, constants.ActionRead, PermissionOptions{})
	if code := performPermissionRequest(t, mw, "/dashboard", "/dashboard", 0, ""); code != 401 {
		t.Fatalf("missing user should be unauthorized, got %d", code)
	}
	if code := performPermissionRequest(t, mw, "/dashboard", "/dashboard", 9999, ""); code != 401 {
		t.Fatalf("unknown user should be unauthorized, got %d", code)
	}
	if code := performPermissionRequest(t, RequirePermission(nil, constants.ResourceDashboard, constants.ActionRead, PermissionOptions{}), "/dashboard", "/dashboard", 1, ""); code != 403 {
		t.Fatalf("missing rbac table should fail closed, got %d", code)
	}
}

func TestRequirePermissionTenantScope(t *testing.T) {
	userService, db := setupPermissionTest(t)
	tenantID := uint(5)
	manager := createPermissionUser(t, db, "manager@example.com", constants.RoleTenantAdmin, &tenantID, nil)

	mw := RequirePermission(userService, constants.ResourceUsers, constants.ActionUpdate, PermissionOptions{TenantParam: "tenant_id"})
	if code := performPermissionRequest(t, mw, "/tenants/:tenant_id/users", "/tenants/5/users", manager.ID, ""); code != 0 {
		t.Fatalf("own tenant should be allowed, got %d", code)
	}
	if code := performPermissionRequest(t, mw, "/tenants/:tenant_id/users", "/tenants/6/users", manager.ID, ""); code != 403 {
		t.Fatalf("other tenant should be forbidden, got %d", code)
	}

	headerScoped := RequirePermission(userService, constants.ResourceUsers, constants.ActionUpdate, PermissionOptions{})
	if code := performPermissionRequest(t, headerScoped, "/users", "/users", manager.ID, "6"); code != 403 {
		t.Fatalf("tenant header should select the target tenant, got %d", code)
	}
	if code := performPermissionRequest(t, headerScoped, "/users", "/users", manager.ID, ""); code != 0 {
		t.Fatalf("subject tenant should be used as fallback, got %d", code)
	}
}

func TestRequirePermissionLimitedTrial(t *testing.T) {
	userService, db := setupPermissionTest(t)
	future := time.Now().Add(72 * time.Hour)
	active := createPermissionUser(t, db, "trial@example.com", constants.RoleTrialUser, nil, &future)

	allow := RequirePermission(userService, constants.ResourceExams, constants.ActionRead, PermissionOptions{AllowTrial: true})
	if code := performPermissionRequest(t, allow, "/exams", "/exams", active.ID, ""); code != 0 {
		t.Fatalf("active trial should read exams, got %d", code)
	}

	deny := RequirePermission(userService, constants.ResourceExams, constants.ActionRead, PermissionOptions{AllowTrial: false})
	if code := performPermissionRequest(t, deny, "/exams", "/exams", active.ID, ""); code != 403 {
		t.Fatalf("trial access should follow allow_trial, got %d", code)
	}
}

func TestResolveTargetTenant(t *testing.T) {
	gin.SetMode(gin.TestMode)
	subject := &rbac.Subject{ID: "1", Role: constants.RoleTenantAdmin, TenantID: "3"}

	r := gin.New()
	var got string
	r.GET("/t/:tenant_id", func(c *gin.Context) {
		got = resolveTargetTenant(c, subject, "tenant_id")
	})
	req := httptest.NewRequest(http.MethodGet, "/t/8", nil)
	req.Header.Set(tenantIDHeader, "9")
	r.ServeHTTP(httptest.NewRecorder(), req)
	if got != "8" {
		t.Fatalf("route param should win, got %s", got)
	}

	r.GET("/h", func(c *gin.Context) {
		got = resolveTargetTenant(c, subject, "")
	})
	req = httptest.NewRequest(http.MethodGet, "/h", nil)
	req.Header.Set(tenantIDHeader, "9")
	r.ServeHTTP(httptest.NewRecorder(), req)
	if got != "9" {
		t.Fatalf("header should be used without param, got %s", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/h", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	if got != "3" {
		t.Fatalf("subject tenant should be fallback, got %s", got)
	}
}
