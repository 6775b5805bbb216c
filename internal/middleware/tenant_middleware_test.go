package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"msghub/internal/models"
	"msghub/internal/services"
	"msghub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMiddlewareTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.Tenant{}, &models.Account{}, &models.User{}, &models.SecurityAuditLog{}))
	return db
}

func newTenantGuard(db *gorm.DB) *TenantMiddleware {
	return NewTenantMiddleware(services.NewOwnershipService(db), services.NewAuditService(db, nil))
}

// injectContext 测试用：往受信上下文写入租户ID
func injectContext(tenantID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tenantID != 0 {
			c.Set("tenant_id", tenantID)
		}
		c.Next()
	}
}

func decodeEnvelope(t *testing.T, body []byte) response.Response {
	t.Helper()
	var envelope response.Response
	// 严格解码：若中间件拒绝后处理器又写了一次，拼接的JSON会解码失败
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope
}

func TestRequireTenantContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newMiddlewareTestDB(t)
	guard := newTenantGuard(db)

	setup := func(tenantID uint) (*httptest.ResponseRecorder, *bool) {
		handlerCalled := false
		router := gin.New()
		router.GET("/resource", injectContext(tenantID), guard.RequireTenantContext(), func(c *gin.Context) {
			handlerCalled = true
			response.Success(c, gin.H{"ok": true})
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/resource", nil)
		router.ServeHTTP(w, req)
		return w, &handlerCalled
	}

	t.Run("上下文缺失时恰好拒绝一次且处理器不执行", func(t *testing.T) {
		w, handlerCalled := setup(0)

		envelope := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, 403, envelope.Code)
		assert.Equal(t, "访问被拒绝", envelope.Message)
		assert.False(t, *handlerCalled)
	})

	t.Run("上下文存在时放行", func(t *testing.T) {
		w, handlerCalled := setup(5)

		envelope := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, 200, envelope.Code)
		assert.True(t, *handlerCalled)
	})
}

func TestValidateUserIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newMiddlewareTestDB(t)

	tenantA := &models.Tenant{Name: "租户A", Code: "tenant-a", Status: models.TenantStatusActive}
	tenantB := &models.Tenant{Name: "租户B", Code: "tenant-b", Status: models.TenantStatusActive}
	require.NoError(t, db.Create(tenantA).Error)
	require.NoError(t, db.Create(tenantB).Error)

	accountA := &models.Account{TenantID: tenantA.ID, Name: "账户A", Token: "tok-a", Status: models.AccountStatusActive}
	accountB := &models.Account{TenantID: tenantB.ID, Name: "账户B", Token: "tok-b", Status: models.AccountStatusActive}
	require.NoError(t, db.Create(accountA).Error)
	require.NoError(t, db.Create(accountB).Error)

	userA := &models.User{TenantID: tenantA.ID, AccountID: accountA.ID, Username: "alice", Email: "alice@example.com", Name: "alice", Role: models.UserRoleAgent, Status: models.UserStatusActive}
	userB := &models.User{TenantID: tenantB.ID, AccountID: accountB.ID, Username: "bob", Email: "bob@example.com", Name: "bob", Role: models.UserRoleAgent, Status: models.UserStatusActive}
	require.NoError(t, userA.SetPassword("Test@1234"))
	require.NoError(t, userB.SetPassword("Test@1234"))
	require.NoError(t, db.Create(userA).Error)
	require.NoError(t, db.Create(userB).Error)

	guard := newTenantGuard(db)

	do := func(tenantID uint, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
		captured := map[string]interface{}{}
		router := gin.New()
		router.GET("/agents/:id", injectContext(tenantID), guard.ValidateUserIDParam("id"), func(c *gin.Context) {
			if v, exists := c.Get("target_user_id"); exists {
				captured["target_user_id"] = v
			}
			if v, exists := c.Get("target_account"); exists {
				captured["target_account"] = v
			}
			response.Success(c, nil)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)
		return w, captured
	}

	t.Run("租户上下文缺失优先于参数检查", func(t *testing.T) {
		w, _ := do(0, "/agents/not-a-number")
		envelope := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, 403, envelope.Code)
	})

	t.Run("参数非法报参数错误", func(t *testing.T) {
		for _, path := range []string{"/agents/not-a-number", "/agents/0"} {
			w, _ := do(tenantA.ID, path)
			envelope := decodeEnvelope(t, w.Body.Bytes())
			assert.Equal(t, 400, envelope.Code, path)
		}
	})

	t.Run("其他租户的用户返回通用拒绝并留审计", func(t *testing.T) {
		w, captured := do(tenantA.ID, fmt.Sprintf("/agents/%d", userB.ID))
		envelope := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, 403, envelope.Code)
		assert.Equal(t, "访问被拒绝", envelope.Message)
		assert.Empty(t, captured)

		var logs []models.SecurityAuditLog
		require.NoError(t, db.Find(&logs).Error)
		require.Len(t, logs, 1)
		assert.Equal(t, tenantA.ID, logs[0].TenantID)
		assert.Equal(t, tenantB.ID, logs[0].ResourceTenantID)
		assert.Equal(t, userB.ID, logs[0].ResourceID)
	})

	t.Run("不存在的用户拒绝但不留审计", func(t *testing.T) {
		var before int64
		require.NoError(t, db.Model(&models.SecurityAuditLog{}).Count(&before).Error)

		w, _ := do(tenantA.ID, "/agents/99999")
		envelope := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, 403, envelope.Code)

		var after int64
		require.NoError(t, db.Model(&models.SecurityAuditLog{}).Count(&after).Error)
		assert.Equal(t, before, after)
	})

	t.Run("本租户的用户放行并注入目标上下文", func(t *testing.T) {
		w, captured := do(tenantA.ID, fmt.Sprintf("/agents/%d", userA.ID))
		envelope := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, 200, envelope.Code)
		assert.Equal(t, userA.ID, captured["target_user_id"])

		account, ok := captured["target_account"].(*models.Account)
		require.True(t, ok)
		assert.Equal(t, accountA.ID, account.ID)
	})
}
