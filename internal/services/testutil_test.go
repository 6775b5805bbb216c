package services

import (
	"fmt"
	"testing"

	"msghub/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB 创建隔离的内存数据库
// 每个测试用独立DSN，避免跨测试的共享内存库串数据
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Tenant{},
		&models.Account{},
		&models.Inbox{},
		&models.User{},
		&models.Plan{},
		&models.Setting{},
		&models.CreditPackage{},
		&models.SecurityAuditLog{},
		&models.WebhookDelivery{},
	)
	require.NoError(t, err)

	return db
}

// fixtures 两个活跃租户加一个停用租户，各带一个账户
type fixtures struct {
	TenantA   *models.Tenant
	TenantB   *models.Tenant
	Suspended *models.Tenant
	AccountA  *models.Account
	AccountB  *models.Account
	AccountS  *models.Account
}

func seedFixtures(t *testing.T, db *gorm.DB) *fixtures {
	t.Helper()

	f := &fixtures{
		TenantA:   &models.Tenant{Name: "租户A", Code: "tenant-a", Status: models.TenantStatusActive},
		TenantB:   &models.Tenant{Name: "租户B", Code: "tenant-b", Status: models.TenantStatusActive},
		Suspended: &models.Tenant{Name: "租户S", Code: "tenant-s", Status: models.TenantStatusSuspended},
	}
	require.NoError(t, db.Create(f.TenantA).Error)
	require.NoError(t, db.Create(f.TenantB).Error)
	require.NoError(t, db.Create(f.Suspended).Error)

	f.AccountA = &models.Account{TenantID: f.TenantA.ID, Name: "账户A1", Token: "tok-a1", Status: models.AccountStatusActive}
	f.AccountB = &models.Account{TenantID: f.TenantB.ID, Name: "账户B1", Token: "tok-b1", Status: models.AccountStatusActive}
	f.AccountS = &models.Account{TenantID: f.Suspended.ID, Name: "账户S1", Token: "tok-s1", Status: models.AccountStatusActive}
	require.NoError(t, db.Create(f.AccountA).Error)
	require.NoError(t, db.Create(f.AccountB).Error)
	require.NoError(t, db.Create(f.AccountS).Error)

	return f
}

func seedUser(t *testing.T, db *gorm.DB, tenantID, accountID uint, username string) *models.User {
	t.Helper()

	user := &models.User{
		TenantID:  tenantID,
		AccountID: accountID,
		Username:  username,
		Email:     username + "@example.com",
		Name:      username,
		Role:      models.UserRoleAgent,
		Status:    models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("Test@1234"))
	require.NoError(t, db.Create(user).Error)
	return user
}
