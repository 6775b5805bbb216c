package services

import (
	"testing"

	"msghub/internal/models"
	apperrors "msghub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)
	f := seedFixtures(t, db)
	service := NewUserService(db, NewAuditService(db, nil))

	t.Run("正常创建坐席", func(t *testing.T) {
		user, err := service.Create(f.TenantA.ID, f.AccountA.ID, "alice", "alice@example.com", "Secret@123", "Alice", models.UserRoleAgent, testMeta())
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, f.TenantA.ID, user.TenantID)
		assert.True(t, user.CheckPassword("Secret@123"))
		assert.False(t, user.CheckPassword("wrong"))
	})

	t.Run("账户属于其他租户时等同不存在", func(t *testing.T) {
		_, err := service.Create(f.TenantA.ID, f.AccountB.ID, "mallory", "mallory@example.com", "Secret@123", "Mallory", models.UserRoleAgent, testMeta())
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("用户名全局唯一", func(t *testing.T) {
		_, err := service.Create(f.TenantB.ID, f.AccountB.ID, "alice", "alice2@example.com", "Secret@123", "Alice2", models.UserRoleAgent, testMeta())
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("非法角色报参数错误", func(t *testing.T) {
		_, err := service.Create(f.TenantA.ID, f.AccountA.ID, "dave", "dave@example.com", "Secret@123", "Dave", "superuser", testMeta())
		require.Error(t, err)
		assert.True(t, apperrors.IsInput(err))
	})
}

func TestUserGetByIDInTenant(t *testing.T) {
	db := newTestDB(t)
	f := seedFixtures(t, db)
	service := NewUserService(db, NewAuditService(db, nil))

	alice := seedUser(t, db, f.TenantA.ID, f.AccountA.ID, "alice")

	t.Run("本租户正常读取", func(t *testing.T) {
		got, err := service.GetByIDInTenant(alice.ID, f.TenantA.ID, testMeta())
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)
	})

	t.Run("越权读取对外等同不存在且留审计", func(t *testing.T) {
		_, err := service.GetByIDInTenant(alice.ID, f.TenantB.ID, testMeta())
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))

		var logs []models.SecurityAuditLog
		require.NoError(t, db.Find(&logs).Error)
		require.Len(t, logs, 1)
		assert.Equal(t, f.TenantB.ID, logs[0].TenantID)
		assert.Equal(t, f.TenantA.ID, logs[0].ResourceTenantID)
		assert.Equal(t, "users", logs[0].ResourceTable)
	})
}
