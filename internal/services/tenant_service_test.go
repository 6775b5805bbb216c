package services

import (
	"testing"

	"msghub/internal/models"
	apperrors "msghub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantCreate(t *testing.T) {
	db := newTestDB(t)
	service := NewTenantService(db)

	t.Run("正常创建", func(t *testing.T) {
		tenant, err := service.Create("示例公司", "acme-corp")
		require.NoError(t, err)
		assert.Equal(t, models.TenantStatusActive, tenant.Status)
	})

	t.Run("代码重复报冲突", func(t *testing.T) {
		_, err := service.Create("另一家", "acme-corp")
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("代码含非法字符报参数错误", func(t *testing.T) {
		for _, code := range []string{"ACME", "acme corp", "acme!", ""} {
			_, err := service.Create("示例", code)
			require.Error(t, err, code)
			assert.True(t, apperrors.IsInput(err), code)
		}
	})
}

func TestTenantUpdateStatus(t *testing.T) {
	db := newTestDB(t)
	service := NewTenantService(db)

	tenant, err := service.Create("示例公司", "acme")
	require.NoError(t, err)

	t.Run("合法状态流转", func(t *testing.T) {
		updated, err := service.UpdateStatus(tenant.ID, models.TenantStatusSuspended)
		require.NoError(t, err)
		assert.Equal(t, models.TenantStatusSuspended, updated.Status)
		assert.False(t, updated.IsActive())
	})

	t.Run("非法状态报参数错误", func(t *testing.T) {
		_, err := service.UpdateStatus(tenant.ID, "frozen")
		require.Error(t, err)
		assert.True(t, apperrors.IsInput(err))
	})

	t.Run("相同状态为无操作", func(t *testing.T) {
		updated, err := service.UpdateStatus(tenant.ID, models.TenantStatusSuspended)
		require.NoError(t, err)
		assert.Equal(t, models.TenantStatusSuspended, updated.Status)
	})

	t.Run("不存在的租户", func(t *testing.T) {
		_, err := service.UpdateStatus(99999, models.TenantStatusActive)
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestTenantStats(t *testing.T) {
	db := newTestDB(t)
	seedFixtures(t, db)
	service := NewTenantService(db)

	stats, err := service.GetStats()
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 2, stats.Active)
	assert.EqualValues(t, 1, stats.Suspended)
	assert.EqualValues(t, 0, stats.Inactive)
}
