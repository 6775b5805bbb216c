package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUserTenant(t *testing.T) {
	db := newTestDB(t)
	f := seedFixtures(t, db)
	service := NewOwnershipService(db)

	userA := seedUser(t, db, f.TenantA.ID, f.AccountA.ID, "alice")
	userB := seedUser(t, db, f.TenantB.ID, f.AccountB.ID, "bob")

	t.Run("本租户成员校验通过并返回所属账户", func(t *testing.T) {
		valid, account, err := service.ValidateUserTenant(userA.ID, f.TenantA.ID)
		require.NoError(t, err)
		assert.True(t, valid)
		require.NotNil(t, account)
		assert.Equal(t, f.AccountA.ID, account.ID)
		assert.Equal(t, f.TenantA.ID, account.TenantID)
	})

	t.Run("其他租户的用户判为无效", func(t *testing.T) {
		valid, account, err := service.ValidateUserTenant(userB.ID, f.TenantA.ID)
		require.NoError(t, err)
		assert.False(t, valid)
		assert.Nil(t, account)
	})

	t.Run("不存在的用户判为无效", func(t *testing.T) {
		valid, account, err := service.ValidateUserTenant(99999, f.TenantA.ID)
		require.NoError(t, err)
		assert.False(t, valid)
		assert.Nil(t, account)
	})

	t.Run("用户ID缺失判为无效", func(t *testing.T) {
		valid, account, err := service.ValidateUserTenant(0, f.TenantA.ID)
		require.NoError(t, err)
		assert.False(t, valid)
		assert.Nil(t, account)
	})

	t.Run("租户ID缺失判为无效", func(t *testing.T) {
		valid, account, err := service.ValidateUserTenant(userA.ID, 0)
		require.NoError(t, err)
		assert.False(t, valid)
		assert.Nil(t, account)
	})
}

func TestLookupUserTenant(t *testing.T) {
	db := newTestDB(t)
	f := seedFixtures(t, db)
	service := NewOwnershipService(db)

	alice := seedUser(t, db, f.TenantA.ID, f.AccountA.ID, "alice")

	actual, err := service.LookupUserTenant(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, f.TenantA.ID, actual)

	actual, err = service.LookupUserTenant(99999)
	require.NoError(t, err)
	assert.Zero(t, actual)

	actual, err = service.LookupUserTenant(0)
	require.NoError(t, err)
	assert.Zero(t, actual)
}

func TestFilterUsersByTenant(t *testing.T) {
	db := newTestDB(t)
	f := seedFixtures(t, db)
	service := NewOwnershipService(db)

	alice := seedUser(t, db, f.TenantA.ID, f.AccountA.ID, "alice")
	carol := seedUser(t, db, f.TenantA.ID, f.AccountA.ID, "carol")
	bob := seedUser(t, db, f.TenantB.ID, f.AccountB.ID, "bob")

	t.Run("空输入返回两个空组", func(t *testing.T) {
		valid, invalid, err := service.FilterUsersByTenant([]uint{}, f.TenantA.ID)
		require.NoError(t, err)
		assert.Empty(t, valid)
		assert.Empty(t, invalid)
		assert.NotNil(t, valid)
		assert.NotNil(t, invalid)
	})

	t.Run("租户ID缺失时全部判为无效", func(t *testing.T) {
		valid, invalid, err := service.FilterUsersByTenant([]uint{alice.ID, bob.ID}, 0)
		require.NoError(t, err)
		assert.Empty(t, valid)
		assert.Equal(t, []uint{alice.ID, bob.ID}, invalid)
	})

	t.Run("混合输入按归属切分且保持输入顺序", func(t *testing.T) {
		valid, invalid, err := service.FilterUsersByTenant(
			[]uint{bob.ID, carol.ID, 99999, alice.ID}, f.TenantA.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{carol.ID, alice.ID}, valid)
		assert.Equal(t, []uint{bob.ID, 99999}, invalid)
	})

	t.Run("全部无效", func(t *testing.T) {
		valid, invalid, err := service.FilterUsersByTenant([]uint{bob.ID, 88888}, f.TenantA.ID)
		require.NoError(t, err)
		assert.Empty(t, valid)
		assert.Equal(t, []uint{bob.ID, 88888}, invalid)
	})
}
