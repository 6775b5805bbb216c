package services

import (
	"testing"

	"msghub/internal/models"
	apperrors "msghub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// 共享收件箱令牌场景：同一令牌同时出现在租户A和租户B的收件箱里
func seedSharedInboxes(t *testing.T, db *gorm.DB, f *fixtures) {
	t.Helper()

	inboxes := []*models.Inbox{
		{TenantID: f.TenantA.ID, AccountID: f.AccountA.ID, Name: "A-WhatsApp", Channel: models.InboxChannelWhatsApp, Token: "ib-shared", Status: models.InboxStatusActive},
		{TenantID: f.TenantB.ID, AccountID: f.AccountB.ID, Name: "B-WhatsApp", Channel: models.InboxChannelWhatsApp, Token: "ib-shared", Status: models.InboxStatusActive},
		{TenantID: f.TenantA.ID, AccountID: f.AccountA.ID, Name: "A-SMS", Channel: models.InboxChannelSMS, Token: "ib-a-only", Status: models.InboxStatusActive},
	}
	for _, inbox := range inboxes {
		require.NoError(t, db.Create(inbox).Error)
	}
}

func TestRouteAccountToken(t *testing.T) {
	db := newTestDB(t)
	f := seedFixtures(t, db)
	service := NewWebhookService(db, nil)

	t.Run("账户级令牌直接命中", func(t *testing.T) {
		result, err := service.Route("tok-a1", 0)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, f.AccountA.ID, result.AccountID)
		assert.Equal(t, f.TenantA.ID, result.TenantID)
	})

	t.Run("租户上下文匹配时放行", func(t *testing.T) {
		result, err := service.Route("tok-a1", f.TenantA.ID)
		require.NoError(t, err)
		assert.True(t, result.Success)
	})

	t.Run("租户上下文不匹配时拒绝", func(t *testing.T) {
		result, err := service.Route("tok-a1", f.TenantB.ID)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, RoutingErrInvalidTenantContext, result.Error)
		assert.Zero(t, result.AccountID)
		assert.Zero(t, result.TenantID)
	})
}

func TestRouteUnknownToken(t *testing.T) {
	db := newTestDB(t)
	seedFixtures(t, db)
	service := NewWebhookService(db, nil)

	for _, token := range []string{"no-such-token", ""} {
		result, err := service.Route(token, 0)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, RoutingErrAccountNotFound, result.Error)
	}
}

func TestRouteSuspendedTenant(t *testing.T) {
	db := newTestDB(t)
	f := seedFixtures(t, db)
	service := NewWebhookService(db, nil)

	t.Run("停用租户的令牌被拒绝", func(t *testing.T) {
		result, err := service.Route("tok-s1", 0)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, RoutingErrTenantInactive, result.Error)
	})

	t.Run("即使上下文匹配停用租户仍不接收", func(t *testing.T) {
		result, err := service.Route("tok-s1", f.Suspended.ID)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, RoutingErrTenantInactive, result.Error)
	})
}

func TestRouteInboxToken(t *testing.T) {
	db := newTestDB(t)
	f := seedFixtures(t, db)
	seedSharedInboxes(t, db, f)
	service := NewWebhookService(db, nil)

	t.Run("唯一的收件箱令牌解析到所属账户", func(t *testing.T) {
		result, err := service.Route("ib-a-only", 0)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, f.AccountA.ID, result.AccountID)
		assert.Equal(t, f.TenantA.ID, result.TenantID)
	})

	t.Run("共享令牌无租户上下文时拒绝而不猜测", func(t *testing.T) {
		result, err := service.Route("ib-shared", 0)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, RoutingErrInvalidTenantContext, result.Error)
	})

	t.Run("共享令牌凭租户上下文消歧", func(t *testing.T) {
		result, err := service.Route("ib-shared", f.TenantB.ID)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, f.AccountB.ID, result.AccountID)
		assert.Equal(t, f.TenantB.ID, result.TenantID)
	})

	t.Run("上下文不在候选租户中时拒绝", func(t *testing.T) {
		result, err := service.Route("ib-shared", f.Suspended.ID)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, RoutingErrInvalidTenantContext, result.Error)
	})
}

func TestIngest(t *testing.T) {
	db := newTestDB(t)
	f := seedFixtures(t, db)
	service := NewWebhookService(db, nil)

	t.Run("路由成功落库投递记录", func(t *testing.T) {
		payload := []byte(`{"event":"message_created","id":42}`)
		result, delivery, err := service.Ingest("tok-a1", payload, 0, "provider-x")
		require.NoError(t, err)
		assert.True(t, result.Success)
		require.NotNil(t, delivery)
		assert.NotZero(t, delivery.ID)
		assert.Equal(t, f.TenantA.ID, delivery.TenantID)
		assert.Equal(t, f.AccountA.ID, delivery.AccountID)
		assert.Equal(t, models.WebhookDeliveryStatusQueued, delivery.Status)

		var saved models.WebhookDelivery
		require.NoError(t, db.First(&saved, delivery.ID).Error)
		assert.JSONEq(t, string(payload), string(saved.Payload))
	})

	t.Run("路由失败不产生任何持久化副作用", func(t *testing.T) {
		var before int64
		require.NoError(t, db.Model(&models.WebhookDelivery{}).Count(&before).Error)

		result, delivery, err := service.Ingest("no-such-token", []byte(`{}`), 0, "")
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Nil(t, delivery)

		var after int64
		require.NoError(t, db.Model(&models.WebhookDelivery{}).Count(&after).Error)
		assert.Equal(t, before, after)
	})

	t.Run("非法JSON负载报参数错误", func(t *testing.T) {
		_, _, err := service.Ingest("tok-a1", []byte(`{not-json`), 0, "")
		require.Error(t, err)
		assert.True(t, apperrors.IsInput(err))
	})
}

func TestListDeliveries(t *testing.T) {
	db := newTestDB(t)
	f := seedFixtures(t, db)
	service := NewWebhookService(db, nil)

	_, _, err := service.Ingest("tok-a1", []byte(`{"n":1}`), 0, "")
	require.NoError(t, err)
	_, _, err = service.Ingest("tok-a1", []byte(`{"n":2}`), 0, "")
	require.NoError(t, err)
	_, _, err = service.Ingest("tok-b1", []byte(`{"n":3}`), 0, "")
	require.NoError(t, err)

	t.Run("只返回本租户的投递记录", func(t *testing.T) {
		deliveries, total, err := service.ListDeliveries(f.TenantA.ID, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		for _, d := range deliveries {
			assert.Equal(t, f.TenantA.ID, d.TenantID)
		}
	})

	t.Run("租户上下文缺失时拒绝", func(t *testing.T) {
		_, _, err := service.ListDeliveries(0, 1, 10)
		require.Error(t, err)
		assert.True(t, apperrors.IsAccessDenied(err))
	})
}
