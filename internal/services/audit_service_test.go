package services

import (
	"testing"

	"msghub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturePublisher 记录广播调用的测试桩
type capturePublisher struct {
	channels []string
	messages []interface{}
}

func (p *capturePublisher) PublishMessage(channel string, message interface{}) error {
	p.channels = append(p.channels, channel)
	p.messages = append(p.messages, message)
	return nil
}

func TestLogSecurityViolation(t *testing.T) {
	db := newTestDB(t)
	publisher := &capturePublisher{}
	service := NewAuditService(db, publisher)

	meta := &RequestMeta{UserID: 7, Endpoint: "/api/v1/plans/:id", Method: "GET", IP: "10.0.0.1"}
	service.LogSecurityViolation(2, 1, 42, "plans", meta)

	t.Run("事件落库", func(t *testing.T) {
		var logs []models.SecurityAuditLog
		require.NoError(t, db.Find(&logs).Error)
		require.Len(t, logs, 1)

		entry := logs[0]
		assert.Equal(t, models.AuditEventSecurityViolation, entry.EventType)
		assert.EqualValues(t, 2, entry.TenantID)
		assert.EqualValues(t, 1, entry.ResourceTenantID)
		assert.EqualValues(t, 42, entry.ResourceID)
		assert.Equal(t, "plans", entry.ResourceTable)
		assert.EqualValues(t, 7, entry.UserID)
		assert.Equal(t, "GET", entry.Method)
		assert.Equal(t, "10.0.0.1", entry.IP)
	})

	t.Run("事件广播到安全频道", func(t *testing.T) {
		require.Len(t, publisher.channels, 1)
		assert.Equal(t, AuditChannelSecurity, publisher.channels[0])
	})

	t.Run("元信息缺失时仍然落库", func(t *testing.T) {
		service.LogSecurityViolation(3, 1, 43, "settings", nil)

		var count int64
		require.NoError(t, db.Model(&models.SecurityAuditLog{}).Count(&count).Error)
		assert.EqualValues(t, 2, count)
	})
}

func TestListSecurityViolations(t *testing.T) {
	db := newTestDB(t)
	service := NewAuditService(db, nil)

	service.LogSecurityViolation(2, 1, 1, "plans", nil)
	service.LogSecurityViolation(2, 1, 2, "plans", nil)
	service.LogSecurityViolation(3, 1, 3, "settings", nil)

	t.Run("不过滤时返回全部", func(t *testing.T) {
		logs, total, err := service.ListSecurityViolations(0, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.Len(t, logs, 3)
	})

	t.Run("按调用方租户过滤", func(t *testing.T) {
		logs, total, err := service.ListSecurityViolations(2, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		for _, entry := range logs {
			assert.EqualValues(t, 2, entry.TenantID)
		}
	})

	t.Run("分页", func(t *testing.T) {
		logs, total, err := service.ListSecurityViolations(0, 2, 2)
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.Len(t, logs, 1)
	})
}
