package services

import (
	"testing"

	"msghub/internal/models"
	apperrors "msghub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlanService(t *testing.T) (*PlanService, *fixtures, *AuditService) {
	t.Helper()
	db := newTestDB(t)
	f := seedFixtures(t, db)
	audit := NewAuditService(db, nil)
	return NewPlanService(db, audit), f, audit
}

func testMeta() *RequestMeta {
	return &RequestMeta{UserID: 1, Endpoint: "/api/v1/plans/:id", Method: "GET", IP: "127.0.0.1"}
}

func TestPlanCreate(t *testing.T) {
	service, f, _ := newPlanService(t)

	t.Run("正常创建", func(t *testing.T) {
		plan, err := service.Create(f.TenantA.ID, "基础版", "入门套餐", 9900, 1000, testMeta())
		require.NoError(t, err)
		assert.NotZero(t, plan.ID)
		assert.Equal(t, f.TenantA.ID, plan.TenantID)
		assert.Equal(t, models.PlanStatusActive, plan.Status)
	})

	t.Run("租户内重名报冲突", func(t *testing.T) {
		_, err := service.Create(f.TenantA.ID, "基础版", "", 100, 10, testMeta())
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("跨租户允许同名", func(t *testing.T) {
		plan, err := service.Create(f.TenantB.ID, "基础版", "", 19900, 2000, testMeta())
		require.NoError(t, err)
		assert.Equal(t, f.TenantB.ID, plan.TenantID)
	})

	t.Run("名称为空报参数错误", func(t *testing.T) {
		_, err := service.Create(f.TenantA.ID, "", "", 100, 10, testMeta())
		assert.True(t, apperrors.IsInput(err))
	})

	t.Run("价格为负报参数错误", func(t *testing.T) {
		_, err := service.Create(f.TenantA.ID, "负价", "", -1, 10, testMeta())
		assert.True(t, apperrors.IsInput(err))
	})

	t.Run("租户上下文缺失时拒绝", func(t *testing.T) {
		_, err := service.Create(0, "无主", "", 100, 10, testMeta())
		assert.True(t, apperrors.IsAccessDenied(err))
	})
}

func TestPlanGetByIDHidesForeignResource(t *testing.T) {
	service, f, _ := newPlanService(t)
	db := service.db

	planA, err := service.Create(f.TenantA.ID, "专业版", "", 29900, 5000, testMeta())
	require.NoError(t, err)

	t.Run("本租户正常读取", func(t *testing.T) {
		got, err := service.GetByID(planA.ID, f.TenantA.ID, testMeta())
		require.NoError(t, err)
		assert.Equal(t, planA.ID, got.ID)
	})

	t.Run("越权读取与不存在对外不可区分", func(t *testing.T) {
		_, foreignErr := service.GetByID(planA.ID, f.TenantB.ID, testMeta())
		_, absentErr := service.GetByID(99999, f.TenantB.ID, testMeta())

		require.Error(t, foreignErr)
		require.Error(t, absentErr)
		assert.True(t, apperrors.IsNotFound(foreignErr))
		assert.True(t, apperrors.IsNotFound(absentErr))
		assert.Equal(t, absentErr.Error(), foreignErr.Error())
	})

	t.Run("越权读取留下审计记录而不存在不留", func(t *testing.T) {
		var logs []models.SecurityAuditLog
		require.NoError(t, db.Order("id ASC").Find(&logs).Error)
		require.Len(t, logs, 1)

		entry := logs[0]
		assert.Equal(t, models.AuditEventSecurityViolation, entry.EventType)
		assert.Equal(t, f.TenantB.ID, entry.TenantID)
		assert.Equal(t, f.TenantA.ID, entry.ResourceTenantID)
		assert.Equal(t, planA.ID, entry.ResourceID)
		assert.Equal(t, "plans", entry.ResourceTable)
		assert.Equal(t, "/api/v1/plans/:id", entry.Endpoint)
	})
}

func TestPlanList(t *testing.T) {
	service, f, _ := newPlanService(t)

	_, err := service.Create(f.TenantA.ID, "旗舰版", "", 59900, 20000, testMeta())
	require.NoError(t, err)
	basic, err := service.Create(f.TenantA.ID, "基础版", "", 9900, 1000, testMeta())
	require.NoError(t, err)
	_, err = service.Create(f.TenantB.ID, "别家套餐", "", 100, 1, testMeta())
	require.NoError(t, err)
	require.NoError(t, service.SoftDelete(basic.ID, f.TenantA.ID, testMeta()))

	t.Run("只返回本租户且按价格升序", func(t *testing.T) {
		plans, total, err := service.List(f.TenantA.ID, "", false, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		require.Len(t, plans, 2)
		assert.Equal(t, "基础版", plans[0].Name)
		assert.Equal(t, "旗舰版", plans[1].Name)
	})

	t.Run("activeOnly过滤停用套餐", func(t *testing.T) {
		plans, total, err := service.List(f.TenantA.ID, "", true, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, plans, 1)
		assert.Equal(t, "旗舰版", plans[0].Name)
	})

	t.Run("租户上下文缺失时拒绝", func(t *testing.T) {
		_, _, err := service.List(0, "", false, 1, 10)
		assert.True(t, apperrors.IsAccessDenied(err))
	})
}

func TestPlanUpdate(t *testing.T) {
	service, f, _ := newPlanService(t)

	plan, err := service.Create(f.TenantA.ID, "标准版", "初始描述", 19900, 3000, testMeta())
	require.NoError(t, err)
	other, err := service.Create(f.TenantA.ID, "企业版", "", 99900, 100000, testMeta())
	require.NoError(t, err)

	t.Run("部分字段更新", func(t *testing.T) {
		newPrice := int64(25900)
		updated, err := service.Update(plan.ID, f.TenantA.ID, UpdatePlanParams{PriceCents: &newPrice}, testMeta())
		require.NoError(t, err)
		assert.EqualValues(t, 25900, updated.PriceCents)
		assert.Equal(t, "标准版", updated.Name)
		assert.Equal(t, "初始描述", updated.Description)
	})

	t.Run("改名撞上租户内已有名称报冲突", func(t *testing.T) {
		name := other.Name
		_, err := service.Update(plan.ID, f.TenantA.ID, UpdatePlanParams{Name: &name}, testMeta())
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("越权更新等同不存在", func(t *testing.T) {
		name := "篡改"
		_, err := service.Update(plan.ID, f.TenantB.ID, UpdatePlanParams{Name: &name}, testMeta())
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))

		got, err := service.GetByID(plan.ID, f.TenantA.ID, testMeta())
		require.NoError(t, err)
		assert.Equal(t, "标准版", got.Name)
	})
}

func TestPlanSoftDeleteIdempotent(t *testing.T) {
	service, f, _ := newPlanService(t)

	plan, err := service.Create(f.TenantA.ID, "临时版", "", 100, 10, testMeta())
	require.NoError(t, err)

	require.NoError(t, service.SoftDelete(plan.ID, f.TenantA.ID, testMeta()))

	got, err := service.GetByID(plan.ID, f.TenantA.ID, testMeta())
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusInactive, got.Status)
	firstUpdatedAt := got.UpdatedAt

	// 重复删除不报错也不产生新效果
	require.NoError(t, service.SoftDelete(plan.ID, f.TenantA.ID, testMeta()))
	require.NoError(t, service.SoftDelete(plan.ID, f.TenantA.ID, testMeta()))

	got, err = service.GetByID(plan.ID, f.TenantA.ID, testMeta())
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusInactive, got.Status)
	assert.Equal(t, firstUpdatedAt, got.UpdatedAt)
}

func TestPlanHardDelete(t *testing.T) {
	service, f, _ := newPlanService(t)

	plan, err := service.Create(f.TenantA.ID, "待清除", "", 100, 10, testMeta())
	require.NoError(t, err)

	t.Run("越权物理删除等同不存在", func(t *testing.T) {
		err := service.HardDelete(plan.ID, f.TenantB.ID, testMeta())
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("本租户物理删除后彻底消失", func(t *testing.T) {
		require.NoError(t, service.HardDelete(plan.ID, f.TenantA.ID, testMeta()))

		_, err := service.GetByID(plan.ID, f.TenantA.ID, testMeta())
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}
