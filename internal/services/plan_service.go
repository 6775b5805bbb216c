package services

import (
	"errors"

	"msghub/internal/models"
	apperrors "msghub/pkg/errors"

	"gorm.io/gorm"
)

// PlanService 套餐服务
// 所有读写都以tenant_id为第一谓词，内部调用也不例外
type PlanService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewPlanService(db *gorm.DB, audit *AuditService) *PlanService {
	return &PlanService{db: db, audit: audit}
}

// Create 创建套餐
func (s *PlanService) Create(tenantID uint, name, description string, priceCents int64, messageLimit int, meta *RequestMeta) (*models.Plan, error) {
	if tenantID == 0 {
		return nil, apperrors.NewAccessDenied("访问被拒绝")
	}
	if name == "" {
		return nil, apperrors.NewInput("套餐名称不能为空")
	}
	if priceCents < 0 {
		return nil, apperrors.NewInput("套餐价格不能为负数")
	}
	if messageLimit < 0 {
		return nil, apperrors.NewInput("消息额度不能为负数")
	}

	// 租户内名称唯一性预检
	var count int64
	if err := s.db.Model(&models.Plan{}).Where("tenant_id = ? AND name = ?", tenantID, name).Count(&count).Error; err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}
	if count > 0 {
		return nil, apperrors.NewConflict("该租户下已存在同名套餐")
	}

	plan := &models.Plan{
		TenantID:     tenantID,
		Name:         name,
		Description:  description,
		PriceCents:   priceCents,
		MessageLimit: messageLimit,
		Status:       models.PlanStatusActive,
	}

	if err := s.db.Create(plan).Error; err != nil {
		// 预检与写入之间的并发竞争由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewConflict("该租户下已存在同名套餐")
		}
		return nil, apperrors.NewInfrastructure(err)
	}

	s.audit.LogResourceEvent("create", plan.TableName(), plan.ID, tenantID, meta)
	return plan, nil
}

// GetByID 按ID获取套餐
// 资源存在但属于其他租户时，对外返回与"不存在"完全一致的结果，
// 同时记录一条安全审计事件区分两种情况
func (s *PlanService) GetByID(id, tenantID uint, meta *RequestMeta) (*models.Plan, error) {
	if tenantID == 0 {
		return nil, apperrors.NewAccessDenied("访问被拒绝")
	}

	var plan models.Plan
	err := s.db.First(&plan, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("资源不存在")
	}
	if err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}

	if plan.TenantID != tenantID {
		s.audit.LogSecurityViolation(tenantID, plan.TenantID, plan.ID, plan.TableName(), meta)
		return nil, apperrors.NewNotFound("资源不存在")
	}

	return &plan, nil
}

// List 获取租户的套餐列表
// 租户谓词永远在任何可选过滤之前；按价格升序保证确定性排序
func (s *PlanService) List(tenantID uint, status string, activeOnly bool, page, pageSize int) ([]*models.Plan, int64, error) {
	if tenantID == 0 {
		return nil, 0, apperrors.NewAccessDenied("访问被拒绝")
	}

	var plans []*models.Plan
	var total int64

	query := s.db.Model(&models.Plan{}).Where("tenant_id = ?", tenantID)

	if activeOnly {
		query = query.Where("status = ?", models.PlanStatusActive)
	} else if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewInfrastructure(err)
	}

	offset := (page - 1) * pageSize
	err := query.Order("price_cents ASC, id ASC").Offset(offset).Limit(pageSize).Find(&plans).Error
	if err != nil {
		return nil, 0, apperrors.NewInfrastructure(err)
	}

	return plans, total, nil
}

// UpdatePlanParams 套餐更新参数
type UpdatePlanParams struct {
	Name         *string
	Description  *string
	PriceCents   *int64
	MessageLimit *int
}

// Update 更新套餐
// 先经GetByID复验归属，写入时再次带上tenant_id谓词，防止检查与写入之间的竞争
func (s *PlanService) Update(id, tenantID uint, params UpdatePlanParams, meta *RequestMeta) (*models.Plan, error) {
	if _, err := s.GetByID(id, tenantID, meta); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if params.Name != nil {
		if *params.Name == "" {
			return nil, apperrors.NewInput("套餐名称不能为空")
		}
		// 改名时检查租户内重名（排除自身）
		var count int64
		if err := s.db.Model(&models.Plan{}).
			Where("tenant_id = ? AND name = ? AND id <> ?", tenantID, *params.Name, id).
			Count(&count).Error; err != nil {
			return nil, apperrors.NewInfrastructure(err)
		}
		if count > 0 {
			return nil, apperrors.NewConflict("该租户下已存在同名套餐")
		}
		updates["name"] = *params.Name
	}
	if params.Description != nil {
		updates["description"] = *params.Description
	}
	if params.PriceCents != nil {
		if *params.PriceCents < 0 {
			return nil, apperrors.NewInput("套餐价格不能为负数")
		}
		updates["price_cents"] = *params.PriceCents
	}
	if params.MessageLimit != nil {
		if *params.MessageLimit < 0 {
			return nil, apperrors.NewInput("消息额度不能为负数")
		}
		updates["message_limit"] = *params.MessageLimit
	}

	if len(updates) > 0 {
		result := s.db.Model(&models.Plan{}).
			Where("id = ? AND tenant_id = ?", id, tenantID).
			Updates(updates)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
				return nil, apperrors.NewConflict("该租户下已存在同名套餐")
			}
			return nil, apperrors.NewInfrastructure(result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, apperrors.NewNotFound("资源不存在")
		}
	}

	s.audit.LogResourceEvent("update", (&models.Plan{}).TableName(), id, tenantID, meta)
	return s.GetByID(id, tenantID, meta)
}

// SoftDelete 软删除套餐（状态置为inactive并刷新更新时间）
// 幂等：重复调用不产生新的可观察效果
func (s *PlanService) SoftDelete(id, tenantID uint, meta *RequestMeta) error {
	if _, err := s.GetByID(id, tenantID, meta); err != nil {
		return err
	}

	result := s.db.Model(&models.Plan{}).
		Where("id = ? AND tenant_id = ? AND status <> ?", id, tenantID, models.PlanStatusInactive).
		Update("status", models.PlanStatusInactive)
	if result.Error != nil {
		return apperrors.NewInfrastructure(result.Error)
	}
	// RowsAffected为0说明已是inactive，幂等成功

	if result.RowsAffected > 0 {
		s.audit.LogResourceEvent("soft_delete", (&models.Plan{}).TableName(), id, tenantID, meta)
	}
	return nil
}

// HardDelete 物理删除套餐
// 不可逆操作，只能由调用方显式发起，任何路径都不会隐式触发
func (s *PlanService) HardDelete(id, tenantID uint, meta *RequestMeta) error {
	if _, err := s.GetByID(id, tenantID, meta); err != nil {
		return err
	}

	result := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&models.Plan{})
	if result.Error != nil {
		return apperrors.NewInfrastructure(result.Error)
	}

	s.audit.LogResourceEvent("hard_delete", (&models.Plan{}).TableName(), id, tenantID, meta)
	return nil
}
