package services

import (
	"encoding/json"
	"errors"

	"msghub/internal/models"
	apperrors "msghub/pkg/errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SettingService 租户配置服务
type SettingService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewSettingService(db *gorm.DB, audit *AuditService) *SettingService {
	return &SettingService{db: db, audit: audit}
}

// Create 创建配置项
func (s *SettingService) Create(tenantID uint, key string, value json.RawMessage, meta *RequestMeta) (*models.Setting, error) {
	if tenantID == 0 {
		return nil, apperrors.NewAccessDenied("访问被拒绝")
	}
	if key == "" {
		return nil, apperrors.NewInput("配置键不能为空")
	}
	if len(value) > 0 && !json.Valid(value) {
		return nil, apperrors.NewInput("配置值必须是合法的JSON")
	}

	var count int64
	if err := s.db.Model(&models.Setting{}).Where("tenant_id = ? AND key = ?", tenantID, key).Count(&count).Error; err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}
	if count > 0 {
		return nil, apperrors.NewConflict("该租户下已存在同名配置键")
	}

	setting := &models.Setting{
		TenantID: tenantID,
		Key:      key,
		Value:    datatypes.JSON(value),
		Status:   models.SettingStatusActive,
	}

	if err := s.db.Create(setting).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewConflict("该租户下已存在同名配置键")
		}
		return nil, apperrors.NewInfrastructure(err)
	}

	s.audit.LogResourceEvent("create", setting.TableName(), setting.ID, tenantID, meta)
	return setting, nil
}

// GetByID 按ID获取配置项，跨租户命中对外等同于不存在
func (s *SettingService) GetByID(id, tenantID uint, meta *RequestMeta) (*models.Setting, error) {
	if tenantID == 0 {
		return nil, apperrors.NewAccessDenied("访问被拒绝")
	}

	var setting models.Setting
	err := s.db.First(&setting, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("资源不存在")
	}
	if err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}

	if setting.TenantID != tenantID {
		s.audit.LogSecurityViolation(tenantID, setting.TenantID, setting.ID, setting.TableName(), meta)
		return nil, apperrors.NewNotFound("资源不存在")
	}

	return &setting, nil
}

// GetByKey 按键获取配置项（天然带租户谓词）
func (s *SettingService) GetByKey(tenantID uint, key string) (*models.Setting, error) {
	if tenantID == 0 {
		return nil, apperrors.NewAccessDenied("访问被拒绝")
	}

	var setting models.Setting
	err := s.db.Where("tenant_id = ? AND key = ?", tenantID, key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("资源不存在")
	}
	if err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}

	return &setting, nil
}

// List 获取租户的配置项列表，按键升序
func (s *SettingService) List(tenantID uint, activeOnly bool, page, pageSize int) ([]*models.Setting, int64, error) {
	if tenantID == 0 {
		return nil, 0, apperrors.NewAccessDenied("访问被拒绝")
	}

	var settings []*models.Setting
	var total int64

	query := s.db.Model(&models.Setting{}).Where("tenant_id = ?", tenantID)
	if activeOnly {
		query = query.Where("status = ?", models.SettingStatusActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewInfrastructure(err)
	}

	offset := (page - 1) * pageSize
	err := query.Order("key ASC").Offset(offset).Limit(pageSize).Find(&settings).Error
	if err != nil {
		return nil, 0, apperrors.NewInfrastructure(err)
	}

	return settings, total, nil
}

// UpdateValue 更新配置值
// 复验归属后写入，写入条件再次携带tenant_id
func (s *SettingService) UpdateValue(id, tenantID uint, value json.RawMessage, meta *RequestMeta) (*models.Setting, error) {
	if len(value) > 0 && !json.Valid(value) {
		return nil, apperrors.NewInput("配置值必须是合法的JSON")
	}

	if _, err := s.GetByID(id, tenantID, meta); err != nil {
		return nil, err
	}

	result := s.db.Model(&models.Setting{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Update("value", datatypes.JSON(value))
	if result.Error != nil {
		return nil, apperrors.NewInfrastructure(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NewNotFound("资源不存在")
	}

	s.audit.LogResourceEvent("update", (&models.Setting{}).TableName(), id, tenantID, meta)
	return s.GetByID(id, tenantID, meta)
}

// SoftDelete 软删除配置项，幂等
func (s *SettingService) SoftDelete(id, tenantID uint, meta *RequestMeta) error {
	if _, err := s.GetByID(id, tenantID, meta); err != nil {
		return err
	}

	result := s.db.Model(&models.Setting{}).
		Where("id = ? AND tenant_id = ? AND status <> ?", id, tenantID, models.SettingStatusInactive).
		Update("status", models.SettingStatusInactive)
	if result.Error != nil {
		return apperrors.NewInfrastructure(result.Error)
	}

	if result.RowsAffected > 0 {
		s.audit.LogResourceEvent("soft_delete", (&models.Setting{}).TableName(), id, tenantID, meta)
	}
	return nil
}

// HardDelete 物理删除配置项，显式且不可逆
func (s *SettingService) HardDelete(id, tenantID uint, meta *RequestMeta) error {
	if _, err := s.GetByID(id, tenantID, meta); err != nil {
		return err
	}

	result := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&models.Setting{})
	if result.Error != nil {
		return apperrors.NewInfrastructure(result.Error)
	}

	s.audit.LogResourceEvent("hard_delete", (&models.Setting{}).TableName(), id, tenantID, meta)
	return nil
}
