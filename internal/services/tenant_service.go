package services

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"msghub/internal/models"
	apperrors "msghub/pkg/errors"

	"gorm.io/gorm"
)

// TenantService 租户服务（平台运营方专用，不在租户隔离边界之内）
type TenantService struct {
	db *gorm.DB
}

// TenantStats 租户统计信息
type TenantStats struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Inactive  int64 `json:"inactive"`
	Suspended int64 `json:"suspended"`
}

func NewTenantService(db *gorm.DB) *TenantService {
	return &TenantService{db: db}
}

// GetWithFiltersAndPage 组合查询（分页版本）
func (s *TenantService) GetWithFiltersAndPage(status, keyword string, page, pageSize int) ([]*models.Tenant, int64, error) {
	var tenants []*models.Tenant
	var total int64

	query := s.db.Model(&models.Tenant{})

	// 添加过滤条件
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("name LIKE ? OR code LIKE ?", searchPattern, searchPattern)
	}

	// 计算总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewInfrastructure(err)
	}

	// 分页查询
	offset := (page - 1) * pageSize
	err := query.Order("id ASC").Offset(offset).Limit(pageSize).Find(&tenants).Error
	if err != nil {
		return nil, 0, apperrors.NewInfrastructure(err)
	}

	return tenants, total, nil
}

// Create 创建租户
func (s *TenantService) Create(name, code string) (*models.Tenant, error) {
	// 验证参数
	if err := s.ValidateCreateParams(name, code); err != nil {
		return nil, err
	}

	// 检查代码是否重复
	var count int64
	if err := s.db.Model(&models.Tenant{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}
	if count > 0 {
		return nil, apperrors.NewConflict("租户代码已存在")
	}

	tenant := &models.Tenant{
		Name:   name,
		Code:   code,
		Status: models.TenantStatusActive,
	}

	if err := s.db.Create(tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewConflict("租户代码已存在")
		}
		return nil, apperrors.NewInfrastructure(err)
	}
	return tenant, nil
}

// GetByID 根据ID获取租户
func (s *TenantService) GetByID(id uint) (*models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.First(&tenant, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("资源不存在")
	}
	if err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}
	return &tenant, nil
}

// UpdateName 更新租户名称
func (s *TenantService) UpdateName(id uint, name string) (*models.Tenant, error) {
	if utf8.RuneCountInString(name) == 0 || utf8.RuneCountInString(name) > 100 {
		return nil, apperrors.NewInput("租户名称长度必须在1-100个字符之间")
	}

	tenant, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	tenant.Name = name
	if err := s.db.Save(tenant).Error; err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}
	return tenant, nil
}

// UpdateStatus 更新租户状态（激活/停用/冻结）
// 状态流转会立即影响Webhook路由：非active租户的令牌一律拒绝
func (s *TenantService) UpdateStatus(id uint, status string) (*models.Tenant, error) {
	if status != models.TenantStatusActive &&
		status != models.TenantStatusInactive &&
		status != models.TenantStatusSuspended {
		return nil, apperrors.NewInput("无效的租户状态")
	}

	tenant, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if tenant.Status == status {
		return tenant, nil
	}

	tenant.Status = status
	if err := s.db.Save(tenant).Error; err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}
	return tenant, nil
}

// GetStats 获取租户统计
func (s *TenantService) GetStats() (*TenantStats, error) {
	stats := &TenantStats{}

	if err := s.db.Model(&models.Tenant{}).Count(&stats.Total).Error; err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}
	if err := s.db.Model(&models.Tenant{}).Where("status = ?", models.TenantStatusActive).Count(&stats.Active).Error; err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}
	if err := s.db.Model(&models.Tenant{}).Where("status = ?", models.TenantStatusInactive).Count(&stats.Inactive).Error; err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}
	if err := s.db.Model(&models.Tenant{}).Where("status = ?", models.TenantStatusSuspended).Count(&stats.Suspended).Error; err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}

	return stats, nil
}

// ValidateCreateParams 验证创建参数
func (s *TenantService) ValidateCreateParams(name, code string) error {
	nameLen := utf8.RuneCountInString(name)
	if nameLen == 0 || nameLen > 100 {
		return apperrors.NewInput("租户名称长度必须在1-100个字符之间")
	}

	codeLen := len(code)
	if codeLen == 0 || codeLen > 50 {
		return apperrors.NewInput("租户代码长度必须在1-50个字符之间")
	}

	for _, r := range code {
		if !((r >= 'a' && r <= 'z') ||
			(r >= '0' && r <= '9') ||
			r == '-' || r == '_') {
			return apperrors.NewInput("租户代码只能包含小写字母、数字、下划线和连字符")
		}
	}

	return nil
}
