package services

import (
	"errors"

	"msghub/internal/models"
	apperrors "msghub/pkg/errors"

	"gorm.io/gorm"
)

// CreditPackageService 点数包服务
type CreditPackageService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewCreditPackageService(db *gorm.DB, audit *AuditService) *CreditPackageService {
	return &CreditPackageService{db: db, audit: audit}
}

// Create 创建点数包
func (s *CreditPackageService) Create(tenantID uint, name string, credits int, priceCents int64, meta *RequestMeta) (*models.CreditPackage, error) {
	if tenantID == 0 {
		return nil, apperrors.NewAccessDenied("访问被拒绝")
	}
	if name == "" {
		return nil, apperrors.NewInput("点数包名称不能为空")
	}
	if credits <= 0 {
		return nil, apperrors.NewInput("点数必须大于0")
	}
	if priceCents < 0 {
		return nil, apperrors.NewInput("价格不能为负数")
	}

	var count int64
	if err := s.db.Model(&models.CreditPackage{}).Where("tenant_id = ? AND name = ?", tenantID, name).Count(&count).Error; err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}
	if count > 0 {
		return nil, apperrors.NewConflict("该租户下已存在同名点数包")
	}

	pkg := &models.CreditPackage{
		TenantID:   tenantID,
		Name:       name,
		Credits:    credits,
		PriceCents: priceCents,
		Status:     models.CreditPackageStatusActive,
	}

	if err := s.db.Create(pkg).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewConflict("该租户下已存在同名点数包")
		}
		return nil, apperrors.NewInfrastructure(err)
	}

	s.audit.LogResourceEvent("create", pkg.TableName(), pkg.ID, tenantID, meta)
	return pkg, nil
}

// GetByID 按ID获取点数包，跨租户命中对外等同于不存在
func (s *CreditPackageService) GetByID(id, tenantID uint, meta *RequestMeta) (*models.CreditPackage, error) {
	if tenantID == 0 {
		return nil, apperrors.NewAccessDenied("访问被拒绝")
	}

	var pkg models.CreditPackage
	err := s.db.First(&pkg, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("资源不存在")
	}
	if err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}

	if pkg.TenantID != tenantID {
		s.audit.LogSecurityViolation(tenantID, pkg.TenantID, pkg.ID, pkg.TableName(), meta)
		return nil, apperrors.NewNotFound("资源不存在")
	}

	return &pkg, nil
}

// List 获取租户的点数包列表，按点数升序
func (s *CreditPackageService) List(tenantID uint, activeOnly bool, page, pageSize int) ([]*models.CreditPackage, int64, error) {
	if tenantID == 0 {
		return nil, 0, apperrors.NewAccessDenied("访问被拒绝")
	}

	var pkgs []*models.CreditPackage
	var total int64

	query := s.db.Model(&models.CreditPackage{}).Where("tenant_id = ?", tenantID)
	if activeOnly {
		query = query.Where("status = ?", models.CreditPackageStatusActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewInfrastructure(err)
	}

	offset := (page - 1) * pageSize
	err := query.Order("credits ASC, id ASC").Offset(offset).Limit(pageSize).Find(&pkgs).Error
	if err != nil {
		return nil, 0, apperrors.NewInfrastructure(err)
	}

	return pkgs, total, nil
}

// UpdateCreditPackageParams 点数包更新参数
type UpdateCreditPackageParams struct {
	Name       *string
	Credits    *int
	PriceCents *int64
}

// Update 更新点数包
func (s *CreditPackageService) Update(id, tenantID uint, params UpdateCreditPackageParams, meta *RequestMeta) (*models.CreditPackage, error) {
	if _, err := s.GetByID(id, tenantID, meta); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if params.Name != nil {
		if *params.Name == "" {
			return nil, apperrors.NewInput("点数包名称不能为空")
		}
		var count int64
		if err := s.db.Model(&models.CreditPackage{}).
			Where("tenant_id = ? AND name = ? AND id <> ?", tenantID, *params.Name, id).
			Count(&count).Error; err != nil {
			return nil, apperrors.NewInfrastructure(err)
		}
		if count > 0 {
			return nil, apperrors.NewConflict("该租户下已存在同名点数包")
		}
		updates["name"] = *params.Name
	}
	if params.Credits != nil {
		if *params.Credits <= 0 {
			return nil, apperrors.NewInput("点数必须大于0")
		}
		updates["credits"] = *params.Credits
	}
	if params.PriceCents != nil {
		if *params.PriceCents < 0 {
			return nil, apperrors.NewInput("价格不能为负数")
		}
		updates["price_cents"] = *params.PriceCents
	}

	if len(updates) > 0 {
		result := s.db.Model(&models.CreditPackage{}).
			Where("id = ? AND tenant_id = ?", id, tenantID).
			Updates(updates)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
				return nil, apperrors.NewConflict("该租户下已存在同名点数包")
			}
			return nil, apperrors.NewInfrastructure(result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, apperrors.NewNotFound("资源不存在")
		}
	}

	s.audit.LogResourceEvent("update", (&models.CreditPackage{}).TableName(), id, tenantID, meta)
	return s.GetByID(id, tenantID, meta)
}

// SoftDelete 软删除点数包，幂等
func (s *CreditPackageService) SoftDelete(id, tenantID uint, meta *RequestMeta) error {
	if _, err := s.GetByID(id, tenantID, meta); err != nil {
		return err
	}

	result := s.db.Model(&models.CreditPackage{}).
		Where("id = ? AND tenant_id = ? AND status <> ?", id, tenantID, models.CreditPackageStatusInactive).
		Update("status", models.CreditPackageStatusInactive)
	if result.Error != nil {
		return apperrors.NewInfrastructure(result.Error)
	}

	if result.RowsAffected > 0 {
		s.audit.LogResourceEvent("soft_delete", (&models.CreditPackage{}).TableName(), id, tenantID, meta)
	}
	return nil
}

// HardDelete 物理删除点数包，显式且不可逆
func (s *CreditPackageService) HardDelete(id, tenantID uint, meta *RequestMeta) error {
	if _, err := s.GetByID(id, tenantID, meta); err != nil {
		return err
	}

	result := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&models.CreditPackage{})
	if result.Error != nil {
		return apperrors.NewInfrastructure(result.Error)
	}

	s.audit.LogResourceEvent("hard_delete", (&models.CreditPackage{}).TableName(), id, tenantID, meta)
	return nil
}
