package services

import (
	"errors"

	"msghub/internal/models"
	apperrors "msghub/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountService 账户服务
// 账户级令牌全局唯一，由本服务统一签发和轮换
type AccountService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewAccountService(db *gorm.DB, audit *AuditService) *AccountService {
	return &AccountService{db: db, audit: audit}
}

// Create 在租户下创建账户并签发令牌
func (s *AccountService) Create(tenantID uint, name string, meta *RequestMeta) (*models.Account, error) {
	if tenantID == 0 {
		return nil, apperrors.NewAccessDenied("访问被拒绝")
	}
	if name == "" {
		return nil, apperrors.NewInput("账户名称不能为空")
	}

	// 租户必须存在且处于激活状态
	var tenant models.Tenant
	err := s.db.First(&tenant, tenantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("资源不存在")
	}
	if err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}
	if !tenant.IsActive() {
		return nil, apperrors.NewAccessDenied("访问被拒绝")
	}

	account := &models.Account{
		TenantID: tenantID,
		Name:     name,
		Token:    uuid.NewString(),
		Status:   models.AccountStatusActive,
	}

	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}

	s.audit.LogResourceEvent("create", account.TableName(), account.ID, tenantID, meta)
	return account, nil
}

// GetByID 按ID获取账户，跨租户命中对外等同于不存在
func (s *AccountService) GetByID(id, tenantID uint, meta *RequestMeta) (*models.Account, error) {
	if tenantID == 0 {
		return nil, apperrors.NewAccessDenied("访问被拒绝")
	}

	var account models.Account
	err := s.db.First(&account, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("资源不存在")
	}
	if err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}

	if account.TenantID != tenantID {
		s.audit.LogSecurityViolation(tenantID, account.TenantID, account.ID, account.TableName(), meta)
		return nil, apperrors.NewNotFound("资源不存在")
	}

	return &account, nil
}

// List 获取租户的账户列表，按ID升序
func (s *AccountService) List(tenantID uint, activeOnly bool, page, pageSize int) ([]*models.Account, int64, error) {
	if tenantID == 0 {
		return nil, 0, apperrors.NewAccessDenied("访问被拒绝")
	}

	var accounts []*models.Account
	var total int64

	query := s.db.Model(&models.Account{}).Where("tenant_id = ?", tenantID)
	if activeOnly {
		query = query.Where("status = ?", models.AccountStatusActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewInfrastructure(err)
	}

	offset := (page - 1) * pageSize
	err := query.Order("id ASC").Offset(offset).Limit(pageSize).Find(&accounts).Error
	if err != nil {
		return nil, 0, apperrors.NewInfrastructure(err)
	}

	return accounts, total, nil
}

// RotateToken 轮换账户令牌
// 旧令牌立即失效，写入条件带tenant_id谓词
func (s *AccountService) RotateToken(id, tenantID uint, meta *RequestMeta) (*models.Account, error) {
	if _, err := s.GetByID(id, tenantID, meta); err != nil {
		return nil, err
	}

	newToken := uuid.NewString()
	result := s.db.Model(&models.Account{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Update("token", newToken)
	if result.Error != nil {
		return nil, apperrors.NewInfrastructure(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NewNotFound("资源不存在")
	}

	s.audit.LogResourceEvent("rotate_token", (&models.Account{}).TableName(), id, tenantID, meta)
	return s.GetByID(id, tenantID, meta)
}

// SoftDelete 软删除账户，幂等
func (s *AccountService) SoftDelete(id, tenantID uint, meta *RequestMeta) error {
	if _, err := s.GetByID(id, tenantID, meta); err != nil {
		return err
	}

	result := s.db.Model(&models.Account{}).
		Where("id = ? AND tenant_id = ? AND status <> ?", id, tenantID, models.AccountStatusInactive).
		Update("status", models.AccountStatusInactive)
	if result.Error != nil {
		return apperrors.NewInfrastructure(result.Error)
	}

	if result.RowsAffected > 0 {
		s.audit.LogResourceEvent("soft_delete", (&models.Account{}).TableName(), id, tenantID, meta)
	}
	return nil
}
