package services

import (
	"errors"

	"msghub/internal/models"
	apperrors "msghub/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InboxService 收件箱服务
type InboxService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewInboxService(db *gorm.DB, audit *AuditService) *InboxService {
	return &InboxService{db: db, audit: audit}
}

var validChannels = map[string]bool{
	models.InboxChannelWhatsApp: true,
	models.InboxChannelSMS:      true,
	models.InboxChannelEmail:    true,
	models.InboxChannelAPI:      true,
}

// Create 创建收件箱
// 所属账户必须属于当前租户；令牌允许跨账户/租户重复（共享开通场景），
// 未提供时生成随机令牌
func (s *InboxService) Create(tenantID, accountID uint, name, channel, token string, meta *RequestMeta) (*models.Inbox, error) {
	if tenantID == 0 {
		return nil, apperrors.NewAccessDenied("访问被拒绝")
	}
	if accountID == 0 {
		return nil, apperrors.NewInput("账户ID不能为空")
	}
	if name == "" {
		return nil, apperrors.NewInput("收件箱名称不能为空")
	}
	if !validChannels[channel] {
		return nil, apperrors.NewInput("不支持的渠道类型")
	}

	// 账户归属校验，查询同样带租户谓词
	var account models.Account
	err := s.db.Where("id = ? AND tenant_id = ?", accountID, tenantID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("资源不存在")
	}
	if err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}

	if token == "" {
		token = uuid.NewString()
	}

	inbox := &models.Inbox{
		TenantID:  tenantID,
		AccountID: accountID,
		Name:      name,
		Channel:   channel,
		Token:     token,
		Status:    models.InboxStatusActive,
	}

	if err := s.db.Create(inbox).Error; err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}

	s.audit.LogResourceEvent("create", inbox.TableName(), inbox.ID, tenantID, meta)
	return inbox, nil
}

// GetByID 按ID获取收件箱，跨租户命中对外等同于不存在
func (s *InboxService) GetByID(id, tenantID uint, meta *RequestMeta) (*models.Inbox, error) {
	if tenantID == 0 {
		return nil, apperrors.NewAccessDenied("访问被拒绝")
	}

	var inbox models.Inbox
	err := s.db.First(&inbox, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("资源不存在")
	}
	if err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}

	if inbox.TenantID != tenantID {
		s.audit.LogSecurityViolation(tenantID, inbox.TenantID, inbox.ID, inbox.TableName(), meta)
		return nil, apperrors.NewNotFound("资源不存在")
	}

	return &inbox, nil
}

// List 获取租户的收件箱列表，可按账户过滤，按ID升序
func (s *InboxService) List(tenantID, accountID uint, activeOnly bool, page, pageSize int) ([]*models.Inbox, int64, error) {
	if tenantID == 0 {
		return nil, 0, apperrors.NewAccessDenied("访问被拒绝")
	}

	var inboxes []*models.Inbox
	var total int64

	query := s.db.Model(&models.Inbox{}).Where("tenant_id = ?", tenantID)
	if accountID != 0 {
		query = query.Where("account_id = ?", accountID)
	}
	if activeOnly {
		query = query.Where("status = ?", models.InboxStatusActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewInfrastructure(err)
	}

	offset := (page - 1) * pageSize
	err := query.Order("id ASC").Offset(offset).Limit(pageSize).Find(&inboxes).Error
	if err != nil {
		return nil, 0, apperrors.NewInfrastructure(err)
	}

	return inboxes, total, nil
}

// Rename 重命名收件箱
func (s *InboxService) Rename(id, tenantID uint, name string, meta *RequestMeta) (*models.Inbox, error) {
	if name == "" {
		return nil, apperrors.NewInput("收件箱名称不能为空")
	}

	if _, err := s.GetByID(id, tenantID, meta); err != nil {
		return nil, err
	}

	result := s.db.Model(&models.Inbox{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Update("name", name)
	if result.Error != nil {
		return nil, apperrors.NewInfrastructure(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NewNotFound("资源不存在")
	}

	s.audit.LogResourceEvent("update", (&models.Inbox{}).TableName(), id, tenantID, meta)
	return s.GetByID(id, tenantID, meta)
}

// SoftDelete 软删除收件箱，幂等
func (s *InboxService) SoftDelete(id, tenantID uint, meta *RequestMeta) error {
	if _, err := s.GetByID(id, tenantID, meta); err != nil {
		return err
	}

	result := s.db.Model(&models.Inbox{}).
		Where("id = ? AND tenant_id = ? AND status <> ?", id, tenantID, models.InboxStatusInactive).
		Update("status", models.InboxStatusInactive)
	if result.Error != nil {
		return apperrors.NewInfrastructure(result.Error)
	}

	if result.RowsAffected > 0 {
		s.audit.LogResourceEvent("soft_delete", (&models.Inbox{}).TableName(), id, tenantID, meta)
	}
	return nil
}

// HardDelete 物理删除收件箱，显式且不可逆
func (s *InboxService) HardDelete(id, tenantID uint, meta *RequestMeta) error {
	if _, err := s.GetByID(id, tenantID, meta); err != nil {
		return err
	}

	result := s.db.Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&models.Inbox{})
	if result.Error != nil {
		return apperrors.NewInfrastructure(result.Error)
	}

	s.audit.LogResourceEvent("hard_delete", (&models.Inbox{}).TableName(), id, tenantID, meta)
	return nil
}
