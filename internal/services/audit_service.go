package services

import (
	"msghub/internal/models"
	"msghub/pkg/logger"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RequestMeta 请求元信息
// 由HTTP层在调用核心服务时传入，用于审计事件的溯源字段
type RequestMeta struct {
	UserID   uint
	Endpoint string
	Method   string
	IP       string
}

// Publisher 审计事件广播接口（Redis发布或测试桩）
type Publisher interface {
	PublishMessage(channel string, message interface{}) error
}

// AuditChannelSecurity 安全事件广播频道
const AuditChannelSecurity = "security_audit"

// AuditService 审计服务
// 安全事件同时写结构化日志、落库、广播；审计失败绝不影响被保护的操作本身
type AuditService struct {
	db        *gorm.DB
	log       *logrus.Logger
	publisher Publisher
}

// NewAuditService 创建审计服务
// publisher可为nil（单测场景不广播）
func NewAuditService(db *gorm.DB, publisher Publisher) *AuditService {
	return &AuditService{
		db:        db,
		log:       logger.GetLogger(),
		publisher: publisher,
	}
}

// LogSecurityViolation 记录一次跨租户访问拒绝
// 内部精确区分"越权"与"不存在"，对外响应由调用方保持不可区分
func (s *AuditService) LogSecurityViolation(tenantID, resourceTenantID, resourceID uint, resourceTable string, meta *RequestMeta) {
	entry := &models.SecurityAuditLog{
		EventType:        models.AuditEventSecurityViolation,
		TenantID:         tenantID,
		ResourceTenantID: resourceTenantID,
		ResourceID:       resourceID,
		ResourceTable:    resourceTable,
	}
	if meta != nil {
		entry.UserID = meta.UserID
		entry.Endpoint = meta.Endpoint
		entry.Method = meta.Method
		entry.IP = meta.IP
	}

	s.log.WithFields(logrus.Fields{
		"type":               models.AuditEventSecurityViolation,
		"tenant_id":          entry.TenantID,
		"resource_tenant_id": entry.ResourceTenantID,
		"resource_id":        entry.ResourceID,
		"resource_table":     entry.ResourceTable,
		"user_id":            entry.UserID,
		"endpoint":           entry.Endpoint,
		"method":             entry.Method,
		"ip":                 entry.IP,
	}).Warn("跨租户访问被拒绝")

	if err := s.db.Create(entry).Error; err != nil {
		s.log.Errorf("写入安全审计日志失败: %v", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishMessage(AuditChannelSecurity, entry); err != nil {
			s.log.Errorf("广播安全审计事件失败: %v", err)
		}
	}
}

// LogResourceEvent 记录普通资源变更（创建/更新/删除）
func (s *AuditService) LogResourceEvent(action, resourceTable string, resourceID, tenantID uint, meta *RequestMeta) {
	fields := logrus.Fields{
		"action":         action,
		"resource_table": resourceTable,
		"resource_id":    resourceID,
		"tenant_id":      tenantID,
	}
	if meta != nil {
		fields["user_id"] = meta.UserID
		fields["endpoint"] = meta.Endpoint
	}
	s.log.WithFields(fields).Info("资源变更")
}

// ListSecurityViolations 分页查询安全审计日志（平台管理员）
func (s *AuditService) ListSecurityViolations(tenantID uint, page, pageSize int) ([]*models.SecurityAuditLog, int64, error) {
	var logs []*models.SecurityAuditLog
	var total int64

	query := s.db.Model(&models.SecurityAuditLog{})
	if tenantID != 0 {
		query = query.Where("tenant_id = ?", tenantID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(pageSize).Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
