package services

import (
	"encoding/json"
	"errors"

	"msghub/internal/models"
	apperrors "msghub/pkg/errors"
	"msghub/pkg/logger"
	"msghub/pkg/queue"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 路由失败原因常量
const (
	RoutingErrAccountNotFound      = "account_not_found"
	RoutingErrTenantInactive       = "tenant_inactive"
	RoutingErrInvalidTenantContext = "invalid_tenant_context"
)

// RoutingResult Webhook路由结果
type RoutingResult struct {
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	AccountID uint   `json:"account_id,omitempty"`
	TenantID  uint   `json:"tenant_id,omitempty"`
}

// WebhookService Webhook账户路由服务
// 入站事件负载本身不携带租户标识，只能凭不透明令牌定位账户和租户
type WebhookService struct {
	db    *gorm.DB
	queue *queue.RedisQueue
}

// NewWebhookService 创建Webhook服务
// queue可为nil（单测场景不入队）
func NewWebhookService(db *gorm.DB, q *queue.RedisQueue) *WebhookService {
	return &WebhookService{db: db, queue: q}
}

// Route 将令牌解析为所属账户/租户
// expectedTenantID为0表示调用方未提供租户上下文。
// 解析本身无副作用；基础设施错误走error返回，绝不折叠进RoutingResult
func (s *WebhookService) Route(token string, expectedTenantID uint) (*RoutingResult, error) {
	if token == "" {
		// 失败关闭：空令牌视为无法解析
		return &RoutingResult{Success: false, Error: RoutingErrAccountNotFound}, nil
	}

	account, result, err := s.resolveAccount(token, expectedTenantID)
	if err != nil {
		return nil, err
	}
	if result != nil {
		return result, nil
	}

	var tenant models.Tenant
	err = s.db.First(&tenant, account.TenantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 账户指向的租户不存在，按无法解析处理
		return &RoutingResult{Success: false, Error: RoutingErrAccountNotFound}, nil
	}
	if err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}

	// 租户未激活先于上下文校验：即使上下文匹配，停用租户也不接收事件
	if !tenant.IsActive() {
		return &RoutingResult{Success: false, Error: RoutingErrTenantInactive}, nil
	}

	// 调用方提供的租户上下文必须与令牌推导的事实一致
	if expectedTenantID != 0 && expectedTenantID != tenant.ID {
		return &RoutingResult{Success: false, Error: RoutingErrInvalidTenantContext}, nil
	}

	return &RoutingResult{
		Success:   true,
		AccountID: account.ID,
		TenantID:  tenant.ID,
	}, nil
}

// resolveAccount 令牌两级解析：账户级令牌全局唯一优先；
// 收件箱级令牌可能跨租户重复，歧义时只认调用方提供的租户上下文，绝不猜测
func (s *WebhookService) resolveAccount(token string, expectedTenantID uint) (*models.Account, *RoutingResult, error) {
	var account models.Account
	err := s.db.Where("token = ?", token).First(&account).Error
	if err == nil {
		return &account, nil, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apperrors.NewInfrastructure(err)
	}

	// 收件箱级令牌
	var inboxes []models.Inbox
	if err := s.db.Where("token = ?", token).Find(&inboxes).Error; err != nil {
		return nil, nil, apperrors.NewInfrastructure(err)
	}
	if len(inboxes) == 0 {
		return nil, &RoutingResult{Success: false, Error: RoutingErrAccountNotFound}, nil
	}

	// 去重出候选账户
	accountIDs := make([]uint, 0, len(inboxes))
	seen := make(map[uint]struct{}, len(inboxes))
	for _, inbox := range inboxes {
		if _, ok := seen[inbox.AccountID]; !ok {
			seen[inbox.AccountID] = struct{}{}
			accountIDs = append(accountIDs, inbox.AccountID)
		}
	}

	var candidates []models.Account
	if err := s.db.Where("id IN ?", accountIDs).Find(&candidates).Error; err != nil {
		return nil, nil, apperrors.NewInfrastructure(err)
	}
	if len(candidates) == 0 {
		return nil, &RoutingResult{Success: false, Error: RoutingErrAccountNotFound}, nil
	}
	if len(candidates) == 1 {
		return &candidates[0], nil, nil
	}

	// 多个候选账户：没有租户上下文时直接拒绝
	if expectedTenantID == 0 {
		return nil, &RoutingResult{Success: false, Error: RoutingErrInvalidTenantContext}, nil
	}

	var matched []models.Account
	for _, c := range candidates {
		if c.TenantID == expectedTenantID {
			matched = append(matched, c)
		}
	}
	// 恰好一个匹配才放行，同一租户内仍然歧义的也拒绝
	if len(matched) != 1 {
		return nil, &RoutingResult{Success: false, Error: RoutingErrInvalidTenantContext}, nil
	}

	return &matched[0], nil, nil
}

// Ingest 路由成功后落库投递记录并交给下游管道
// 返回路由结果和投递记录；路由失败时不产生任何持久化副作用
func (s *WebhookService) Ingest(token string, payload []byte, expectedTenantID uint, source string) (*RoutingResult, *models.WebhookDelivery, error) {
	result, err := s.Route(token, expectedTenantID)
	if err != nil {
		return nil, nil, err
	}
	if !result.Success {
		return result, nil, nil
	}

	if len(payload) > 0 && !json.Valid(payload) {
		return nil, nil, apperrors.NewInput("事件负载必须是合法的JSON")
	}

	delivery := &models.WebhookDelivery{
		TenantID:  result.TenantID,
		AccountID: result.AccountID,
		Token:     token,
		Payload:   datatypes.JSON(payload),
		Status:    models.WebhookDeliveryStatusQueued,
	}
	if err := s.db.Create(delivery).Error; err != nil {
		return nil, nil, apperrors.NewInfrastructure(err)
	}

	if s.queue != nil {
		var payloadMap map[string]interface{}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &payloadMap); err != nil {
				payloadMap = nil
			}
		}
		msg := &queue.EventMessage{
			DeliveryID: delivery.ID,
			TenantID:   result.TenantID,
			AccountID:  result.AccountID,
			Token:      token,
			Payload:    payloadMap,
			Source:     source,
		}
		if err := s.queue.EnqueueEvent(msg); err != nil {
			// 入队失败标记投递状态，由下游补偿；不影响已完成的路由
			logger.GetLogger().Errorf("事件入队失败: %v", err)
			s.db.Model(delivery).Update("status", models.WebhookDeliveryStatusFailed)
			delivery.Status = models.WebhookDeliveryStatusFailed
		}
	}

	return result, delivery, nil
}

// ListDeliveries 分页查询租户的投递记录
func (s *WebhookService) ListDeliveries(tenantID uint, page, pageSize int) ([]*models.WebhookDelivery, int64, error) {
	if tenantID == 0 {
		return nil, 0, apperrors.NewAccessDenied("访问被拒绝")
	}

	var deliveries []*models.WebhookDelivery
	var total int64

	query := s.db.Model(&models.WebhookDelivery{}).Where("tenant_id = ?", tenantID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewInfrastructure(err)
	}

	offset := (page - 1) * pageSize
	err := query.Order("id DESC").Offset(offset).Limit(pageSize).Find(&deliveries).Error
	if err != nil {
		return nil, 0, apperrors.NewInfrastructure(err)
	}

	return deliveries, total, nil
}
