package models

import "gorm.io/datatypes"

// WebhookDelivery Webhook投递记录
// 只有路由成功的投递才会落库并进入下游管道
type WebhookDelivery struct {
	BaseModel
	TenantID  uint           `json:"tenant_id" gorm:"not null;index"`
	AccountID uint           `json:"account_id" gorm:"not null;index"`
	Token     string         `json:"token" gorm:"not null;size:64"`
	Payload   datatypes.JSON `json:"payload"`
	Status    string         `json:"status" gorm:"default:'queued';size:20"`
}

// TableName 表名
func (d *WebhookDelivery) TableName() string {
	return "webhook_deliveries"
}

// 投递状态常量
const (
	WebhookDeliveryStatusQueued    = "queued"
	WebhookDeliveryStatusProcessed = "processed"
	WebhookDeliveryStatusFailed    = "failed"
)
