package models

import "time"

// SecurityAuditLog 安全审计日志
// 记录每一次跨租户访问拒绝，内部保留"越权"与"不存在"的精确区分，
// 对外响应则保持不可区分
type SecurityAuditLog struct {
	ID               uint      `json:"id" gorm:"primarykey"`
	EventType        string    `json:"event_type" gorm:"not null;size:50;index"`
	TenantID         uint      `json:"tenant_id" gorm:"index"`          // 调用方受信租户
	ResourceTenantID uint      `json:"resource_tenant_id" gorm:"index"` // 资源实际所属租户
	ResourceID       uint      `json:"resource_id"`
	ResourceTable    string    `json:"resource_table" gorm:"size:50"`
	UserID           uint      `json:"user_id" gorm:"index"`
	Endpoint         string    `json:"endpoint" gorm:"size:255"`
	Method           string    `json:"method" gorm:"size:10"`
	IP               string    `json:"ip" gorm:"size:45"`
	CreatedAt        time.Time `json:"created_at" gorm:"index"`
}

// TableName 表名
func (l *SecurityAuditLog) TableName() string {
	return "security_audit_logs"
}

// 审计事件类型常量
const (
	AuditEventSecurityViolation = "security_violation"
)
