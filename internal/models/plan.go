package models

// Plan 套餐模型
// 名称在租户内唯一，跨租户可以重复
type Plan struct {
	BaseModel
	TenantID     uint   `json:"tenant_id" gorm:"not null;index;uniqueIndex:idx_plans_tenant_name"`
	Name         string `json:"name" gorm:"not null;size:100;uniqueIndex:idx_plans_tenant_name"`
	Description  string `json:"description" gorm:"size:500"`
	PriceCents   int64  `json:"price_cents" gorm:"not null;default:0"`
	MessageLimit int    `json:"message_limit" gorm:"not null;default:0"`
	Status       string `json:"status" gorm:"default:'active';size:20"`
}

// TableName 表名
func (p *Plan) TableName() string {
	return "plans"
}

// 套餐状态常量
const (
	PlanStatusActive   = "active"
	PlanStatusInactive = "inactive"
)
