package models

// CreditPackage 消息点数包模型
type CreditPackage struct {
	BaseModel
	TenantID   uint   `json:"tenant_id" gorm:"not null;index;uniqueIndex:idx_credit_packages_tenant_name"`
	Name       string `json:"name" gorm:"not null;size:100;uniqueIndex:idx_credit_packages_tenant_name"`
	Credits    int    `json:"credits" gorm:"not null;default:0"`
	PriceCents int64  `json:"price_cents" gorm:"not null;default:0"`
	Status     string `json:"status" gorm:"default:'active';size:20"`
}

// TableName 表名
func (c *CreditPackage) TableName() string {
	return "credit_packages"
}

// 点数包状态常量
const (
	CreditPackageStatusActive   = "active"
	CreditPackageStatusInactive = "inactive"
)
