package models

// Account 账户模型
// 一个租户下有0..N个账户；账户级令牌全局唯一，可单独完成Webhook路由
type Account struct {
	BaseModel
	TenantID uint   `json:"tenant_id" gorm:"not null;index"`
	Name     string `json:"name" gorm:"not null;size:100"`
	Token    string `json:"token" gorm:"uniqueIndex;not null;size:64"`
	Status   string `json:"status" gorm:"default:'active';size:20"`

	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}

// TableName 表名
func (a *Account) TableName() string {
	return "accounts"
}

// 账户状态常量
const (
	AccountStatusActive   = "active"
	AccountStatusInactive = "inactive"
)
