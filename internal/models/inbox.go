package models

// Inbox 收件箱模型（账户下的一个渠道连接）
// 收件箱级令牌允许跨账户/租户重复（共享开通场景），因此不加唯一索引
type Inbox struct {
	BaseModel
	TenantID  uint   `json:"tenant_id" gorm:"not null;index"`
	AccountID uint   `json:"account_id" gorm:"not null;index"`
	Name      string `json:"name" gorm:"not null;size:100"`
	Channel   string `json:"channel" gorm:"not null;size:50"`
	Token     string `json:"token" gorm:"index;not null;size:64"`
	Status    string `json:"status" gorm:"default:'active';size:20"`

	Account *Account `json:"account,omitempty" gorm:"foreignKey:AccountID"`
}

// TableName 表名
func (i *Inbox) TableName() string {
	return "inboxes"
}

// 收件箱状态常量
const (
	InboxStatusActive   = "active"
	InboxStatusInactive = "inactive"
)

// 渠道类型常量
const (
	InboxChannelWhatsApp = "whatsapp"
	InboxChannelSMS      = "sms"
	InboxChannelEmail    = "email"
	InboxChannelAPI      = "api"
)
