package models

import "gorm.io/datatypes"

// Setting 租户配置项模型
// 键在租户内唯一，值为任意JSON
type Setting struct {
	BaseModel
	TenantID uint           `json:"tenant_id" gorm:"not null;index;uniqueIndex:idx_settings_tenant_key"`
	Key      string         `json:"key" gorm:"not null;size:100;uniqueIndex:idx_settings_tenant_key"`
	Value    datatypes.JSON `json:"value"`
	Status   string         `json:"status" gorm:"default:'active';size:20"`
}

// TableName 表名
func (s *Setting) TableName() string {
	return "settings"
}

// 配置项状态常量
const (
	SettingStatusActive   = "active"
	SettingStatusInactive = "inactive"
)
