package entity

import "time"

// Setting types understood by the decoder. Any other type string is stored and read back as a raw string.
const (
	SettingTypeString  = "string"
	SettingTypeBoolean = "boolean"
	SettingTypeJSON    = "json"
)

type Setting struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Category  string    `gorm:"column:category;type:varchar(64);not null;default:general;uniqueIndex:idx_settings_category_key"`
	Key       string    `gorm:"column:setting_key;type:varchar(128);not null;uniqueIndex:idx_settings_category_key"`
	Value     string    `gorm:"column:setting_value;type:text"`
	Type      string    `gorm:"column:type;type:varchar(32);default:string"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}
