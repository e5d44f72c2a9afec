package models

import "time"

const (
	SettingTypeBool   = "bool"
	SettingTypeInt    = "int"
	SettingTypeFloat  = "float"
	SettingTypeString = "string"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;not null" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	Type      string    `gorm:"type:varchar(10);not null" json:"type"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}
