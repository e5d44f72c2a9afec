package models

import "time"

type Holiday struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      time.Time `gorm:"not null;uniqueIndex:idx_holiday_date_region" json:"date"`
	Region    string    `gorm:"type:varchar(8);not null;uniqueIndex:idx_holiday_date_region;index:idx_holiday_year_region" json:"region"`
	Year      int       `gorm:"not null;index:idx_holiday_year_region" json:"year"`
	Name      string    `gorm:"not null" json:"name"`
	Scope     float64   `gorm:"not null;default:1" json:"scope"`
	IsManual  bool      `gorm:"not null;default:false" json:"is_manual"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Holiday) TableName() string {
	return "holidays"
}

// IsHalfDay - сокращенный (полупраздничный) день
func (h *Holiday) IsHalfDay() bool {
	return h.Scope < 1.0
}
