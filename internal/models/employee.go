package models

import "time"

const (
	RoleClient string = "client"
	RoleAdmin  string = "admin"
)

type Employee struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	ChatID       int64     `gorm:"uniqueIndex;not null" json:"chat_id"`
	Username     string    `json:"username"`
	FirstName    string    `gorm:"not null" json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         string    `gorm:"default:'client'" json:"role"`
	WeeklyHours  float64   `gorm:"not null;default:40" json:"weekly_hours"`
	Region       string    `gorm:"type:varchar(8);not null" json:"region"`
	VacationDays float64   `gorm:"not null;default:30" json:"vacation_days"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Employee) TableName() string {
	return "employees"
}

// IsAdmin проверяет, является ли сотрудник администратором
func (e *Employee) IsAdmin() bool {
	return e.Role == RoleAdmin
}

func (e *Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// DailyMinutes - норма минут в день при пятидневке
func (e *Employee) DailyMinutes() float64 {
	return e.WeeklyHours / 5 * 60
}
