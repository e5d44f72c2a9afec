package models

import (
	"fmt"
	"time"
)

// Статусы записей рабочего времени
const (
	EntryStatusDraft     = "draft"
	EntryStatusSubmitted = "submitted"
	EntryStatusApproved  = "approved"
	EntryStatusRejected  = "rejected"
)

type TimeEntry struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	EmployeeID   uint       `gorm:"not null;index:idx_entry_employee_date" json:"employee_id"`
	Date         time.Time  `gorm:"not null;index:idx_entry_employee_date" json:"date"`
	StartTime    string     `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime      string     `gorm:"type:varchar(5);not null" json:"end_time"`
	BreakMinutes int        `gorm:"not null;default:0" json:"break_minutes"`
	WorkMinutes  int        `gorm:"not null;default:0" json:"work_minutes"`
	ProjectID    *uint      `json:"project_id,omitempty"`
	Note         string     `json:"note"`
	Status       string     `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
	SubmittedBy  *uint      `json:"submitted_by,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	ApprovedBy   *uint      `json:"approved_by,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TimeEntry) TableName() string {
	return "time_entries"
}

// GrossMinutes - длительность между началом и концом, смена через полночь дает +24ч
func GrossMinutes(start, end int) int {
	gross := end - start
	if gross < 0 {
		gross += 24 * 60
	}
	return gross
}

// CalculateWorkMinutes пересчитывает чистое время работы
func (e *TimeEntry) CalculateWorkMinutes() error {
	start, err := ParseClock(e.StartTime)
	if err != nil {
		return err
	}
	end, err := ParseClock(e.EndTime)
	if err != nil {
		return err
	}

	work := GrossMinutes(start, end) - e.BreakMinutes
	if work < 0 {
		work = 0
	}
	e.WorkMinutes = work
	return nil
}

func (e *TimeEntry) IsApproved() bool {
	return e.Status == EntryStatusApproved
}

// FormatLine - краткое представление для списков
func (e *TimeEntry) FormatLine() string {
	return fmt.Sprintf("#%d %s %s-%s перерыв %dм, итого %s [%s]",
		e.ID, e.Date.Format("02.01.2006"), e.StartTime, e.EndTime,
		e.BreakMinutes, FormatMinutes(e.WorkMinutes), EntryStatusLabel(e.Status))
}

func EntryStatusLabel(status string) string {
	switch status {
	case EntryStatusDraft:
		return "черновик"
	case EntryStatusSubmitted:
		return "на согласовании"
	case EntryStatusApproved:
		return "утверждено"
	case EntryStatusRejected:
		return "отклонено"
	}
	return status
}
