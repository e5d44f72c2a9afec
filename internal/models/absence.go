package models

import (
	"fmt"
	"time"
)

type AbsenceType string

const (
	AbsenceTypeVacation     AbsenceType = "vacation"
	AbsenceTypeSick         AbsenceType = "sick"
	AbsenceTypeChildSick    AbsenceType = "child_sick"
	AbsenceTypeUnpaid       AbsenceType = "unpaid"
	AbsenceTypeSpecial      AbsenceType = "special"
	AbsenceTypeTraining     AbsenceType = "training"
	AbsenceTypeCompensatory AbsenceType = "compensatory"
)

// AbsenceTypeInfo - справочные данные по типу отсутствия
type AbsenceTypeInfo struct {
	Label string
	Paid  bool
}

var absenceTypes = map[AbsenceType]AbsenceTypeInfo{
	AbsenceTypeVacation:     {Label: "Отпуск", Paid: true},
	AbsenceTypeSick:         {Label: "Больничный", Paid: true},
	AbsenceTypeChildSick:    {Label: "Больничный по уходу за ребенком", Paid: true},
	AbsenceTypeUnpaid:       {Label: "Отпуск без сохранения оплаты", Paid: false},
	AbsenceTypeSpecial:      {Label: "Особый отпуск", Paid: true},
	AbsenceTypeTraining:     {Label: "Обучение", Paid: true},
	AbsenceTypeCompensatory: {Label: "Отгул", Paid: true},
}

func LookupAbsenceType(t AbsenceType) (AbsenceTypeInfo, bool) {
	info, ok := absenceTypes[t]
	return info, ok
}

func (t AbsenceType) IsPaid() bool {
	return absenceTypes[t].Paid
}

func (t AbsenceType) Label() string {
	if info, ok := absenceTypes[t]; ok {
		return info.Label
	}
	return string(t)
}

const (
	AbsenceStatusPending   = "pending"
	AbsenceStatusApproved  = "approved"
	AbsenceStatusRejected  = "rejected"
	AbsenceStatusCancelled = "cancelled"
)

type Absence struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	EmployeeID uint        `gorm:"not null;index" json:"employee_id"`
	Type       AbsenceType `gorm:"type:varchar(20);not null" json:"type"`
	StartDate  time.Time   `gorm:"not null;index" json:"start_date"`
	EndDate    time.Time   `gorm:"not null;index" json:"end_date"`
	Scope      float64     `gorm:"not null;default:1" json:"scope"`
	Days       float64     `gorm:"not null;default:0" json:"days"`
	Note       string      `json:"note"`
	Status     string      `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ApprovedBy *uint       `json:"approved_by,omitempty"`
	ApprovedAt *time.Time  `json:"approved_at,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

func (Absence) TableName() string {
	return "absences"
}

// Overlaps проверяет пересечение с диапазоном дат (включительно)
func (a *Absence) Overlaps(start, end time.Time) bool {
	return !a.StartDate.After(end) && !a.EndDate.Before(start)
}

func (a *Absence) FormatLine() string {
	period := a.StartDate.Format("02.01.2006")
	if !a.EndDate.Equal(a.StartDate) {
		period += " - " + a.EndDate.Format("02.01.2006")
	}
	if a.Scope < 1 {
		period += " (полдня)"
	}
	return fmt.Sprintf("#%d %s: %s, %.1f дн. [%s]", a.ID, a.Type.Label(), period, a.Days, AbsenceStatusLabel(a.Status))
}

func AbsenceStatusLabel(status string) string {
	switch status {
	case AbsenceStatusPending:
		return "ожидает"
	case AbsenceStatusApproved:
		return "утверждено"
	case AbsenceStatusRejected:
		return "отклонено"
	case AbsenceStatusCancelled:
		return "отменено"
	}
	return status
}
