package models

import "time"

const MaxArchiveAttempts = 3

const (
	ArchiveStatusPending    = "pending"
	ArchiveStatusProcessing = "processing"
	ArchiveStatusCompleted  = "completed"
	ArchiveStatusFailed     = "failed"
)

type ArchiveJob struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	EmployeeID   uint       `gorm:"not null;index:idx_archive_key" json:"employee_id"`
	Year         int        `gorm:"not null;index:idx_archive_key" json:"year"`
	Month        int        `gorm:"not null;check:month >= 1 AND month <= 12;index:idx_archive_key" json:"month"`
	ApproverID   *uint      `json:"approver_id,omitempty"`
	ApprovedAt   time.Time  `json:"approved_at"`
	Status       string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Attempts     int        `gorm:"not null;default:0" json:"attempts"`
	LastError    *string    `json:"last_error,omitempty"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
	DocumentPath string     `json:"document_path"`
	CreatedAt    time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ArchiveJob) TableName() string {
	return "archive_jobs"
}

// RecordFailure увеличивает счетчик попыток и решает, будет ли повтор
func (j *ArchiveJob) RecordFailure(err error) {
	j.Attempts++
	msg := err.Error()
	j.LastError = &msg
	if j.Attempts >= MaxArchiveAttempts {
		j.Status = ArchiveStatusFailed
	} else {
		j.Status = ArchiveStatusPending
	}
}

func (j *ArchiveJob) IsTerminal() bool {
	return j.Status == ArchiveStatusCompleted || j.Status == ArchiveStatusFailed
}
